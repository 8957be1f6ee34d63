package login

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gradescrape-backend/lib/scrapers/gradescope/core"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope/login")

var ErrAuthTimeout = fmt.Errorf("timed out waiting for the interactive login to complete")

// loginWait bounds how long AttemptSchoolLogin will watch the browser
// for a successful redirect before giving up.
var loginWait = time.Second * 120

var pollInterval = time.Second

type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Browser is the interactive login collaborator: something a human can
// drive through their school's SAML page while we watch the URL bar.
type Browser interface {
	Navigate(url string) error
	CurrentUrl() (string, error)
	Cookies() ([]Cookie, error)
	Close() error
}

// AttemptSchoolLogin sends the browser to the school's SAML entrypoint
// and polls until it lands back on gradescope proper, then collects the
// session cookies. It fails with ErrAuthTimeout once the wait bound elapses
// rather than waiting forever on a login that is never coming.
func AttemptSchoolLogin(ctx context.Context, b Browser, school string) (core.TokenSet, error) {
	ctx, span := tracer.Start(ctx, "AttemptSchoolLogin")
	defer span.End()

	err := b.Navigate(fmt.Sprintf("%s/auth/saml/%s?remember_me=1", core.DefaultBaseUrl, school))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open login page")
		return nil, err
	}

	deadline := time.Now().Add(loginWait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "context cancelled")
			return nil, ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			span.RecordError(ErrAuthTimeout)
			span.SetStatus(codes.Error, ErrAuthTimeout.Error())
			return nil, ErrAuthTimeout
		}

		current, err := b.CurrentUrl()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read browser url")
			return nil, err
		}
		if strings.HasPrefix(current, core.DefaultBaseUrl) && !strings.Contains(current, "saml") {
			break
		}
	}

	cookies, err := b.Cookies()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect cookies")
		return nil, err
	}
	return NormalizeTokens(cookies), nil
}

// NormalizeTokens folds a raw cookie list into a deduplicated TokenSet.
// Later entries win on name collisions.
func NormalizeTokens(cookies []Cookie) core.TokenSet {
	tokens := core.TokenSet{}
	for _, c := range cookies {
		tokens[c.Name] = c.Value
	}
	return tokens
}

// SaveTokens writes a TokenSet to disk as a flat name->value json object
// so it can be reused across runs without logging in again.
func SaveTokens(path string, tokens core.TokenSet) error {
	data, err := json.MarshalIndent(tokens, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadTokens reads tokens back from disk. It accepts both the flat
// name->value object SaveTokens writes and the raw cookie list a
// webdriver dumps, normalizing the latter.
func LoadTokens(path string) (core.TokenSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// json "null" decodes into both shapes without error; an empty
	// token set is never a usable login
	var tokens core.TokenSet
	if err := json.Unmarshal(data, &tokens); err == nil && len(tokens) > 0 {
		return tokens, nil
	}

	var raw []Cookie
	if err := json.Unmarshal(data, &raw); err == nil && len(raw) > 0 {
		return NormalizeTokens(raw), nil
	}
	return nil, fmt.Errorf("%s holds neither a token object nor a cookie list", path)
}
