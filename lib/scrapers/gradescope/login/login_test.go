package login

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gradescrape-backend/lib/scrapers/gradescope/core"

	"github.com/stretchr/testify/require"
)

// fakeBrowser walks through a scripted sequence of urls, one per poll,
// staying on the last one once the script runs out.
type fakeBrowser struct {
	navigatedTo string
	urls        []string
	step        int
	cookies     []Cookie
}

func (b *fakeBrowser) Navigate(url string) error {
	b.navigatedTo = url
	return nil
}

func (b *fakeBrowser) CurrentUrl() (string, error) {
	if b.step < len(b.urls)-1 {
		b.step++
		return b.urls[b.step-1], nil
	}
	return b.urls[len(b.urls)-1], nil
}

func (b *fakeBrowser) Cookies() ([]Cookie, error) {
	return b.cookies, nil
}

func (b *fakeBrowser) Close() error {
	return nil
}

func shortenWaits(t *testing.T, wait time.Duration) {
	prevWait, prevPoll := loginWait, pollInterval
	loginWait = wait
	pollInterval = time.Millisecond
	t.Cleanup(func() {
		loginWait = prevWait
		pollInterval = prevPoll
	})
}

func TestAttemptSchoolLogin(t *testing.T) {
	shortenWaits(t, time.Second)

	browser := &fakeBrowser{
		urls: []string{
			"https://www.gradescope.com/auth/saml/school",
			"https://idp.school.edu/sso",
			"https://www.gradescope.com/account",
		},
		cookies: []Cookie{
			{Name: "signed_token", Value: "stale"},
			{Name: "_gradescope_session", Value: "def"},
			{Name: "signed_token", Value: "fresh"},
		},
	}

	tokens, err := AttemptSchoolLogin(context.Background(), browser, "school")
	require.NoError(t, err)
	require.Equal(t, "https://www.gradescope.com/auth/saml/school?remember_me=1", browser.navigatedTo)

	// duplicates resolve to the last value the browser reported
	require.Equal(t, core.TokenSet{
		"signed_token":        "fresh",
		"_gradescope_session": "def",
	}, tokens)
}

func TestAttemptSchoolLoginTimesOut(t *testing.T) {
	shortenWaits(t, time.Millisecond*20)

	browser := &fakeBrowser{
		urls: []string{"https://idp.school.edu/sso"},
	}

	_, err := AttemptSchoolLogin(context.Background(), browser, "school")
	require.ErrorIs(t, err, ErrAuthTimeout)
}

func TestAttemptSchoolLoginCancelled(t *testing.T) {
	shortenWaits(t, time.Second*10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*20)
	defer cancel()

	browser := &fakeBrowser{
		urls: []string{"https://idp.school.edu/sso"},
	}

	_, err := AttemptSchoolLogin(ctx, browser, "school")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNormalizeTokens(t *testing.T) {
	tokens := NormalizeTokens([]Cookie{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "2"},
		{Name: "a", Value: "3"},
	})
	require.Equal(t, core.TokenSet{"a": "3", "b": "2"}, tokens)

	require.Equal(t, core.TokenSet{}, NormalizeTokens(nil))
}

func TestSaveLoadTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	tokens := core.TokenSet{
		"signed_token":        "abc",
		"_gradescope_session": "def",
	}

	require.NoError(t, SaveTokens(path, tokens))

	loaded, err := LoadTokens(path)
	require.NoError(t, err)
	require.Equal(t, tokens, loaded)
}

func TestLoadTokensFromCookieDump(t *testing.T) {
	// webdrivers dump cookies as a list of objects, not a flat map
	path := filepath.Join(t.TempDir(), "cookies.json")
	dump := `[
		{"name": "signed_token", "value": "stale", "domain": ".gradescope.com"},
		{"name": "_gradescope_session", "value": "def"},
		{"name": "signed_token", "value": "fresh"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(dump), 0600))

	loaded, err := LoadTokens(path)
	require.NoError(t, err)
	require.Equal(t, core.TokenSet{
		"signed_token":        "fresh",
		"_gradescope_session": "def",
	}, loaded)
}

func TestLoadTokensRejectsGarbage(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{name: "string", contents: `"just a string"`},
		{name: "null", contents: `null`},
		{name: "empty object", contents: `{}`},
		{name: "empty list", contents: `[]`},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tokens.json")
			require.NoError(t, os.WriteFile(path, []byte(test.contents), 0600))

			tokens, err := LoadTokens(path)
			require.Error(t, err)
			require.Nil(t, tokens)
		})
	}
}
