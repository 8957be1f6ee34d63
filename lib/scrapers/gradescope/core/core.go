package core

import (
	"bytes"
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"gradescrape-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope/core")

const DefaultBaseUrl = "https://www.gradescope.com"

// TokenSet maps cookie names to values and is what makes a client
// authenticated. It is produced by the login collaborator, deduplicated
// (last write wins) and treated as immutable from then on.
type TokenSet map[string]string

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tokens TokenSet
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	Tokens  TokenSet
	// when non-nil, full request/response transcripts are dumped here
	DebugOutput restyutil.InstrumentOutput
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	base := opts.BaseUrl
	if base == "" {
		base = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(base)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	// gradescope sits behind cloudflare
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	cookies := make([]*http.Cookie, 0, len(opts.Tokens))
	for name, value := range opts.Tokens {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	client.SetCookies(cookies)

	restyutil.InstrumentClient(client, tracer, opts.DebugOutput)

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		tokens:  opts.Tokens,
	}
	return c, nil
}

func (c *Client) Tokens() TokenSet {
	return c.tokens
}

// GetDocument issues an authenticated GET and parses the body for
// scraping. Non-2xx statuses come back as *HttpError.
func (c *Client) GetDocument(ctx context.Context, path string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:GetDocument")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	if res.IsError() {
		err := &HttpError{Status: res.StatusCode(), Url: res.Request.URL}
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx response")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return doc, nil
}

// CsrfToken fetches a page and reads the session-scoped anti-forgery
// token gradescope embeds in every authenticated page. The token is
// required on every mutating request; the parsed document is returned
// alongside it since most write flows also scrape the same page.
func (c *Client) CsrfToken(ctx context.Context, path string) (string, *goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:CsrfToken")
	defer span.End()

	doc, err := c.GetDocument(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return "", nil, err
	}

	token := doc.Find("meta[name='csrf-token']").AttrOr("content", "")
	if token == "" {
		err := &ScrapeError{Field: "csrf-token"}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", nil, err
	}
	return token, doc, nil
}

// FormFile is one binary part of a multipart submit.
type FormFile struct {
	Param       string
	Name        string
	ContentType string
	Data        []byte
}

// PostForm issues an authenticated POST mimicking what the web UI itself
// would submit. With files present the body goes out as multipart, else
// as a regular urlencoded form. Redirects are followed; use FinalPath on
// the response to see where the server landed us.
func (c *Client) PostForm(ctx context.Context, path string, fields map[string]string, files []FormFile) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "client:PostForm")
	defer span.End()

	req := c.Http.R().SetContext(ctx)
	if len(files) > 0 {
		req.SetMultipartFormData(fields)
		for _, f := range files {
			req.SetMultipartField(f.Param, f.Name, f.ContentType, bytes.NewReader(f.Data))
		}
	} else {
		req.SetFormData(fields)
	}

	res, err := req.Post(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make request")
		return nil, err
	}
	if res.IsError() {
		err := &HttpError{Status: res.StatusCode(), Url: res.Request.URL}
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx response")
		return nil, err
	}
	return res, nil
}

// FinalPath returns the URL path the request ended on after redirects.
// Creation flows encode the new resource's numeric id in it.
func FinalPath(res *resty.Response) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL.Path
	}
	return ""
}
