// Package twitter is a client for the standard v1.1 tweet search.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"searchprobe/lib/jsonpath"
	"searchprobe/lib/restyutil"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("searchprobe/twitter")

const (
	DefaultBaseURL  = "https://api.twitter.com/1.1"
	DefaultTokenURL = "https://api.twitter.com/oauth2/token"
	searchPath      = "/search/tweets.json"
)

var (
	ErrNoCredentials   = errors.New("twitter consumer key and secret are not configured")
	ErrIndexOutOfRange = errors.New("post index out of range")
)

// Credentials for either OAuth1 user context (all four fields) or
// application-only auth (consumer key and secret only).
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

func (c Credentials) userContext() bool {
	return c.AccessToken != "" && c.AccessSecret != ""
}

type ClientOptions struct {
	Credentials Credentials
	// defaults to DefaultBaseURL
	BaseURL string
	// application-only token endpoint, defaults to DefaultTokenURL
	TokenURL string
	// defaults to 30 seconds
	Timeout time.Duration
	// defaults to 1, the limiter never lets requests burst
	RequestsPerSecond float64
	Dump              restyutil.InstrumentOutput
}

type Client struct {
	http *resty.Client
}

// NewClient builds an authenticated client. OAuth1 signing is used when an
// access token and secret are present, otherwise a bearer token is fetched
// from TokenURL with the client credentials grant on first use.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	creds := opts.Credentials
	if creds.ConsumerKey == "" || creds.ConsumerSecret == "" {
		return nil, ErrNoCredentials
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1
	}

	var httpClient *http.Client
	if creds.userContext() {
		config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
		token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
		httpClient = config.Client(ctx, token)
		slog.DebugContext(ctx, "twitter client using oauth1 user context")
	} else {
		config := clientcredentials.Config{
			ClientID:     creds.ConsumerKey,
			ClientSecret: creds.ConsumerSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		httpClient = config.Client(ctx)
		slog.DebugContext(ctx, "twitter client using application-only auth")
	}

	client := resty.NewWithClient(httpClient)
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("accept", "application/json")

	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	restyutil.InstrumentClient(client, otel.Tracer("searchprobe/twitter/http"), opts.Dump)

	return &Client{http: client}, nil
}

// APIError is a non-2xx response, with the service's error entries when
// the body carried any.
type APIError struct {
	StatusCode int
	Errors     []APIErrorEntry
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("twitter: unexpected status %d", e.StatusCode)
	}
	parts := make([]string, len(e.Errors))
	for i, entry := range e.Errors {
		parts[i] = fmt.Sprintf("[%d] %s", entry.Code, entry.Message)
	}
	return fmt.Sprintf("twitter: status %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

type SearchResult struct {
	Query string
	// the full request url, credentials travel in headers only
	URL      string
	Response SearchResponse
	Raw      []byte
}

// Search issues one GET search/tweets.json for a single page of results.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	values, err := req.Values()
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("query", values.Get("q")),
		attribute.String("result_type", values.Get("result_type")),
	)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(values).
		Get(searchPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
		apiErr := &APIError{StatusCode: res.StatusCode(), Body: res.String()}
		var parsed apiErrors
		if json.Unmarshal(res.Body(), &parsed) == nil {
			apiErr.Errors = parsed.Errors
		}
		return nil, apiErr
	}

	var response SearchResponse
	err = json.Unmarshal(res.Body(), &response)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return nil, fmt.Errorf("decode response: %w", err)
	}

	span.SetAttributes(attribute.Int("posts", len(response.Statuses)))
	slog.DebugContext(ctx, "twitter search finished", "query", values.Get("q"), "posts", len(response.Statuses))

	var requestURL string
	if res.Request.RawRequest != nil {
		requestURL = res.Request.RawRequest.URL.String()
	}

	return &SearchResult{
		Query:    values.Get("q"),
		URL:      requestURL,
		Response: response,
		Raw:      res.Body(),
	}, nil
}

func (r *SearchResult) Posts() []Post {
	return r.Response.Statuses
}

func (r *SearchResult) Post(i int) (Post, error) {
	posts := r.Posts()
	if i < 0 || i >= len(posts) {
		return Post{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(posts))
	}
	return posts[i], nil
}

// Lookup resolves path against the raw response body.
func (r *SearchResult) Lookup(path ...any) (gjson.Result, error) {
	return jsonpath.Lookup(r.Raw, path...)
}
