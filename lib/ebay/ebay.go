// Package ebay is a client for the eBay Finding API keyword searches,
// findItemsByKeywords and findCompletedItems.
package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"searchprobe/lib/jsonpath"
	"searchprobe/lib/restyutil"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("searchprobe/ebay")

type ClientOptions struct {
	// defaults to DefaultBaseURL
	BaseURL string
	AppID   string
	// defaults to 30 seconds
	Timeout time.Duration
	// defaults to 5, the limiter never lets requests burst
	RequestsPerSecond float64
	// when set, every request/response pair is written to it
	Dump restyutil.InstrumentOutput
}

type Client struct {
	baseURL string
	appID   string
	http    *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.AppID == "" {
		return nil, ErrMissingAppID
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 5
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("accept", "application/json")
	client.SetHeader("user-agent", "searchprobe")

	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	restyutil.InstrumentClient(client, otel.Tracer("searchprobe/ebay/http"), opts.Dump)

	return &Client{
		baseURL: opts.BaseURL,
		appID:   opts.AppID,
		http:    client,
	}, nil
}

// SearchResult is one decoded page together with the body it came from.
type SearchResult struct {
	Operation Operation
	// the request url with the app id redacted
	URL      string
	Response Response
	Raw      []byte
}

// Search issues one GET for req and decodes the response. It fails on
// transport errors, non-2xx statuses, undecodable bodies and on an ack of
// Failure or PartialFailure.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	endpoint, err := BuildURL(c.baseURL, c.appID, req)
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	redacted := restyutil.RedactURL(endpoint.String())
	span.SetAttributes(
		attribute.String("operation", string(req.Operation)),
		attribute.String("keywords", req.Keywords),
		attribute.String("url", redacted),
	)

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
		return nil, &StatusError{StatusCode: res.StatusCode(), Body: res.String()}
	}

	response, err := decodeResponse(req.Operation, res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return nil, err
	}

	result := &SearchResult{
		Operation: req.Operation,
		URL:       redacted,
		Response:  response,
		Raw:       res.Body(),
	}
	span.SetAttributes(attribute.Int("items", len(result.Items())))
	slog.DebugContext(ctx, "ebay search finished", "operation", req.Operation, "items", len(result.Items()))

	return result, nil
}

func (c *Client) FindItemsByKeywords(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req.Operation = FindItemsByKeywords
	return c.Search(ctx, req)
}

func (c *Client) FindCompletedItems(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req.Operation = FindCompletedItems
	return c.Search(ctx, req)
}

func decodeResponse(op Operation, body []byte) (Response, error) {
	var env envelope
	err := json.Unmarshal(body, &env)
	if err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	responses, ok := env[op.responseKey()]
	if !ok {
		return Response{}, missing(op.responseKey())
	}
	response, ok := first(responses)
	if !ok {
		return Response{}, missing(op.responseKey() + ".0")
	}

	ack, _ := first(response.Ack)
	switch ack {
	case "Success", "Warning":
		return response, nil
	}
	var messages []ErrorData
	for _, m := range response.ErrorMessage {
		messages = append(messages, m.Error...)
	}
	return Response{}, &APIError{Ack: ack, Messages: messages}
}

// Items returns every item of the first result set.
func (r *SearchResult) Items() []Item {
	results, ok := first(r.Response.SearchResult)
	if !ok {
		return nil
	}
	return results.Item
}

func (r *SearchResult) Item(i int) (Item, error) {
	items := r.Items()
	if i < 0 || i >= len(items) {
		return Item{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(items))
	}
	return items[i], nil
}

// Listings summarizes every item. Items that cannot be summarized are
// skipped and reported through the returned error, the rest are still
// returned with their original Position.
func (r *SearchResult) Listings() ([]Listing, error) {
	var listings []Listing
	var errs []error
	for i, item := range r.Items() {
		l, err := Summarize(item)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		l.Position = i
		listings = append(listings, l)
	}
	return listings, errors.Join(errs...)
}

// Lookup resolves path relative to the response object, the same object
// Response is decoded from, so "searchResult.0.item.0.title.0" works
// without spelling out the envelope.
func (r *SearchResult) Lookup(path ...any) (gjson.Result, error) {
	full := append(jsonpath.Path{r.Operation.responseKey(), 0}, path...)
	return jsonpath.Lookup(r.Raw, full...)
}

// TotalEntries is paginationOutput.totalEntries, or -1 when absent.
func (r *SearchResult) TotalEntries() int {
	p, ok := first(r.Response.PaginationOutput)
	if !ok {
		return -1
	}
	total, ok := first(p.TotalEntries)
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return -1
	}
	return n
}
