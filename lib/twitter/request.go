package twitter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type ResultType string

const (
	ResultMixed   ResultType = "mixed"
	ResultRecent  ResultType = "recent"
	ResultPopular ResultType = "popular"
)

const (
	DefaultCount = 100
	MaxCount     = 100
	DefaultLang  = "en"
)

const excludeRetweetsOperator = "-filter:retweets"

var ErrInvalidRequest = errors.New("invalid search request")

type SearchRequest struct {
	Query string
	// 0 means DefaultCount.
	Count int
	// ISO 639-1 code, "" means DefaultLang.
	Lang string
	// "" means ResultMixed.
	ResultType ResultType
	// appends -filter:retweets to the query
	ExcludeRetweets bool
	// requests full_text instead of 140 character truncated text
	Extended bool
}

func (r SearchRequest) withDefaults() SearchRequest {
	if r.Count == 0 {
		r.Count = DefaultCount
	}
	if r.Lang == "" {
		r.Lang = DefaultLang
	}
	if r.ResultType == "" {
		r.ResultType = ResultMixed
	}
	return r
}

func (r SearchRequest) query() string {
	q := strings.TrimSpace(r.Query)
	if r.ExcludeRetweets && !strings.Contains(q, excludeRetweetsOperator) {
		q += " " + excludeRetweetsOperator
	}
	return q
}

// Values renders the query string parameters of the request.
func (r SearchRequest) Values() (url.Values, error) {
	r = r.withDefaults()
	if strings.TrimSpace(r.Query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidRequest)
	}
	if r.Count < 1 || r.Count > MaxCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidRequest, MaxCount, r.Count)
	}
	switch r.ResultType {
	case ResultMixed, ResultRecent, ResultPopular:
	default:
		return nil, fmt.Errorf("%w: unknown result type %q", ErrInvalidRequest, r.ResultType)
	}

	values := url.Values{}
	values.Set("q", r.query())
	values.Set("count", strconv.Itoa(r.Count))
	values.Set("lang", r.Lang)
	values.Set("result_type", string(r.ResultType))
	if r.Extended {
		values.Set("tweet_mode", "extended")
	}
	return values, nil
}
