package ebay

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Operation string

const (
	FindItemsByKeywords Operation = "findItemsByKeywords"
	FindCompletedItems  Operation = "findCompletedItems"
)

func (o Operation) valid() bool {
	return o == FindItemsByKeywords || o == FindCompletedItems
}

// responseKey is the single top-level key of the JSON envelope.
func (o Operation) responseKey() string {
	return string(o) + "Response"
}

const (
	DefaultBaseURL        = "https://svcs.ebay.com/services/search/FindingService/v1"
	DefaultGlobalID       = "EBAY-AU"
	DefaultServiceVersion = "1.12.0"

	// the service caps a page at 100 entries and returns 100 when
	// paginationInput.entriesPerPage is not sent
	MaxEntriesPerPage = 100
)

// SearchRequest is a single page of a keyword search.
type SearchRequest struct {
	Operation Operation
	Keywords  string
	// GlobalID selects the eBay site, ex. EBAY-AU, EBAY-GB, EBAY-US.
	GlobalID       string
	ServiceVersion string
	// 0 leaves the parameter out.
	EntriesPerPage int
	// 0 leaves the parameter out.
	PageNumber int
}

func (r SearchRequest) withDefaults() SearchRequest {
	if r.GlobalID == "" {
		r.GlobalID = DefaultGlobalID
	}
	if r.ServiceVersion == "" {
		r.ServiceVersion = DefaultServiceVersion
	}
	return r
}

func (r SearchRequest) validate() error {
	if !r.Operation.valid() {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, r.Operation)
	}
	if strings.TrimSpace(r.Keywords) == "" {
		return fmt.Errorf("%w: keywords must not be empty", ErrInvalidRequest)
	}
	if r.EntriesPerPage < 0 || r.EntriesPerPage > MaxEntriesPerPage {
		return fmt.Errorf(
			"%w: entries per page must be between 0 and %d, got %d",
			ErrInvalidRequest, MaxEntriesPerPage, r.EntriesPerPage,
		)
	}
	if r.PageNumber < 0 {
		return fmt.Errorf("%w: page number must not be negative", ErrInvalidRequest)
	}
	return nil
}

// BuildURL renders the GET url for a search. The app id is placed in the
// query string as SECURITY-APPNAME, which is how the Finding API
// authenticates callers.
func BuildURL(baseURL, appID string, req SearchRequest) (*url.URL, error) {
	req = req.withDefaults()
	err := req.validate()
	if err != nil {
		return nil, err
	}
	if appID == "" {
		return nil, ErrMissingAppID
	}

	endpoint, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	query := endpoint.Query()
	query.Set("OPERATION-NAME", string(req.Operation))
	query.Set("SERVICE-VERSION", req.ServiceVersion)
	query.Set("SECURITY-APPNAME", appID)
	query.Set("GLOBAL-ID", req.GlobalID)
	query.Set("RESPONSE-DATA-FORMAT", "JSON")
	query.Set("REST-PAYLOAD", "")
	query.Set("keywords", req.Keywords)
	if req.EntriesPerPage > 0 {
		query.Set("paginationInput.entriesPerPage", strconv.Itoa(req.EntriesPerPage))
	}
	if req.PageNumber > 0 {
		query.Set("paginationInput.pageNumber", strconv.Itoa(req.PageNumber))
	}
	// keywords are sent with %20 the way the service documents them
	endpoint.RawQuery = strings.ReplaceAll(query.Encode(), "+", "%20")

	return endpoint, nil
}
