package ebay

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildURLEntriesPerPage(t *testing.T) {
	for _, n := range []int{1, 3, 100} {
		u, err := BuildURL(DefaultBaseURL, "app-id", SearchRequest{
			Operation:      FindCompletedItems,
			Keywords:       "super mario bros nes",
			EntriesPerPage: n,
		})
		require.NoError(t, err)

		values := u.Query()["paginationInput.entriesPerPage"]
		require.Len(t, values, 1)
		require.Equal(t, strconv.Itoa(n), values[0])
	}
}

func TestBuildURLParameters(t *testing.T) {
	u, err := BuildURL(DefaultBaseURL, "app-id", SearchRequest{
		Operation: FindItemsByKeywords,
		Keywords:  "teenage mutant hero turtles nes",
		GlobalID:  "EBAY-GB",
	})
	require.NoError(t, err)

	require.Equal(t, "svcs.ebay.com", u.Host)
	require.Equal(t, "/services/search/FindingService/v1", u.Path)

	query := u.Query()
	require.Equal(t, "findItemsByKeywords", query.Get("OPERATION-NAME"))
	require.Equal(t, DefaultServiceVersion, query.Get("SERVICE-VERSION"))
	require.Equal(t, "app-id", query.Get("SECURITY-APPNAME"))
	require.Equal(t, "EBAY-GB", query.Get("GLOBAL-ID"))
	require.Equal(t, "JSON", query.Get("RESPONSE-DATA-FORMAT"))
	require.True(t, query.Has("REST-PAYLOAD"))
	require.Equal(t, "teenage mutant hero turtles nes", query.Get("keywords"))
	require.False(t, query.Has("paginationInput.entriesPerPage"))
	require.False(t, query.Has("paginationInput.pageNumber"))

	require.Contains(t, u.RawQuery, "keywords=teenage%20mutant%20hero%20turtles%20nes")
}

func TestBuildURLDefaults(t *testing.T) {
	u, err := BuildURL(DefaultBaseURL, "app-id", SearchRequest{
		Operation:  FindCompletedItems,
		Keywords:   "trolls nes pal a",
		PageNumber: 2,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultGlobalID, u.Query().Get("GLOBAL-ID"))
	require.Equal(t, "2", u.Query().Get("paginationInput.pageNumber"))
}

func TestBuildURLValidation(t *testing.T) {
	testCases := []struct {
		name  string
		appID string
		req   SearchRequest
		err   error
	}{
		{
			name:  "unknown operation",
			appID: "app-id",
			req:   SearchRequest{Operation: "findItemsAdvanced", Keywords: "nes"},
			err:   ErrInvalidRequest,
		},
		{
			name:  "empty keywords",
			appID: "app-id",
			req:   SearchRequest{Operation: FindCompletedItems, Keywords: "  "},
			err:   ErrInvalidRequest,
		},
		{
			name:  "too many entries",
			appID: "app-id",
			req:   SearchRequest{Operation: FindCompletedItems, Keywords: "nes", EntriesPerPage: 101},
			err:   ErrInvalidRequest,
		},
		{
			name:  "negative page",
			appID: "app-id",
			req:   SearchRequest{Operation: FindCompletedItems, Keywords: "nes", PageNumber: -1},
			err:   ErrInvalidRequest,
		},
		{
			name: "missing app id",
			req:  SearchRequest{Operation: FindCompletedItems, Keywords: "nes"},
			err:  ErrMissingAppID,
		},
	}

	for _, test := range testCases {
		_, err := BuildURL(DefaultBaseURL, test.appID, test.req)
		require.True(t, errors.Is(err, test.err), "%s: %v", test.name, err)
	}
}
