package ebay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"searchprobe/lib/testutil"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseURL:           server.URL + "/services/search/FindingService/v1",
		AppID:             "test-app-id",
		RequestsPerSecond: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func fixtureHandler(t testing.TB, name string, status int) http.HandlerFunc {
	body := testutil.ReadFixture(t, name)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}
}

func TestSearch(t *testing.T) {
	var received *http.Request
	body := testutil.ReadFixture(t, "find_completed_items.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		received = r
		w.Header().Set("content-type", "application/json")
		w.Write(body)
	})

	res, err := client.FindCompletedItems(context.Background(), SearchRequest{
		Keywords:       "super mario bros nes",
		EntriesPerPage: 3,
	})
	require.NoError(t, err)

	query := received.URL.Query()
	require.Equal(t, "findCompletedItems", query.Get("OPERATION-NAME"))
	require.Equal(t, "test-app-id", query.Get("SECURITY-APPNAME"))
	require.Equal(t, "3", query.Get("paginationInput.entriesPerPage"))

	require.Equal(t, FindCompletedItems, res.Operation)
	require.NotContains(t, res.URL, "test-app-id")
	require.Len(t, res.Items(), 3)
	require.Equal(t, 123, res.TotalEntries())
	require.Equal(t, body, res.Raw)
}

func TestItemEndTime(t *testing.T) {
	client := newTestClient(t, fixtureHandler(t, "find_completed_items.json", http.StatusOK))
	res, err := client.FindCompletedItems(context.Background(), SearchRequest{Keywords: "nes"})
	require.NoError(t, err)

	testCases := []struct {
		index    int
		expected string
	}{
		{index: 0, expected: "2017-01-14T05:37:06.000Z"},
		{index: 1, expected: "2017-01-10T10:00:00.000Z"},
	}
	for _, test := range testCases {
		item, err := res.Item(test.index)
		require.NoError(t, err)
		end, err := item.EndTime()
		require.NoError(t, err)
		require.Equal(t, test.expected, end)

		// the same field through path access on the raw body
		value, err := res.Lookup("searchResult", 0, "item", test.index, "listingInfo", 0, "endTime", 0)
		require.NoError(t, err)
		require.Equal(t, test.expected, value.String())
	}

	item, err := res.Item(2)
	require.NoError(t, err)
	_, err = item.EndTime()
	require.ErrorIs(t, err, ErrMissingField)

	_, err = res.Item(3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = res.Item(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestItemCurrentPrice(t *testing.T) {
	client := newTestClient(t, fixtureHandler(t, "find_completed_items.json", http.StatusOK))
	res, err := client.FindItemsByKeywords(context.Background(), SearchRequest{Keywords: "nes"})
	// the fixture is a findCompletedItems envelope
	require.ErrorIs(t, err, ErrMissingField)
	require.Nil(t, res)

	res, err = client.FindCompletedItems(context.Background(), SearchRequest{Keywords: "nes"})
	require.NoError(t, err)
	item, err := res.Item(0)
	require.NoError(t, err)

	price, err := item.CurrentPrice()
	require.NoError(t, err)
	require.True(t, price.Amount.Equal(decimal.RequireFromString("24.95")))
	require.Equal(t, "AUD", price.Currency)
	require.Equal(t, "24.95 AUD", price.String())
}

func TestSearchFailureAck(t *testing.T) {
	client := newTestClient(t, fixtureHandler(t, "failure.json", http.StatusOK))

	_, err := client.FindItemsByKeywords(context.Background(), SearchRequest{Keywords: "nes"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Failure", apiErr.Ack)
	require.Len(t, apiErr.Messages, 1)
	require.Contains(t, err.Error(), "[11002] Authentication failed")
}

func TestSearchStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	})

	_, err := client.FindCompletedItems(context.Background(), SearchRequest{Keywords: "nes"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	require.Equal(t, "maintenance", statusErr.Body)
}

func TestSearchMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"findCompletedItemsResponse": [`))
	})

	_, err := client.FindCompletedItems(context.Background(), SearchRequest{Keywords: "nes"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestSearchInvalidRequestSkipsNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.FindCompletedItems(context.Background(), SearchRequest{Keywords: ""})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.False(t, called)
}

func TestNewClientRequiresAppID(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.ErrorIs(t, err, ErrMissingAppID)
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func TestListings(t *testing.T) {
	client := newTestClient(t, fixtureHandler(t, "find_completed_items.json", http.StatusOK))
	res, err := client.FindCompletedItems(context.Background(), SearchRequest{Keywords: "nes"})
	require.NoError(t, err)

	listings, err := res.Listings()
	require.NoError(t, err)
	require.Len(t, listings, 3)

	expected := Listing{
		ItemID:       "112233445566",
		Title:        "Super Mario Bros NES PAL Cartridge",
		GlobalID:     "EBAY-AU",
		Location:     "Melbourne,VIC,Australia",
		Country:      "AU",
		CategoryName: "Video Games",
		ListingType:  "Auction",
		SellingState: "EndedWithSales",
		Condition:    "Used",
		StartTime:    time.Date(2017, time.January, 8, 5, 37, 6, 0, time.UTC),
		EndTime:      time.Date(2017, time.January, 14, 5, 37, 6, 0, time.UTC),
		CurrentPrice: Money{
			Amount:   decimal.RequireFromString("24.95"),
			Currency: "AUD",
		},
		ShippingCost: Money{
			Amount:   decimal.RequireFromString("8.5"),
			Currency: "AUD",
		},
		ShipToLocations: []string{"AU", "NZ"},
		URL:             "http://www.ebay.com.au/itm/Super-Mario-Bros-NES-/112233445566",
	}
	diff := cmp.Diff(expected, listings[0], decimalComparer)
	if diff != "" {
		t.Fatal(diff)
	}

	// optional fields stay empty
	require.Equal(t, 2, listings[2].Position)
	require.Equal(t, "", listings[2].CategoryName)
	require.True(t, listings[2].EndTime.IsZero())
	require.True(t, listings[2].ShippingCost.IsZero())
}

func TestListingsKeepItemPosition(t *testing.T) {
	res := &SearchResult{Response: Response{
		SearchResult: []SearchResults{{Item: []Item{
			{Title: []string{"no id"}},
			{ItemID: []string{"2"}, Title: []string{"second"}},
		}}},
	}}

	listings, err := res.Listings()
	require.ErrorIs(t, err, ErrMissingField)
	require.Len(t, listings, 1)
	require.Equal(t, 1, listings[0].Position)

	item, err := res.Item(listings[0].Position)
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, item.ItemID)
}

func TestTotalEntries(t *testing.T) {
	res := &SearchResult{}
	require.Equal(t, -1, res.TotalEntries())

	res.Response.PaginationOutput = []Pagination{{TotalEntries: []string{"123"}}}
	require.Equal(t, 123, res.TotalEntries())

	res.Response.PaginationOutput = []Pagination{{TotalEntries: []string{"lots"}}}
	require.Equal(t, -1, res.TotalEntries())
}

func TestSummarizeErrors(t *testing.T) {
	_, err := Summarize(Item{Title: []string{"no id"}})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = Summarize(Item{ItemID: []string{"1"}})
	require.ErrorIs(t, err, ErrMissingField)
	require.Contains(t, err.Error(), "title")

	_, err = Summarize(Item{
		ItemID: []string{"1"},
		Title:  []string{"bad price"},
		SellingStatus: []SellingStatus{{
			CurrentPrice: []Amount{{CurrencyID: "AUD", Value: "twelve"}},
		}},
		ListingInfo: []ListingInfo{{
			EndTime: []string{"yesterday"},
		}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "currentPrice")
	require.Contains(t, err.Error(), "endTime")
}
