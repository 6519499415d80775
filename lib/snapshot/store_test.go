package snapshot

import (
	"context"
	"path/filepath"
	"searchprobe/lib/ebay"
	"searchprobe/lib/relevance"
	"searchprobe/lib/snapshot/db"
	"searchprobe/lib/testutil"
	"searchprobe/lib/twitter"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func newTestStore(t testing.TB) *Store {
	store, err := NewStore(context.Background(), testutil.OpenDB(t, db.Schema))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRecordListings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	fetchedAt := time.Date(2017, time.January, 15, 0, 0, 0, 0, time.UTC)
	listing := ebay.Listing{
		ItemID:          "112233445566",
		Title:           "Super Mario Bros NES PAL Cartridge",
		GlobalID:        "EBAY-AU",
		Location:        "Melbourne,VIC,Australia",
		Country:         "AU",
		CategoryName:    "Video Games",
		Condition:       "Used",
		ListingType:     "Auction",
		SellingState:    "EndedWithSales",
		StartTime:       time.Date(2017, time.January, 7, 5, 37, 6, 0, time.UTC),
		EndTime:         time.Date(2017, time.January, 14, 5, 37, 6, 0, time.UTC),
		CurrentPrice:    ebay.Money{Amount: decimal.RequireFromString("24.95"), Currency: "AUD"},
		ShippingCost:    ebay.Money{Amount: decimal.RequireFromString("8.5"), Currency: "AUD"},
		ShipToLocations: []string{"AU", "NZ"},
		URL:             "http://www.ebay.com.au/itm/112233445566",
	}
	// the listings between were filtered out, the position is kept
	bare := ebay.Listing{Position: 3, ItemID: "2", Title: "no extras"}

	id, err := store.RecordListings(ctx, Fetch{
		Operation: string(ebay.FindCompletedItems),
		Query:     "super mario bros nes",
		URL:       "https://svcs.ebay.com/services/search/FindingService/v1?SECURITY-APPNAME=REDACTED",
		FetchedAt: fetchedAt,
		Raw:       []byte(`{"findCompletedItemsResponse":[]}`),
	}, []relevance.Scored[ebay.Listing]{
		{Item: listing, Score: 1},
		{Item: bare, Score: 0.25},
	})
	require.NoError(t, err)

	fetch, err := store.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, SourceEbay, fetch.Source)
	require.Equal(t, "findCompletedItems", fetch.Operation)
	require.Equal(t, fetchedAt, fetch.FetchedAt)
	require.Equal(t, `{"findCompletedItemsResponse":[]}`, string(fetch.Raw))

	records, err := store.ListingsFor(ctx, id)
	require.NoError(t, err)
	require.Len(t, records, 2)

	diff := cmp.Diff(ListingRecord{Position: 0, Listing: listing, Relevance: 1}, records[0], decimalComparer)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, 3, records[1].Position)
	require.Equal(t, 3, records[1].Listing.Position)
	require.Nil(t, records[1].Listing.ShipToLocations)
	require.True(t, records[1].Listing.StartTime.IsZero())
	require.True(t, records[1].Listing.CurrentPrice.IsZero())
	require.True(t, records[1].Listing.EndTime.IsZero())
	require.InDelta(t, 0.25, records[1].Relevance, 0.0001)
}

func TestRecordPosts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	posts := []twitter.Post{
		{
			IDStr:         "815400000000000011",
			CreatedAt:     "Sun Jan 01 04:48:47 +0000 2017",
			Text:          "First sunrise of the year",
			Lang:          "en",
			User:          twitter.User{ScreenName: "sunrise_sue"},
			RetweetCount:  3,
			FavoriteCount: 7,
		},
		{
			IDStr:           "815400000000000012",
			CreatedAt:       "not a date",
			Text:            "RT @nasa: hello",
			FullText:        "RT @nasa: hello from orbit",
			User:            twitter.User{ScreenName: "orbitfan"},
			RetweetedStatus: &twitter.Post{IDStr: "1"},
		},
	}
	id, err := store.RecordPosts(ctx, Fetch{Operation: "search", Query: "new year"}, posts)
	require.NoError(t, err)

	records, err := store.PostsFor(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []PostRecord{
		{
			Position:      0,
			PostID:        "815400000000000011",
			ScreenName:    "sunrise_sue",
			Body:          "First sunrise of the year",
			Lang:          "en",
			CreatedAt:     time.Date(2017, time.January, 1, 4, 48, 47, 0, time.UTC),
			RetweetCount:  3,
			FavoriteCount: 7,
		},
		{
			Position:   1,
			PostID:     "815400000000000012",
			ScreenName: "orbitfan",
			Body:       "RT @nasa: hello from orbit",
			IsRetweet:  true,
		},
	}, records)

	fetch, err := store.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, SourceTwitter, fetch.Source)
	require.False(t, fetch.FetchedAt.IsZero())
}

func TestFetchesAndPrune(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, source := range []string{SourceEbay, SourceTwitter, SourceEbay} {
		fetch := Fetch{Operation: "op", Query: "q", FetchedAt: base.Add(time.Duration(i) * time.Hour)}
		var err error
		if source == SourceEbay {
			_, err = store.RecordListings(ctx, fetch, []relevance.Scored[ebay.Listing]{
				{Item: ebay.Listing{ItemID: "1", Title: "t"}, Score: 1},
			})
		} else {
			_, err = store.RecordPosts(ctx, fetch, []twitter.Post{{IDStr: "1"}})
		}
		require.NoError(t, err)
	}

	all, err := store.Fetches(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, base.Add(2*time.Hour), all[0].FetchedAt)
	require.Nil(t, all[0].Raw)

	ebayOnly, err := store.Fetches(ctx, SourceEbay, 1)
	require.NoError(t, err)
	require.Len(t, ebayOnly, 1)
	require.Equal(t, SourceEbay, ebayOnly[0].Source)

	oldest := all[2]
	deleted, err := store.Prune(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = store.Fetch(ctx, oldest.ID)
	require.ErrorIs(t, err, ErrFetchNotFound)
	listings, err := store.ListingsFor(ctx, oldest.ID)
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.RecordPosts(ctx, Fetch{Operation: "search", Query: "q"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// reopening keeps existing rows and tolerates the existing schema
	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	fetches, err := store.Fetches(ctx, SourceTwitter, 0)
	require.NoError(t, err)
	require.Len(t, fetches, 1)
}

func TestOpenDBRequiresPath(t *testing.T) {
	_, err := OpenDB("")
	require.Error(t, err)
	require.True(t, isRemote("libsql://example.turso.io"))
	require.False(t, isRemote("./snapshots.db"))
}
