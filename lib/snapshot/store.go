// Package snapshot records fetched search responses and their flattened
// rows in sqlite or libsql.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"searchprobe/lib/ebay"
	"searchprobe/lib/relevance"
	"searchprobe/lib/snapshot/db"
	"searchprobe/lib/twitter"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("searchprobe/snapshot")

const (
	SourceEbay    = "ebay"
	SourceTwitter = "twitter"
)

var ErrFetchNotFound = errors.New("fetch not found")

func isRemote(dsn string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// OpenDB opens dsn with the libsql driver for remote urls and the sqlite
// driver for everything else, including ":memory:".
func OpenDB(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	if isRemote(dsn) {
		return sql.Open("libsql", dsn)
	}

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases and pragmas shared,
	// and sqlite only allows one writer anyway
	database.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		_, err = database.Exec(pragma)
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

// Open opens dsn and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	database, err := OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	store, err := NewStore(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(ctx context.Context, database *sql.DB) (*Store, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{
		db:  database,
		qry: db.New(database),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Fetch is one search request as it was sent and answered.
type Fetch struct {
	ID        int64
	Source    string
	Operation string
	Query     string
	// redacted request url
	URL       string
	FetchedAt time.Time
	// unset when listed through Fetches
	Raw []byte
}

type ListingRecord struct {
	Position  int
	Listing   ebay.Listing
	Relevance float64
}

type PostRecord struct {
	Position      int
	PostID        string
	ScreenName    string
	Body          string
	Lang          string
	CreatedAt     time.Time
	IsRetweet     bool
	RetweetCount  int
	FavoriteCount int
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNullTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(v.Int64, 0).UTC()
}

func nullAmount(m ebay.Money) sql.NullString {
	if m.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: m.Amount.String(), Valid: true}
}

func fromNullAmount(v sql.NullString, currency string) (ebay.Money, error) {
	if !v.Valid {
		return ebay.Money{}, nil
	}
	amount, err := decimal.NewFromString(v.String)
	if err != nil {
		return ebay.Money{}, err
	}
	return ebay.Money{Amount: amount, Currency: currency}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (s *Store) withTx(ctx context.Context, fn func(qry *db.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = fn(s.qry.WithTx(tx))
	if err != nil {
		return err
	}
	return tx.Commit()
}

func createFetch(ctx context.Context, qry *db.Queries, source string, fetch Fetch) (int64, error) {
	fetchedAt := fetch.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	raw := fetch.Raw
	if raw == nil {
		raw = []byte{}
	}
	return qry.CreateFetch(ctx, db.CreateFetchParams{
		Source:    source,
		Operation: fetch.Operation,
		Query:     fetch.Query,
		Url:       fetch.URL,
		FetchedAt: fetchedAt.Unix(),
		Raw:       raw,
	})
}

// RecordListings writes one fetch row and one row per listing in a single
// transaction, returning the new fetch id. Rows are keyed by each listing's
// Position so they line up with searchResult.item in the raw body.
func (s *Store) RecordListings(ctx context.Context, fetch Fetch, listings []relevance.Scored[ebay.Listing]) (int64, error) {
	ctx, span := tracer.Start(ctx, "RecordListings")
	defer span.End()
	span.SetAttributes(attribute.Int("listings", len(listings)))

	var fetchID int64
	err := s.withTx(ctx, func(qry *db.Queries) error {
		var err error
		fetchID, err = createFetch(ctx, qry, SourceEbay, fetch)
		if err != nil {
			return fmt.Errorf("create fetch: %w", err)
		}
		for _, scored := range listings {
			l := scored.Item
			err = qry.CreateListing(ctx, db.CreateListingParams{
				FetchID:         fetchID,
				Position:        int64(l.Position),
				ItemID:          l.ItemID,
				Title:           l.Title,
				GlobalID:        l.GlobalID,
				Location:        l.Location,
				Country:         l.Country,
				CategoryName:    l.CategoryName,
				Condition:       l.Condition,
				ListingType:     l.ListingType,
				SellingState:    l.SellingState,
				CurrentPrice:    nullAmount(l.CurrentPrice),
				Currency:        l.CurrentPrice.Currency,
				ShippingCost:    nullAmount(l.ShippingCost),
				ShipToLocations: strings.Join(l.ShipToLocations, ","),
				StartTime:       nullTime(l.StartTime),
				EndTime:         nullTime(l.EndTime),
				Url:             l.URL,
				Relevance:       scored.Score,
			})
			if err != nil {
				return fmt.Errorf("create listing %s: %w", l.ItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return fetchID, nil
}

// RecordPosts writes one fetch row and one row per post in a single
// transaction, returning the new fetch id.
func (s *Store) RecordPosts(ctx context.Context, fetch Fetch, posts []twitter.Post) (int64, error) {
	ctx, span := tracer.Start(ctx, "RecordPosts")
	defer span.End()
	span.SetAttributes(attribute.Int("posts", len(posts)))

	var fetchID int64
	err := s.withTx(ctx, func(qry *db.Queries) error {
		var err error
		fetchID, err = createFetch(ctx, qry, SourceTwitter, fetch)
		if err != nil {
			return fmt.Errorf("create fetch: %w", err)
		}
		for i, p := range posts {
			// posts with unparseable timestamps are still recorded
			created, _ := p.CreatedTime()
			err = qry.CreatePost(ctx, db.CreatePostParams{
				FetchID:       fetchID,
				Position:      int64(i),
				PostID:        p.IDStr,
				ScreenName:    p.User.ScreenName,
				Body:          p.Body(),
				Lang:          p.Lang,
				CreatedAt:     nullTime(created),
				IsRetweet:     boolToInt(p.IsRetweet()),
				RetweetCount:  int64(p.RetweetCount),
				FavoriteCount: int64(p.FavoriteCount),
			})
			if err != nil {
				return fmt.Errorf("create post %s: %w", p.IDStr, err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return fetchID, nil
}

// Fetches lists the most recent fetches first. An empty source lists every
// source, limit <= 0 means no limit.
func (s *Store) Fetches(ctx context.Context, source string, limit int) ([]Fetch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.qry.ListFetches(ctx, db.ListFetchesParams{
		Source: source,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, err
	}
	result := make([]Fetch, len(rows))
	for i, row := range rows {
		result[i] = Fetch{
			ID:        row.ID,
			Source:    row.Source,
			Operation: row.Operation,
			Query:     row.Query,
			URL:       row.Url,
			FetchedAt: time.Unix(row.FetchedAt, 0).UTC(),
		}
	}
	return result, nil
}

// Fetch returns a single fetch including its raw body.
func (s *Store) Fetch(ctx context.Context, id int64) (Fetch, error) {
	row, err := s.qry.GetFetch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Fetch{}, fmt.Errorf("%w: %d", ErrFetchNotFound, id)
	}
	if err != nil {
		return Fetch{}, err
	}
	return Fetch{
		ID:        row.ID,
		Source:    row.Source,
		Operation: row.Operation,
		Query:     row.Query,
		URL:       row.Url,
		FetchedAt: time.Unix(row.FetchedAt, 0).UTC(),
		Raw:       row.Raw,
	}, nil
}

func (s *Store) ListingsFor(ctx context.Context, fetchID int64) ([]ListingRecord, error) {
	rows, err := s.qry.GetListings(ctx, fetchID)
	if err != nil {
		return nil, err
	}
	result := make([]ListingRecord, len(rows))
	for i, row := range rows {
		price, err := fromNullAmount(row.CurrentPrice, row.Currency)
		if err != nil {
			return nil, fmt.Errorf("listing %s: current price: %w", row.ItemID, err)
		}
		shipping, err := fromNullAmount(row.ShippingCost, row.Currency)
		if err != nil {
			return nil, fmt.Errorf("listing %s: shipping cost: %w", row.ItemID, err)
		}
		var shipTo []string
		if row.ShipToLocations != "" {
			shipTo = strings.Split(row.ShipToLocations, ",")
		}
		result[i] = ListingRecord{
			Position:  int(row.Position),
			Relevance: row.Relevance,
			Listing: ebay.Listing{
				Position:        int(row.Position),
				ItemID:          row.ItemID,
				Title:           row.Title,
				GlobalID:        row.GlobalID,
				Location:        row.Location,
				Country:         row.Country,
				CategoryName:    row.CategoryName,
				ListingType:     row.ListingType,
				SellingState:    row.SellingState,
				Condition:       row.Condition,
				StartTime:       fromNullTime(row.StartTime),
				EndTime:         fromNullTime(row.EndTime),
				CurrentPrice:    price,
				ShippingCost:    shipping,
				ShipToLocations: shipTo,
				URL:             row.Url,
			},
		}
	}
	return result, nil
}

func (s *Store) PostsFor(ctx context.Context, fetchID int64) ([]PostRecord, error) {
	rows, err := s.qry.GetPosts(ctx, fetchID)
	if err != nil {
		return nil, err
	}
	result := make([]PostRecord, len(rows))
	for i, row := range rows {
		result[i] = PostRecord{
			Position:      int(row.Position),
			PostID:        row.PostID,
			ScreenName:    row.ScreenName,
			Body:          row.Body,
			Lang:          row.Lang,
			CreatedAt:     fromNullTime(row.CreatedAt),
			IsRetweet:     row.IsRetweet != 0,
			RetweetCount:  int(row.RetweetCount),
			FavoriteCount: int(row.FavoriteCount),
		}
	}
	return result, nil
}

// Prune deletes every fetch recorded before the given time together with
// its listings and posts.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "Prune")
	defer span.End()

	var deleted int64
	err := s.withTx(ctx, func(qry *db.Queries) error {
		var err error
		deleted, err = qry.DeleteFetchesBefore(ctx, before.Unix())
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("deleted", deleted))
	return deleted, nil
}
