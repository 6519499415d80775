package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"searchprobe/lib/ebay"
	"searchprobe/lib/jsonpath"
	"searchprobe/lib/relevance"
	"searchprobe/lib/restyutil"
	"searchprobe/lib/snapshot"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	ebayGlobalID       string
	ebayServiceVersion string
	ebayEntries        int
	ebayPage           int
	ebayMinRelevance   float64
	ebayItem           int
	ebayExclude        []string
)

func init() {
	flags := ebayCmd.PersistentFlags()
	flags.StringVar(&ebayGlobalID, "global-id", "", "The eBay site to search, ex. EBAY-AU, EBAY-GB. Defaults to the config or EBAY-AU.")
	flags.StringVar(&ebayServiceVersion, "service-version", "", "The Finding API version, defaults to the config or 1.12.0.")
	flags.IntVar(&ebayEntries, "entries", 0, "Entries per page (1-100), 0 leaves it to the service.")
	flags.IntVar(&ebayPage, "page", 0, "The page number, 0 leaves it to the service.")
	flags.Float64Var(&ebayMinRelevance, "min-relevance", 0, "Drop listings whose title scores below this (0-1) against the keywords.")
	flags.StringSliceVar(&ebayExclude, "exclude", nil, "Drop listings whose title contains any of these terms, ex. --exclude 'box only,repro'.")
	flags.IntVar(&ebayItem, "item", -1, "Print every summarized field of the item at this index, the # column of the listing table, instead of the table.")

	ebayCmd.AddCommand(ebayFindCmd, ebayCompletedCmd, ebayURLCmd)
	rootCmd.AddCommand(ebayCmd)
}

var ebayCmd = &cobra.Command{
	Use:   "ebay",
	Short: "Search listings through the eBay Finding API.",
}

func ebaySearchFromFlags(op ebay.Operation, args []string) ebaySearchOptions {
	return ebaySearchOptions{
		Request: ebay.SearchRequest{
			Operation:      op,
			Keywords:       strings.Join(args, " "),
			GlobalID:       ebayGlobalID,
			ServiceVersion: ebayServiceVersion,
			EntriesPerPage: ebayEntries,
			PageNumber:     ebayPage,
		},
		MinRelevance: ebayMinRelevance,
		Exclude:      ebayExclude,
		Item:         ebayItem,
		Path:         pathExpr,
		Format:       outputFormat,
		RawOut:       rawOut,
		DumpDir:      dumpDir,
		DB:           dbPath,
	}
}

func ebaySearchCommand(use, short string, op ebay.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runEbaySearch(cmd.Context(), cfg.Ebay, ebaySearchFromFlags(op, args), cmd.OutOrStdout())
		},
	}
}

var ebayFindCmd = ebaySearchCommand(
	"find <keywords...>",
	"Search active listings (findItemsByKeywords).",
	ebay.FindItemsByKeywords,
)

var ebayCompletedCmd = ebaySearchCommand(
	"completed <keywords...>",
	"Search ended listings (findCompletedItems).",
	ebay.FindCompletedItems,
)

var ebayURLCmd = &cobra.Command{
	Use:   "url <keywords...>",
	Short: "Print the request url a completed search would use, with the app id redacted.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		opts := ebaySearchFromFlags(ebay.FindCompletedItems, args)
		return runEbayURL(cfg.Ebay, opts.Request, cmd.OutOrStdout())
	},
}

type ebaySearchOptions struct {
	Request      ebay.SearchRequest
	MinRelevance float64
	Exclude      []string
	// < 0 prints the listing table
	Item    int
	Path    string
	Format  string
	RawOut  string
	DumpDir string
	DB      string
}

func (c EbayConfig) applyDefaults(req ebay.SearchRequest) ebay.SearchRequest {
	if req.GlobalID == "" {
		req.GlobalID = c.GlobalID
	}
	if req.ServiceVersion == "" {
		req.ServiceVersion = c.ServiceVersion
	}
	return req
}

func runEbayURL(cfg EbayConfig, req ebay.SearchRequest, w io.Writer) error {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ebay.DefaultBaseURL
	}
	appID := cfg.AppID
	if appID == "" {
		// the printed url is redacted either way
		appID = "REDACTED"
	}
	u, err := ebay.BuildURL(baseURL, appID, cfg.applyDefaults(req))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, restyutil.RedactURL(u.String()))
	return err
}

func runEbaySearch(ctx context.Context, cfg EbayConfig, opts ebaySearchOptions, w io.Writer) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}
	dump, err := newDumpOutput(opts.DumpDir)
	if err != nil {
		return err
	}
	client, err := ebay.NewClient(ebay.ClientOptions{
		BaseURL:           cfg.BaseURL,
		AppID:             cfg.AppID,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Dump:              dump,
	})
	if err != nil {
		return err
	}

	req := cfg.applyDefaults(opts.Request)
	res, err := client.Search(ctx, req)
	if err != nil {
		return err
	}
	slog.Info("ebay search", "operation", res.Operation, "url", res.URL, "items", len(res.Items()), "total", res.TotalEntries())

	err = writeRawBody(opts.RawOut, res.Raw)
	if err != nil {
		return err
	}

	listings, err := res.Listings()
	if err != nil {
		slog.Warn("some items could not be summarized", "err", err)
	}
	title := func(l ebay.Listing) string { return l.Title }
	scored := relevance.Filter(listings, title, req.Keywords, opts.MinRelevance)
	scored = relevance.Exclude(scored, title, opts.Exclude)
	if opts.MinRelevance > 0 || len(opts.Exclude) > 0 {
		slog.Info("filtered listings", "min_relevance", opts.MinRelevance, "exclude", opts.Exclude, "kept", len(scored), "of", len(listings))
	}

	if opts.DB != "" {
		err = recordListings(ctx, opts.DB, snapshot.Fetch{
			Operation: string(res.Operation),
			Query:     req.Keywords,
			URL:       res.URL,
			FetchedAt: time.Now(),
			Raw:       res.Raw,
		}, scored)
		if err != nil {
			return err
		}
	}

	if opts.Path != "" {
		value, err := res.Lookup(jsonpath.Parse(opts.Path)...)
		if err != nil {
			return err
		}
		return writeValue(w, value)
	}
	if opts.Item >= 0 {
		return writeEbayItem(w, res, opts.Item, opts.Format)
	}
	return writeListings(w, res, scored, opts.Format)
}

func recordListings(ctx context.Context, dsn string, fetch snapshot.Fetch, scored []relevance.Scored[ebay.Listing]) error {
	store, err := snapshot.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.RecordListings(ctx, fetch, scored)
	if err != nil {
		return fmt.Errorf("record listings: %w", err)
	}
	slog.Info("recorded fetch", "id", id, "listings", len(scored))
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

type scoredListing struct {
	ebay.Listing
	Relevance float64
}

func writeListings(w io.Writer, res *ebay.SearchResult, scored []relevance.Scored[ebay.Listing], format string) error {
	if format == formatJSON {
		listings := make([]scoredListing, len(scored))
		for i, s := range scored {
			listings[i] = scoredListing{Listing: s.Item, Relevance: s.Score}
		}
		return writeJSON(w, struct {
			Operation    ebay.Operation
			URL          string
			TotalEntries int
			Listings     []scoredListing
		}{
			Operation:    res.Operation,
			URL:          res.URL,
			TotalEntries: res.TotalEntries(),
			Listings:     listings,
		})
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Item ID", "Title", "Price", "Shipping", "Ends", "Relevance"})
	for _, s := range scored {
		l := s.Item
		t.AppendRow(table.Row{
			l.Position,
			l.ItemID,
			truncate(l.Title, 60),
			l.CurrentPrice.String(),
			l.ShippingCost.String(),
			formatTime(l.EndTime),
			fmt.Sprintf("%.2f", s.Score),
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d shown of %d total entries", len(scored), res.TotalEntries())})
	t.Render()
	return nil
}

func writeEbayItem(w io.Writer, res *ebay.SearchResult, index int, format string) error {
	item, err := res.Item(index)
	if err != nil {
		return err
	}
	listing, err := ebay.Summarize(item)
	if err != nil {
		return err
	}
	listing.Position = index
	if format == formatJSON {
		return writeJSON(w, listing)
	}

	// the untouched service timestamp, absent for some listings
	rawEnd, err := item.EndTime()
	if err != nil {
		rawEnd = ""
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"#", listing.Position},
		{"Item ID", listing.ItemID},
		{"Title", listing.Title},
		{"Global ID", listing.GlobalID},
		{"Location", listing.Location},
		{"Country", listing.Country},
		{"Category", listing.CategoryName},
		{"Condition", listing.Condition},
		{"Listing Type", listing.ListingType},
		{"Selling State", listing.SellingState},
		{"Start Time", formatTime(listing.StartTime)},
		{"End Time", rawEnd},
		{"Current Price", listing.CurrentPrice.String()},
		{"Shipping Cost", listing.ShippingCost.String()},
		{"Ships To", strings.Join(listing.ShipToLocations, ", ")},
		{"URL", listing.URL},
	})
	t.Render()
	return nil
}
