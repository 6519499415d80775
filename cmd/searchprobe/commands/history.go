package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"searchprobe/lib/jsonpath"
	"searchprobe/lib/snapshot"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historySource    string
	historyLimit     int
	historyOlderThan time.Duration
)

var errNoDatabase = errors.New("--db is required to read recorded fetches")

func init() {
	historyListCmd.Flags().StringVar(&historySource, "source", "", "Only list fetches from this source, ebay or twitter.")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "The maximum amount of fetches to list, 0 lists all.")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Delete fetches recorded longer ago than this.")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Read fetches recorded with --db.",
}

func withStore(ctx context.Context, fn func(store *snapshot.Store) error) error {
	if dbPath == "" {
		return errNoDatabase
	}
	store, err := snapshot.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

var historyListCmd = &cobra.Command{
	Use:   "list [--source ebay|twitter] [--limit n]",
	Short: "List recorded fetches, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *snapshot.Store) error {
			return runHistoryList(cmd.Context(), store, historySource, historyLimit, outputFormat, cmd.OutOrStdout())
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <fetch id>",
	Short: "Print the listings or posts of a recorded fetch.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid fetch id %q: %w", args[0], err)
		}
		return withStore(cmd.Context(), func(store *snapshot.Store) error {
			return runHistoryShow(cmd.Context(), store, id, pathExpr, outputFormat, cmd.OutOrStdout())
		})
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune [--older-than duration]",
	Short: "Delete old fetches together with their listings and posts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *snapshot.Store) error {
			deleted, err := store.Prune(cmd.Context(), time.Now().Add(-historyOlderThan))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d fetches\n", deleted)
			return err
		})
	},
}

func runHistoryList(ctx context.Context, store *snapshot.Store, source string, limit int, format string, w io.Writer) error {
	fetches, err := store.Fetches(ctx, source, limit)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(w, fetches)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Source", "Operation", "Query", "Fetched At"})
	for _, f := range fetches {
		t.AppendRow(table.Row{f.ID, f.Source, f.Operation, f.Query, formatTime(f.FetchedAt)})
	}
	t.Render()
	return nil
}

func runHistoryShow(ctx context.Context, store *snapshot.Store, id int64, path, format string, w io.Writer) error {
	fetch, err := store.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if path != "" {
		value, err := jsonpath.Lookup(fetch.Raw, jsonpath.Parse(path)...)
		if err != nil {
			return err
		}
		return writeValue(w, value)
	}

	switch fetch.Source {
	case snapshot.SourceEbay:
		records, err := store.ListingsFor(ctx, id)
		if err != nil {
			return err
		}
		if format == formatJSON {
			return writeJSON(w, records)
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"#", "Item ID", "Title", "Condition", "Price", "Ends", "Relevance"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.Position,
				r.Listing.ItemID,
				truncate(r.Listing.Title, 60),
				r.Listing.Condition,
				r.Listing.CurrentPrice.String(),
				formatTime(r.Listing.EndTime),
				fmt.Sprintf("%.2f", r.Relevance),
			})
		}
		t.Render()
	case snapshot.SourceTwitter:
		records, err := store.PostsFor(ctx, id)
		if err != nil {
			return err
		}
		if format == formatJSON {
			return writeJSON(w, records)
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"#", "Author", "Created", "Text"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, WidthMax: 80},
		})
		for _, r := range records {
			t.AppendRow(table.Row{r.Position, "@" + r.ScreenName, formatTime(r.CreatedAt), r.Body})
		}
		t.Render()
	default:
		return fmt.Errorf("fetch %d has unknown source %q", id, fetch.Source)
	}
	return nil
}
