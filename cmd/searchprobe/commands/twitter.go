package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"searchprobe/lib/jsonpath"
	"searchprobe/lib/snapshot"
	"searchprobe/lib/twitter"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	twitterCount           int
	twitterLang            string
	twitterResultType      string
	twitterExcludeRetweets bool
	twitterExtended        bool
	twitterPost            int
)

func init() {
	flags := twitterSearchCmd.Flags()
	flags.IntVar(&twitterCount, "count", twitter.DefaultCount, "Posts per page (1-100).")
	flags.StringVar(&twitterLang, "lang", twitter.DefaultLang, "Restrict posts to this ISO 639-1 language.")
	flags.StringVar(&twitterResultType, "result-type", string(twitter.ResultMixed), "One of: mixed, recent, popular.")
	flags.BoolVar(&twitterExcludeRetweets, "exclude-retweets", false, "Append -filter:retweets to the query.")
	flags.BoolVar(&twitterExtended, "extended", false, "Request untruncated post text.")
	flags.IntVar(&twitterPost, "post", -1, "Print only the post at this index.")

	twitterCmd.AddCommand(twitterSearchCmd)
	rootCmd.AddCommand(twitterCmd)
}

var twitterCmd = &cobra.Command{
	Use:   "twitter",
	Short: "Search posts through the Twitter v1.1 standard search.",
}

var twitterSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run a single page search/tweets.json query.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return runTwitterSearch(cmd.Context(), cfg.Twitter, twitterSearchOptions{
			Request: twitter.SearchRequest{
				Query:           strings.Join(args, " "),
				Count:           twitterCount,
				Lang:            twitterLang,
				ResultType:      twitter.ResultType(twitterResultType),
				ExcludeRetweets: twitterExcludeRetweets,
				Extended:        twitterExtended,
			},
			Post:    twitterPost,
			Path:    pathExpr,
			Format:  outputFormat,
			RawOut:  rawOut,
			DumpDir: dumpDir,
			DB:      dbPath,
		}, cmd.OutOrStdout())
	},
}

type twitterSearchOptions struct {
	Request twitter.SearchRequest
	// < 0 prints the post table
	Post    int
	Path    string
	Format  string
	RawOut  string
	DumpDir string
	DB      string
}

func runTwitterSearch(ctx context.Context, cfg TwitterConfig, opts twitterSearchOptions, w io.Writer) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}
	dump, err := newDumpOutput(opts.DumpDir)
	if err != nil {
		return err
	}
	client, err := twitter.NewClient(ctx, twitter.ClientOptions{
		Credentials: twitter.Credentials{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			AccessToken:    cfg.AccessToken,
			AccessSecret:   cfg.AccessSecret,
		},
		BaseURL:           cfg.BaseURL,
		TokenURL:          cfg.TokenURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Dump:              dump,
	})
	if err != nil {
		return err
	}

	res, err := client.Search(ctx, opts.Request)
	if err != nil {
		return err
	}
	slog.Info("twitter search", "query", res.Query, "posts", len(res.Posts()))

	err = writeRawBody(opts.RawOut, res.Raw)
	if err != nil {
		return err
	}

	if opts.DB != "" {
		err = recordPosts(ctx, opts.DB, snapshot.Fetch{
			Operation: "search",
			Query:     res.Query,
			URL:       res.URL,
			FetchedAt: time.Now(),
			Raw:       res.Raw,
		}, res.Posts())
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
	if opts.Post >= 0 {
		post, err := res.Post(opts.Post)
		if err != nil {
			return err
		}
		if opts.Format == formatJSON {
			return writeJSON(w, post)
		}
		writePosts(w, []twitter.Post{post}, opts.Post)
		return nil
	}
	if opts.Format == formatJSON {
		return writeJSON(w, res.Response)
	}
	writePosts(w, res.Posts(), 0)
	return nil
}

func recordPosts(ctx context.Context, dsn string, fetch snapshot.Fetch, posts []twitter.Post) error {
	store, err := snapshot.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.RecordPosts(ctx, fetch, posts)
	if err != nil {
		return fmt.Errorf("record posts: %w", err)
	}
	slog.Info("recorded fetch", "id", id, "posts", len(posts))
	return nil
}

func writePosts(w io.Writer, posts []twitter.Post, offset int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Author", "Created", "RT", "Fav", "Text"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, WidthMax: 80},
	})
	for i, p := range posts {
		created := p.CreatedAt
		if parsed, err := p.CreatedTime(); err == nil {
			created = formatTime(parsed)
		}
		author := "@" + p.User.ScreenName
		if p.IsRetweet() {
			author += " (rt)"
		}
		t.AppendRow(table.Row{
			offset + i,
			author,
			created,
			p.RetweetCount,
			p.FavoriteCount,
			p.Body(),
		})
	}
	t.Render()
}
