package commands

import (
	"context"
	"log/slog"
	"searchprobe/lib/configutil"
	"searchprobe/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	envFile      string
	verbose      bool
	dumpDir      string
	dbPath       string
	rawOut       string
	pathExpr     string
	outputFormat string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "searchprobe.json5", "The config file holding API credentials, a searchprobe.local.json5 next to it overrides it.")
	flags.StringVar(&envFile, "env-file", ".env", "A dotenv file loaded before the config is read.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level, including every HTTP request.")
	flags.StringVar(&dumpDir, "dump-dir", "", "Write every HTTP request/response pair as a text file into this directory.")
	flags.StringVar(&dbPath, "db", "", "Record the fetch into this sqlite file or libsql url.")
	flags.StringVar(&rawOut, "raw-out", "", "Write the raw response body to this file.")
	flags.StringVar(&pathExpr, "path", "", "Print only the value at this dot separated path, ex. statuses.11.text")
	flags.StringVar(&outputFormat, "format", formatTable, "Output format, one of: table, json.")
}

var rootCmd = &cobra.Command{
	Use:   "searchprobe",
	Short: "searchprobe runs one-shot eBay and Twitter searches and prints what comes back.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		err := validateFormat(outputFormat)
		if err != nil {
			return err
		}
		if envFile != "" {
			err = configutil.LoadDotenv(envFile)
			if err != nil {
				return err
			}
		}
		slog.Debug("starting", "command", cmd.CommandPath())
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
