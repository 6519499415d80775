package commands

import (
	"fmt"
	"io"
	"os"
	"searchprobe/lib/jsonpath"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file> <path>",
	Short: "Print the value at a dot separated path of a saved response body, ex. findCompletedItemsResponse.0.searchResult.0.item.3.listingInfo.0.endTime",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0], args[1], cmd.OutOrStdout())
	},
}

func runInspect(file, expr string, w io.Writer) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	value, err := jsonpath.Lookup(raw, jsonpath.Parse(expr)...)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return writeValue(w, value)
}
