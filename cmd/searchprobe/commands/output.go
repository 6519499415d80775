package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"searchprobe/lib/restyutil"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tidwall/gjson"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q, expected %s or %s", format, formatTable, formatJSON)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeValue prints a looked up value, strings unquoted and everything
// else as its raw JSON.
func writeValue(w io.Writer, value gjson.Result) error {
	text := value.Raw
	if value.Type == gjson.String {
		text = value.String()
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func writeRawBody(path string, body []byte) error {
	if path == "" {
		return nil
	}
	err := os.WriteFile(path, body, 0644)
	if err != nil {
		return fmt.Errorf("write raw body: %w", err)
	}
	slog.Info("wrote raw response body", "path", path, "bytes", len(body))
	return nil
}

func newDumpOutput(dir string) (restyutil.InstrumentOutput, error) {
	if dir == "" {
		return nil, nil
	}
	out, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		return nil, fmt.Errorf("create dump dir: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
