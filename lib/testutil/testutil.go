package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// ReadFixture reads a file relative to the calling package's testdata
// directory.
func ReadFixture(t testing.TB, name string) []byte {
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return contents
}

// OpenDB opens a fresh in-memory sqlite database with schema applied and
// closes it when the test finishes.
func OpenDB(t testing.TB, schema string) *sql.DB {
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every pooled connection would otherwise get its own empty database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() {
		database.Close()
	})

	_, err = database.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		t.Fatal(err)
	}
	if schema != "" {
		_, err = database.Exec(schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	return database
}
