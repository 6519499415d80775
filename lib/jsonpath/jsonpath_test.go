package jsonpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const document = `{
  "searchResult": [{
    "@count": "2",
    "item": [
      {"title": ["first"], "listingInfo": [{"endTime": ["2017-01-01T00:00:00.000Z"]}]},
      {"title": ["second"], "listingInfo": [{"endTime": ["2017-02-01T00:00:00.000Z"]}]}
    ]
  }],
  "currentPrice": [{"@currencyId": "AUD", "__value__": "12.5"}]
}`

func TestParse(t *testing.T) {
	testCases := []struct {
		expr     string
		expected Path
	}{
		{expr: "", expected: nil},
		{expr: "searchResult", expected: Path{"searchResult"}},
		{expr: "searchResult.0.item.63.listingInfo.0.endTime", expected: Path{"searchResult", 0, "item", 63, "listingInfo", 0, "endTime"}},
		{expr: ".title.", expected: Path{"title"}},
		{expr: "a.-1", expected: Path{"a", "-1"}},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, Parse(test.expr))
		if diff != "" {
			t.Fatal(test.expr, diff)
		}
	}
}

func TestLookup(t *testing.T) {
	raw := []byte(document)

	testCases := []struct {
		path     Path
		expected string
	}{
		{path: Path{"searchResult", 0, "item", 1, "listingInfo", 0, "endTime", 0}, expected: "2017-02-01T00:00:00.000Z"},
		{path: Path{"searchResult", 0, "item", 0, "title", 0}, expected: "first"},
		{path: Path{"searchResult", 0, "@count"}, expected: "2"},
		{path: Path{"currentPrice", 0, "__value__"}, expected: "12.5"},
	}

	for _, test := range testCases {
		value, err := String(raw, test.path...)
		require.NoError(t, err, test.path.String())
		require.Equal(t, test.expected, value)
	}
}

func TestLookupErrors(t *testing.T) {
	raw := []byte(document)

	testCases := []struct {
		path    Path
		err     error
		message string
	}{
		{path: Path{"searchResults"}, err: ErrMissingField, message: "missing field: searchResults"},
		{path: Path{"searchResult", 0, "item", 2}, err: ErrIndexOutOfRange, message: "index out of range: searchResult.0.item.2"},
		{path: Path{"searchResult", 0, "item", 0, "title", 0, "x"}, err: ErrNotContainer},
		{path: Path{"searchResult", 0, "item", 0, "seller"}, err: ErrMissingField},
	}

	for _, test := range testCases {
		_, err := Lookup(raw, test.path...)
		require.True(t, errors.Is(err, test.err), "%s: %v", test.path, err)
		if test.message != "" {
			require.Equal(t, test.message, err.Error())
		}
	}

	_, err := Lookup([]byte(`{"broken": `), "broken")
	require.ErrorIs(t, err, ErrInvalidJSON)
}

func TestStringContainer(t *testing.T) {
	value, err := String([]byte(`{"a": {"b": [1, 2]}}`), "a")
	require.NoError(t, err)
	require.Equal(t, `{"b": [1, 2]}`, value)
}
