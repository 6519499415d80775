// Package jsonpath gives named, checked access into JSON documents whose
// shape is owned by a third party. Every step of a path either resolves or
// fails with an error naming the prefix that could not be resolved.
package jsonpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON     = errors.New("invalid json")
	ErrMissingField    = errors.New("missing field")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotContainer    = errors.New("value is not an object or array")
)

// Path is a sequence of object keys (string) and array indices (int).
type Path []any

// Parse splits a dotted expression like "searchResult.0.item.3.title" into
// a Path. Segments made only of digits become array indices.
func Parse(expr string) Path {
	expr = strings.Trim(expr, ". ")
	if expr == "" {
		return nil
	}
	parts := strings.Split(expr, ".")
	out := make(Path, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err == nil && n >= 0 {
			out[i] = n
			continue
		}
		out[i] = p
	}
	return out
}

func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprint(&sb, seg)
	}
	return sb.String()
}

func objectField(obj gjson.Result, key string) (gjson.Result, bool) {
	var found gjson.Result
	ok := false
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

func step(cur gjson.Result, seg any) (gjson.Result, error) {
	switch s := seg.(type) {
	case string:
		if !cur.IsObject() {
			return gjson.Result{}, ErrNotContainer
		}
		v, ok := objectField(cur, s)
		if !ok {
			return gjson.Result{}, ErrMissingField
		}
		return v, nil
	case int:
		if cur.IsObject() {
			// numeric keys are legal in objects
			v, ok := objectField(cur, strconv.Itoa(s))
			if !ok {
				return gjson.Result{}, ErrMissingField
			}
			return v, nil
		}
		if !cur.IsArray() {
			return gjson.Result{}, ErrNotContainer
		}
		arr := cur.Array()
		if s < 0 || s >= len(arr) {
			return gjson.Result{}, ErrIndexOutOfRange
		}
		return arr[s], nil
	default:
		return gjson.Result{}, fmt.Errorf("unsupported path segment type %T", seg)
	}
}

// Lookup walks path through raw and returns the value at its end.
func Lookup(raw []byte, path ...any) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, ErrInvalidJSON
	}
	cur := gjson.ParseBytes(raw)
	for i, seg := range path {
		next, err := step(cur, seg)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("%w: %s", err, Path(path[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// String is Lookup for values the caller expects to be scalars. Objects
// and arrays are returned as their raw JSON text.
func String(raw []byte, path ...any) (string, error) {
	res, err := Lookup(raw, path...)
	if err != nil {
		return "", err
	}
	if res.IsObject() || res.IsArray() {
		return res.Raw, nil
	}
	return res.String(), nil
}
