// Package relevance scores how closely a listing title matches the
// keywords it was searched with.
package relevance

import (
	"searchprobe/lib/textutil"

	"github.com/antzucaro/matchr"
)

// Score averages, over every keyword token, the best Jaro-Winkler
// similarity against any title token. The result is in [0, 1] and is 1
// when there are no keywords.
func Score(keywords, title string) float64 {
	keywordTokens := textutil.Tokens(keywords)
	if len(keywordTokens) == 0 {
		return 1
	}
	titleTokens := textutil.Tokens(title)
	if len(titleTokens) == 0 {
		return 0
	}

	var total float64
	for _, keyword := range keywordTokens {
		var best float64
		for _, token := range titleTokens {
			if keyword == token {
				best = 1
				break
			}
			similarity := matchr.JaroWinkler(keyword, token, false)
			if similarity > best {
				best = similarity
			}
		}
		total += best
	}
	return total / float64(len(keywordTokens))
}

type Scored[T any] struct {
	Item  T
	Score float64
}

// Filter keeps the items whose title scores at least min, preserving
// order. A min <= 0 keeps everything.
func Filter[T any](items []T, title func(T) string, keywords string, min float64) []Scored[T] {
	result := make([]Scored[T], 0, len(items))
	for _, item := range items {
		score := Score(keywords, title(item))
		if min > 0 && score < min {
			continue
		}
		result = append(result, Scored[T]{Item: item, Score: score})
	}
	return result
}

// Exclude drops the items whose title contains any of the terms after
// normalization.
func Exclude[T any](items []Scored[T], title func(T) string, terms []string) []Scored[T] {
	if len(terms) == 0 {
		return items
	}
	result := make([]Scored[T], 0, len(items))
	for _, item := range items {
		if textutil.ContainsAny(title(item.Item), terms) {
			continue
		}
		result = append(result, item)
	}
	return result
}
