package textutil

import (
	"regexp"
	"strings"
)

var separatorRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Normalize lowercases s and collapses every run of non letter or digit
// characters into a single space.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = separatorRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// ContainsAny reports whether any of the matchers occurs in the normalized
// form of s.
func ContainsAny(s string, matchers []string) bool {
	s = Normalize(s)
	for _, m := range matchers {
		m = Normalize(m)
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
