package textproc

import (
	"regexp"
	"strings"
)

// Noise stripping keeps '+' and '#' so tokens like "c++" and "c#" survive
// normalization intact.
var (
	reNoise  = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the text, replaces non-semantic punctuation with
// spaces and collapses runs of whitespace. It is pure and stable: identical
// input always yields identical output, and empty input yields "".
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reNoise.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text into terms. Callers pass raw text; the
// function normalizes first so the term set is insensitive to case and
// punctuation noise.
func Tokenize(s string) []string {
	norm := Normalize(s)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}
