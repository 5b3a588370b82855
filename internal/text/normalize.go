// Package text holds the review text normalizer shared by the cleaning stage.
package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize collapses every run of whitespace into a single space and trims
// both ends. Text is put in NFC form first so visually identical reviews
// compare equal downstream.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Clean normalizes an arbitrary value. Anything that is not a string (or a
// non-nil *string) yields the empty string.
func Clean(v any) string {
	switch t := v.(type) {
	case string:
		return Normalize(t)
	case *string:
		if t == nil {
			return ""
		}
		return Normalize(*t)
	}
	return ""
}

// WordCount is the number of whitespace-delimited tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
