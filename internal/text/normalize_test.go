package text

import (
	"strings"
	"testing"
	"unicode"
)

func TestClean(t *testing.T) {
	str := "  hello\tworld \n"
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain", "good app", "good app"},
		{"collapse and trim", "  very \t\t slow\n\napp  ", "very slow app"},
		{"only whitespace", " \t\n ", ""},
		{"empty", "", ""},
		{"nil", nil, ""},
		{"nil string pointer", (*string)(nil), ""},
		{"string pointer", &str, "hello world"},
		{"number", 42, ""},
		{"float", 3.14, ""},
		{"unicode spaces", "bad\u00a0\u2003service", "bad service"},
		{"decomposed accent", "cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Fatalf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := map[string]int{
		"":                    0,
		"ok":                  1,
		"app keeps crashing":  3,
		"it's fine, I guess.": 4,
	}
	for in, want := range tests {
		if got := WordCount(in); got != want {
			t.Errorf("WordCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func FuzzNormalize(f *testing.F) {
	for _, seed := range []string{"", " ", "a  b", "\tx\n\ny\r\n", "U\u0308nico\u0308de  text", " lead"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		got := Normalize(in)
		if got != strings.TrimSpace(got) {
			t.Fatalf("leading/trailing whitespace in %q", got)
		}
		prevSpace := false
		for _, r := range got {
			isSpace := unicode.IsSpace(r)
			if isSpace && prevSpace {
				t.Fatalf("whitespace run in %q", got)
			}
			prevSpace = isSpace
		}
		if again := Normalize(got); again != got {
			t.Fatalf("not idempotent: %q -> %q", got, again)
		}
	})
}
