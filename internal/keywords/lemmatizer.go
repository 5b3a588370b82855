package keywords

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball/english"
)

// Lemmatizer reduces a lowercase word to its base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// GolemLemmatizer looks words up in an English inflection dictionary.
// Unknown words are returned unchanged.
type GolemLemmatizer struct {
	l *golem.Lemmatizer
}

func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &GolemLemmatizer{l: l}, nil
}

func (g *GolemLemmatizer) Lemma(word string) string {
	return g.l.Lemma(word)
}

// SnowballLemmatizer approximates lemmas with the Snowball English stemmer.
// Output is a stem ("battery" -> "batteri"), which is fine for counting but
// less readable in reports.
type SnowballLemmatizer struct{}

func (SnowballLemmatizer) Lemma(word string) string {
	return english.Stem(word, true)
}

// NewLemmatizer builds the lemmatizer named in configuration.
func NewLemmatizer(kind string) (Lemmatizer, error) {
	switch strings.ToLower(kind) {
	case "", "golem":
		return NewGolemLemmatizer()
	case "snowball":
		return SnowballLemmatizer{}, nil
	}
	return nil, fmt.Errorf("unknown lemmatizer %q", kind)
}
