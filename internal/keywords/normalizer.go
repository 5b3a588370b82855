// Package keywords prepares review text for keyword and theme counting:
// lowercase, tokenize, keep alphabetic non-stopword tokens, lemmatize.
package keywords

import (
	"strings"
	"unicode"
)

type Normalizer struct {
	tok  Tokenizer
	lem  Lemmatizer
	stop StopSet
}

// NewNormalizer wires the tokenizer, lemmatizer and stopword set. A nil
// stop set means EnglishStopwords.
func NewNormalizer(tok Tokenizer, lem Lemmatizer, stop StopSet) *Normalizer {
	if stop == nil {
		stop = EnglishStopwords
	}
	return &Normalizer{tok: tok, lem: lem, stop: stop}
}

// Normalize returns the space-joined lemmas of the content words of text,
// or "" when nothing survives.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	toks := n.tok.Tokenize(strings.ToLower(text))

	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if !isAlpha(t) || n.stop.Has(t) {
			continue
		}
		out = append(out, n.lem.Lemma(t))
	}
	return strings.Join(out, " ")
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
