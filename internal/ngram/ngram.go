// Package ngram counts corpus-wide n-gram frequencies for keyword (n=1)
// and theme (n=2) reports.
package ngram

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"bank_reviews/internal/keywords"
)

// Frequency is one n-gram and its total occurrence count across a corpus.
type Frequency struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Tokens are runs of two or more letters, digits or underscores; single
// characters never enter the vocabulary.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

type Extractor struct {
	stop keywords.StopSet
}

// New returns an Extractor. Tokens in stop are removed before n-grams are
// formed; pass nil when the corpus has already been stopword-filtered.
func New(stop keywords.StopSet) *Extractor {
	return &Extractor{stop: stop}
}

// Top returns the topK most frequent n-grams of order n across corpus,
// highest count first. Equal counts keep first-seen order.
func (e *Extractor) Top(corpus []string, n, topK int) ([]Frequency, error) {
	if n < 1 {
		return nil, fmt.Errorf("ngram: order must be >= 1, got %d", n)
	}
	if len(corpus) == 0 || topK <= 0 {
		return []Frequency{}, nil
	}

	index := map[string]int{}
	var freqs []Frequency
	for _, doc := range corpus {
		toks := e.tokens(doc)
		for i := 0; i+n <= len(toks); i++ {
			gram := strings.Join(toks[i:i+n], " ")
			if at, ok := index[gram]; ok {
				freqs[at].Count++
				continue
			}
			index[gram] = len(freqs)
			freqs = append(freqs, Frequency{Phrase: gram, Count: 1})
		}
	}

	sort.SliceStable(freqs, func(i, j int) bool { return freqs[i].Count > freqs[j].Count })
	if len(freqs) > topK {
		freqs = freqs[:topK]
	}
	if freqs == nil {
		freqs = []Frequency{}
	}
	return freqs, nil
}

func (e *Extractor) tokens(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	if e.stop == nil {
		return raw
	}
	out := raw[:0]
	for _, t := range raw {
		if !e.stop.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
