package report

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"

	"bank_reviews/internal/domain"
	"bank_reviews/internal/ngram"
)

// Policy sets how many entries each theme list keeps.
type Policy struct {
	Keywords   int
	Themes     int
	PainPoints int
}

type BankThemes struct {
	Bank       string
	Keywords   []ngram.Frequency
	Themes     []ngram.Frequency
	PainPoints []ngram.Frequency
}

// Themes extracts unigram keywords and bigram themes per bank, and bigram
// pain points from that bank's negative reviews only.
func Themes(df dataframe.DataFrame, ex *ngram.Extractor, p Policy) ([]BankThemes, error) {
	var out []BankThemes
	for _, b := range banks(df) {
		sub := where(df, colBank, b)
		corpus := texts(sub, colProcessed)
		if len(corpus) == 0 {
			continue
		}
		bt := BankThemes{Bank: b}
		var err error
		if bt.Keywords, err = ex.Top(corpus, 1, p.Keywords); err != nil {
			return nil, fmt.Errorf("keywords for %s: %w", b, err)
		}
		if bt.Themes, err = ex.Top(corpus, 2, p.Themes); err != nil {
			return nil, fmt.Errorf("themes for %s: %w", b, err)
		}
		neg := texts(where(sub, colLabel, string(domain.Negative)), colProcessed)
		if bt.PainPoints, err = ex.Top(neg, 2, p.PainPoints); err != nil {
			return nil, fmt.Errorf("pain points for %s: %w", b, err)
		}
		out = append(out, bt)
	}
	return out, nil
}

func WriteThemes(w io.Writer, ts []BankThemes) error {
	for _, t := range ts {
		if _, err := fmt.Fprintf(w, "=== Analysis for %s ===\n", t.Bank); err != nil {
			return err
		}
		sections := []struct {
			title string
			items []ngram.Frequency
		}{
			{fmt.Sprintf("Top %d Keywords:", len(t.Keywords)), t.Keywords},
			{fmt.Sprintf("Top %d Themes (Bigrams):", len(t.Themes)), t.Themes},
			{fmt.Sprintf("Top %d Pain Points (Negative Bigrams):", len(t.PainPoints)), t.PainPoints},
		}
		for _, s := range sections {
			if len(s.items) == 0 {
				continue
			}
			if _, err := fmt.Fprintln(w, s.title); err != nil {
				return err
			}
			for _, f := range s.items {
				if _, err := fmt.Fprintf(w, "  - %s: %d\n", f.Phrase, f.Count); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
