// Package preprocess turns a raw review batch into cleaned records:
// duplicates removed, dates parsed, text normalized, unusable rows dropped.
package preprocess

import (
	"time"

	"github.com/rs/zerolog"

	"bank_reviews/internal/domain"
	"bank_reviews/internal/text"
)

// Stats reports what the cleaning pass removed.
type Stats struct {
	Input      int
	Duplicates int
	BadDate    int
	EmptyText  int
	Output     int
}

type Cleaner struct {
	log       zerolog.Logger
	parseDate func(string) (time.Time, bool)
}

func NewCleaner(l zerolog.Logger) *Cleaner {
	return &Cleaner{log: l, parseDate: ParseDate}
}

// Clean keeps the first record of every identity key, parses dates,
// normalizes text and drops records with empty text or no usable date.
// Surviving records keep their input order.
func (c *Cleaner) Clean(raw []domain.RawReview) ([]domain.CleanedReview, Stats) {
	st := Stats{Input: len(raw)}

	unique := Deduplicate(raw)
	st.Duplicates = len(raw) - len(unique)
	if st.Duplicates > 0 {
		c.log.Info().Int("duplicates_removed", st.Duplicates).Msg("removed duplicate records")
	}

	out := make([]domain.CleanedReview, 0, len(unique))
	for _, r := range unique {
		date, ok := c.parseDate(r.ReviewDate)
		cleaned := text.Clean(r.ReviewText)

		switch {
		case cleaned == "":
			st.EmptyText++
			continue
		case !ok:
			st.BadDate++
			c.log.Debug().Str("review_date", r.ReviewDate).Str("bank", r.BankName).Msg("unparseable date")
			continue
		}

		out = append(out, domain.CleanedReview{
			Source:        r.Source,
			BankName:      r.BankName,
			AppID:         r.AppID,
			ReviewDate:    date,
			UserName:      r.UserName,
			Rating:        r.Rating,
			ThumbsUpCount: r.ThumbsUpCount,
			AppVersion:    r.AppVersion,
			CleanedText:   cleaned,
			WordCount:     text.WordCount(cleaned),
		})
	}
	st.Output = len(out)

	c.log.Info().
		Int("input", st.Input).
		Int("duplicates_removed", st.Duplicates).
		Int("dropped_bad_date", st.BadDate).
		Int("dropped_empty_text", st.EmptyText).
		Int("final_count", st.Output).
		Msg("preprocessing complete")
	return out, st
}

// Deduplicate returns the first occurrence of each identity key, in order.
func Deduplicate(raw []domain.RawReview) []domain.RawReview {
	seen := make(map[domain.IdentityKey]struct{}, len(raw))
	out := make([]domain.RawReview, 0, len(raw))
	for _, r := range raw {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
