// Package sentiment scores review text with a lexicon/rule based polarity
// model (VADER) and maps the compound score onto a three-way label.
package sentiment

import (
	"fmt"

	"github.com/jonreiter/govader"

	"bank_reviews/internal/domain"
)

// Model produces a compound polarity score in [-1, 1] for a piece of text.
type Model interface {
	Compound(text string) float64
}

type vader struct {
	a *govader.SentimentIntensityAnalyzer
}

// NewVaderModel loads the VADER lexicon. It should be built once per run
// and shared.
func NewVaderModel() Model {
	return vader{a: govader.NewSentimentIntensityAnalyzer()}
}

func (v vader) Compound(text string) float64 {
	return v.a.PolarityScores(text).Compound
}

// Thresholds split compound scores into labels: >= Positive is Positive,
// <= Negative is Negative, anything in between is Neutral.
type Thresholds struct {
	Positive float64
	Negative float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Positive: 0.05, Negative: -0.05}
}

func (t Thresholds) Label(score float64) domain.Label {
	switch {
	case score >= t.Positive:
		return domain.Positive
	case score <= t.Negative:
		return domain.Negative
	default:
		return domain.Neutral
	}
}

// Scorer is safe for concurrent use as long as the Model is.
type Scorer struct {
	model Model
	th    Thresholds
}

// canaries must score with the expected sign on any usable lexicon.
var canaries = []struct {
	text string
	sign float64
}{
	{"good", 1},
	{"terrible", -1},
}

// New checks the model against a few known words before returning a Scorer.
// A missing or broken lexicon yields domain.ErrLexiconUnavailable.
func New(m Model, th Thresholds) (*Scorer, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no model", domain.ErrLexiconUnavailable)
	}
	if th.Positive <= th.Negative {
		return nil, fmt.Errorf("sentiment: positive threshold %.3f must exceed negative threshold %.3f", th.Positive, th.Negative)
	}
	for _, c := range canaries {
		if got := m.Compound(c.text); got*c.sign <= 0 {
			return nil, fmt.Errorf("%w: %q scored %.4f", domain.ErrLexiconUnavailable, c.text, got)
		}
	}
	return &Scorer{model: m, th: th}, nil
}

// Score returns the compound score and its label. Empty text is Neutral
// with a score of exactly 0.
func (s *Scorer) Score(text string) (float64, domain.Label) {
	if text == "" {
		return 0, domain.Neutral
	}
	score := s.model.Compound(text)
	return score, s.th.Label(score)
}

func (s *Scorer) Thresholds() Thresholds { return s.th }
