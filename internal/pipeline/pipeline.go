// Package pipeline sequences the review stages: preprocess, sentiment and
// keywords, themes, upload, insights and dashboard.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/domain"
	"bank_reviews/internal/keywords"
	"bank_reviews/internal/ngram"
	"bank_reviews/internal/preprocess"
	"bank_reviews/internal/sentiment"
	"bank_reviews/internal/shared"
)

const (
	StagePreprocess = "preprocess"
	StageSentiment  = "sentiment"
	StageThemes     = "themes"
	StageUpload     = "upload"
	StageInsights   = "insights"
	StageDashboard  = "dashboard"
)

// Stages lists every stage in execution order.
var Stages = []string{StagePreprocess, StageSentiment, StageThemes, StageUpload, StageInsights, StageDashboard}

// ReviewStore is the part of the repository the upload stage writes to.
type ReviewStore interface {
	EnsureSchema(ctx context.Context) error
	SaveReviews(ctx context.Context, rs []domain.ScoredReview) (int, error)
}

// Deps are the models and collaborators loaded once per run.
type Deps struct {
	Scorer    *sentiment.Scorer
	Keywords  *keywords.Normalizer
	Extractor *ngram.Extractor
	// OpenStore is called by the upload stage only. Nil skips the upload.
	OpenStore func(ctx context.Context) (ReviewStore, error)
	// Invalidate, when set, runs after a successful upload with the banks
	// that received new reviews.
	Invalidate func(ctx context.Context, banks []string)
}

// StageError names the stage a run stopped at.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type Pipeline struct {
	cfg     shared.Config
	deps    Deps
	cleaner *preprocess.Cleaner
	log     zerolog.Logger
}

func New(cfg shared.Config, d Deps, l zerolog.Logger) (*Pipeline, error) {
	if d.Scorer == nil || d.Keywords == nil || d.Extractor == nil {
		return nil, errors.New("pipeline: scorer, keyword normalizer and extractor are required")
	}
	return &Pipeline{
		cfg:     cfg,
		deps:    d,
		cleaner: preprocess.NewCleaner(l.With().Str("component", "preprocess").Logger()),
		log:     l.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Process runs cleaning, scoring and keyword normalization over an
// in-memory batch.
func (p *Pipeline) Process(raw []domain.RawReview) ([]domain.ScoredReview, preprocess.Stats) {
	cleaned, st := p.cleaner.Clean(raw)
	return p.Score(cleaned), st
}

// Score attaches sentiment and processed text to cleaned records.
func (p *Pipeline) Score(cleaned []domain.CleanedReview) []domain.ScoredReview {
	out := make([]domain.ScoredReview, 0, len(cleaned))
	for _, c := range cleaned {
		score, label := p.deps.Scorer.Score(c.CleanedText)
		out = append(out, domain.ScoredReview{
			CleanedReview:  c,
			SentimentScore: score,
			SentimentLabel: label,
			ProcessedText:  p.deps.Keywords.Normalize(c.CleanedText),
		})
	}
	return out
}

// Run executes the named stages, or all of them, in canonical order and
// stops at the first failure. Later stages do not run.
func (p *Pipeline) Run(ctx context.Context, names ...string) error {
	selected, err := selectStages(names)
	if err != nil {
		return err
	}
	runners := map[string]func(context.Context) error{
		StagePreprocess: p.runPreprocess,
		StageSentiment:  p.runSentiment,
		StageThemes:     p.runThemes,
		StageUpload:     p.runUpload,
		StageInsights:   p.runInsights,
		StageDashboard:  p.runDashboard,
	}

	for _, name := range selected {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: name, Err: err}
		}
		p.log.Info().Str("stage", name).Msg("stage starting")
		start := time.Now()
		err := runners[name](ctx)
		observability.ObserveStage(name, err, time.Since(start))
		if err != nil {
			p.log.Error().Err(err).Str("stage", name).Msg("stage failed; aborting run")
			return &StageError{Stage: name, Err: err}
		}
		p.log.Info().Str("stage", name).Dur("took", time.Since(start)).Msg("stage completed")
	}
	return nil
}

func selectStages(names []string) ([]string, error) {
	if len(names) == 0 {
		return Stages, nil
	}
	want := map[string]bool{}
	for _, n := range names {
		known := false
		for _, s := range Stages {
			if s == n {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown stage %q", n)
		}
		want[n] = true
	}
	var out []string
	for _, s := range Stages {
		if want[s] {
			out = append(out, s)
		}
	}
	return out, nil
}
