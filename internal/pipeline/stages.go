package pipeline

import (
	"context"
	"io"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/dataset"
	"bank_reviews/internal/domain"
	"bank_reviews/internal/report"
)

func (p *Pipeline) runPreprocess(_ context.Context) error {
	path, err := dataset.LatestRaw(p.cfg.Paths.RawDir, p.cfg.Paths.RawPattern)
	if err != nil {
		return err
	}
	raw, err := dataset.LoadRaw(path)
	if err != nil {
		return err
	}
	p.log.Info().Str("file", path).Int("rows", len(raw)).Msg("loaded raw reviews")

	cleaned, st := p.cleaner.Clean(raw)
	observability.CountRecords(StagePreprocess, "in", st.Input)
	observability.CountRecords(StagePreprocess, "duplicate", st.Duplicates)
	observability.CountRecords(StagePreprocess, "bad_date", st.BadDate)
	observability.CountRecords(StagePreprocess, "empty_text", st.EmptyText)
	observability.CountRecords(StagePreprocess, "out", st.Output)

	if err := dataset.SaveCleaned(p.cfg.Paths.CleanedFile, cleaned); err != nil {
		return err
	}
	p.log.Info().Str("file", p.cfg.Paths.CleanedFile).Int("final_count", len(cleaned)).Msg("saved cleaned reviews")
	return nil
}

func (p *Pipeline) runSentiment(_ context.Context) error {
	cleaned, err := dataset.LoadCleaned(p.cfg.Paths.CleanedFile)
	if err != nil {
		return err
	}
	scored := p.Score(cleaned)
	observability.CountRecords(StageSentiment, "out", len(scored))
	if err := dataset.SaveScored(p.cfg.Paths.ResultsFile, scored); err != nil {
		return err
	}
	p.log.Info().Str("file", p.cfg.Paths.ResultsFile).Int("rows", len(scored)).Msg("saved sentiment results")
	return nil
}

func (p *Pipeline) runThemes(_ context.Context) error {
	df, err := p.results()
	if err != nil {
		return err
	}
	ts, err := report.Themes(df, p.deps.Extractor, report.Policy{
		Keywords:   p.cfg.Themes.Keywords,
		Themes:     p.cfg.Themes.Themes,
		PainPoints: p.cfg.Themes.PainPoints,
	})
	if err != nil {
		return err
	}
	return p.writeReport("themes_summary.txt", func(w io.Writer) error { return report.WriteThemes(w, ts) })
}

func (p *Pipeline) runUpload(ctx context.Context) error {
	if p.deps.OpenStore == nil {
		p.log.Warn().Msg("no database configured; skipping upload")
		return nil
	}
	scored, err := dataset.LoadScored(p.cfg.Paths.ResultsFile)
	if err != nil {
		return err
	}
	store, err := p.deps.OpenStore(ctx)
	if err != nil {
		return err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	n, err := store.SaveReviews(ctx, scored)
	if err != nil {
		return err
	}
	observability.CountRecords(StageUpload, "saved", n)
	p.log.Info().Int("rows", n).Msg("uploaded reviews")

	if p.deps.Invalidate != nil {
		p.deps.Invalidate(ctx, bankNames(scored))
	}
	return nil
}

func (p *Pipeline) runInsights(_ context.Context) error {
	df, err := p.results()
	if err != nil {
		return err
	}
	ins := report.Insights(df)
	return p.writeReport("insights_summary.txt", func(w io.Writer) error { return report.WriteInsights(w, ins) })
}

func (p *Pipeline) runDashboard(_ context.Context) error {
	df, err := p.results()
	if err != nil {
		return err
	}
	// series behind the rating, trend and word cloud charts
	trend, err := report.SentimentTrend(df)
	if err != nil {
		return err
	}
	if err := p.writeReport(filepath.Join("dashboard", "rating_distribution.csv"), func(w io.Writer) error {
		return report.WriteFrame(w, report.RatingDistribution(df))
	}); err != nil {
		return err
	}
	if err := p.writeReport(filepath.Join("dashboard", "sentiment_trend.csv"), func(w io.Writer) error {
		return report.WriteFrame(w, trend)
	}); err != nil {
		return err
	}
	words, err := report.WordFrequencies(df, p.deps.Extractor, p.cfg.Themes.WordCloud)
	if err != nil {
		return err
	}
	return p.writeReport(filepath.Join("dashboard", "word_frequencies.csv"), func(w io.Writer) error {
		return report.WriteFrame(w, words)
	})
}

func bankNames(rs []domain.ScoredReview) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rs {
		if !seen[r.BankName] {
			seen[r.BankName] = true
			out = append(out, r.BankName)
		}
	}
	return out
}

func (p *Pipeline) results() (dataframe.DataFrame, error) {
	return dataset.LoadFrame(p.cfg.Paths.ResultsFile, report.Required...)
}

func (p *Pipeline) writeReport(name string, write func(io.Writer) error) error {
	path := filepath.Join(p.cfg.Paths.ReportsDir, name)
	if err := dataset.WriteFile(path, write); err != nil {
		return err
	}
	p.log.Info().Str("file", path).Msg("report written")
	return nil
}
