package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"bank_reviews/internal/domain"
	"bank_reviews/internal/keywords"
	"bank_reviews/internal/ngram"
	"bank_reviews/internal/sentiment"
	"bank_reviews/internal/shared"
)

type fakeStore struct {
	schema bool
	saved  []domain.ScoredReview
	err    error
}

func (f *fakeStore) EnsureSchema(context.Context) error { f.schema = true; return nil }

func (f *fakeStore) SaveReviews(_ context.Context, rs []domain.ScoredReview) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, rs...)
	return len(rs), nil
}

func newPipeline(t *testing.T, cfg shared.Config, open func(context.Context) (ReviewStore, error)) *Pipeline {
	return newPipelineWith(t, cfg, open, nil)
}

func newPipelineWith(t *testing.T, cfg shared.Config, open func(context.Context) (ReviewStore, error), inv func(context.Context, []string)) *Pipeline {
	t.Helper()
	sc, err := sentiment.New(sentiment.NewVaderModel(), sentiment.DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(cfg, Deps{
		Scorer:     sc,
		Keywords:   keywords.NewNormalizer(keywords.NewProseTokenizer(), keywords.SnowballLemmatizer{}, nil),
		Extractor:  ngram.New(nil),
		OpenStore:  open,
		Invalidate: inv,
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func tempConfig(t *testing.T) shared.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := shared.Default()
	cfg.Paths.RawDir = filepath.Join(dir, "raw")
	cfg.Paths.CleanedFile = filepath.Join(dir, "processed", "reviews_cleaned.csv")
	cfg.Paths.ResultsFile = filepath.Join(dir, "processed", "sentiment_results.csv")
	cfg.Paths.ReportsDir = filepath.Join(dir, "reports")
	return cfg
}

func ptr(s string) *string { return &s }

// One duplicate, one unparseable date and one whitespace-only text among
// five rows leave two records.
func fiveRowBatch() []domain.RawReview {
	return []domain.RawReview{
		{BankName: "CBE", UserName: "abebe", ReviewDate: "2024-05-01 10:00:00", Rating: 5, ReviewText: ptr("I love this app, it's fantastic!")},
		{BankName: "CBE", UserName: "abebe", ReviewDate: "2024-05-01 10:00:00", Rating: 4, ReviewText: ptr("I love this app, it's fantastic!")},
		{BankName: "BOA", UserName: "sara", ReviewDate: "not a date", Rating: 1, ReviewText: ptr("slow")},
		{BankName: "BOA", UserName: "kebede", ReviewDate: "2024-05-03", Rating: 1, ReviewText: ptr("Terrible,   crashes every time, I hate it")},
		{BankName: "Dashen", UserName: "hana", ReviewDate: "2024-05-04", Rating: 3, ReviewText: ptr("   ")},
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	p := newPipeline(t, tempConfig(t), nil)
	out, st := p.Process(fiveRowBatch())

	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2 (stats %+v)", len(out), st)
	}
	if st.Duplicates != 1 || st.BadDate != 1 || st.EmptyText != 1 {
		t.Fatalf("stats = %+v", st)
	}
	for _, r := range out {
		if r.CleanedText == "" || r.WordCount < 1 || !r.SentimentLabel.Valid() {
			t.Fatalf("bad row %+v", r)
		}
	}
	if out[0].Rating != 5 {
		t.Fatalf("first occurrence not kept: rating %d", out[0].Rating)
	}
	if out[0].SentimentLabel != domain.Positive || out[1].SentimentLabel != domain.Negative {
		t.Fatalf("labels = %s, %s", out[0].SentimentLabel, out[1].SentimentLabel)
	}
	if out[1].CleanedText != "Terrible, crashes every time, I hate it" {
		t.Fatalf("cleaned = %q", out[1].CleanedText)
	}
	for _, w := range strings.Fields(out[1].ProcessedText) {
		if keywords.EnglishStopwords.Has(w) {
			t.Fatalf("stopword %q left in %q", w, out[1].ProcessedText)
		}
	}
}

const rawCSV = "source,bank_name,app_id,review_date,user_name,rating,review_text,thumbs_up_count,app_version\n" +
	"Google Play,CBE,com.combanketh.mobilebanking,2024-05-01 10:00:00,abebe,5,\"I love this app, it's fantastic!\",2,5.1\n" +
	"Google Play,CBE,com.combanketh.mobilebanking,2024-05-01 10:00:00,abebe,5,\"I love this app, it's fantastic!\",2,5.1\n" +
	"Google Play,BOA,com.boa.boaMobileBanking,2024-06-02 08:30:00,sara,1,\"Transfer failed again, terrible app\",0,\n" +
	"Google Play,BOA,com.boa.boaMobileBanking,someday,kebede,2,bad,0,\n"

func writeRaw(t *testing.T, cfg shared.Config) {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.RawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.RawDir, "reviews_raw_2024-06-10.csv"), []byte(rawCSV), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_AllStages(t *testing.T) {
	cfg := tempConfig(t)
	writeRaw(t, cfg)
	store := &fakeStore{}
	var invalidated []string
	p := newPipelineWith(t, cfg,
		func(context.Context) (ReviewStore, error) { return store, nil },
		func(_ context.Context, banks []string) { invalidated = banks })

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(invalidated) != 2 || invalidated[0] != "CBE" || invalidated[1] != "BOA" {
		t.Fatalf("invalidated = %v", invalidated)
	}

	if !store.schema || len(store.saved) != 2 {
		t.Fatalf("store schema=%v saved=%d", store.schema, len(store.saved))
	}
	for _, f := range []string{
		cfg.Paths.CleanedFile,
		cfg.Paths.ResultsFile,
		filepath.Join(cfg.Paths.ReportsDir, "themes_summary.txt"),
		filepath.Join(cfg.Paths.ReportsDir, "insights_summary.txt"),
		filepath.Join(cfg.Paths.ReportsDir, "dashboard", "rating_distribution.csv"),
		filepath.Join(cfg.Paths.ReportsDir, "dashboard", "sentiment_trend.csv"),
		filepath.Join(cfg.Paths.ReportsDir, "dashboard", "word_frequencies.csv"),
	} {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("missing output %s: %v", f, err)
		}
	}
	b, err := os.ReadFile(filepath.Join(cfg.Paths.ReportsDir, "insights_summary.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "BANK: CBE\n") || !strings.Contains(string(b), "  - 1-Star Reviews: 1\n") {
		t.Fatalf("insights:\n%s", b)
	}
}

func TestRun_AllRowsFiltered(t *testing.T) {
	cfg := tempConfig(t)
	if err := os.MkdirAll(cfg.Paths.RawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw := "bank_name,user_name,review_date,review_text,rating\n" +
		"CBE,abebe,someday,\"works fine\",4\n" +
		"BOA,sara,2024-05-02,\"   \",1\n"
	if err := os.WriteFile(filepath.Join(cfg.Paths.RawDir, "reviews_raw_2024-06-10.csv"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{}
	p := newPipeline(t, cfg, func(context.Context) (ReviewStore, error) { return store, nil })

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("saved = %d, want 0", len(store.saved))
	}
	b, err := os.ReadFile(filepath.Join(cfg.Paths.ReportsDir, "dashboard", "sentiment_trend.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(b)); got != "month,bank_name,avg_sentiment,reviews" {
		t.Fatalf("trend = %q", got)
	}
	for _, name := range []string{"themes_summary.txt", "insights_summary.txt"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.ReportsDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestRun_SkipsUploadWithoutStore(t *testing.T) {
	cfg := tempConfig(t)
	writeRaw(t, cfg)
	p := newPipeline(t, cfg, nil)
	if err := p.Run(context.Background(), StagePreprocess, StageSentiment, StageUpload); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_AbortsOnMissingInput(t *testing.T) {
	cfg := tempConfig(t)
	p := newPipeline(t, cfg, nil)

	err := p.Run(context.Background())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StagePreprocess {
		t.Fatalf("err = %v, want preprocess stage error", err)
	}
	if !errors.Is(err, domain.ErrInputMissing) {
		t.Fatalf("err = %v, want ErrInputMissing", err)
	}
	if _, statErr := os.Stat(cfg.Paths.CleanedFile); !os.IsNotExist(statErr) {
		t.Fatalf("cleaned file should not exist, stat err = %v", statErr)
	}
}

func TestRun_StopsAtFailingStage(t *testing.T) {
	cfg := tempConfig(t)
	writeRaw(t, cfg)
	store := &fakeStore{err: domain.ErrStoreUnavailable}
	p := newPipeline(t, cfg, func(context.Context) (ReviewStore, error) { return store, nil })

	err := p.Run(context.Background())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageUpload {
		t.Fatalf("err = %v, want upload stage error", err)
	}
	// stages after upload never ran
	if _, statErr := os.Stat(filepath.Join(cfg.Paths.ReportsDir, "insights_summary.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("insights should not exist, stat err = %v", statErr)
	}
}

func TestRun_UnknownStage(t *testing.T) {
	p := newPipeline(t, tempConfig(t), nil)
	if err := p.Run(context.Background(), "wordcloud"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestSelectStages_CanonicalOrder(t *testing.T) {
	got, err := selectStages([]string{StageDashboard, StagePreprocess})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != StagePreprocess || got[1] != StageDashboard {
		t.Fatalf("got %v", got)
	}
}
