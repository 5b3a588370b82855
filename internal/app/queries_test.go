package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"bank_reviews/internal/app"
	"bank_reviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	banks   []domain.Bank
	summary domain.BankSummary
	rp      domain.ReviewsPage
	calls   int
}

func (f *fakeRepo) EnsureSchema(ctx context.Context) error                     { return nil }
func (f *fakeRepo) UpsertBank(ctx context.Context, name string) (int64, error) { return 1, nil }
func (f *fakeRepo) SaveReviews(ctx context.Context, rs []domain.ScoredReview) (int, error) {
	return len(rs), nil
}
func (f *fakeRepo) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	f.calls++
	return f.banks, nil
}
func (f *fakeRepo) BankSummary(ctx context.Context, bank string) (domain.BankSummary, error) {
	f.calls++
	if bank != f.summary.Bank {
		return domain.BankSummary{}, domain.ErrNotFound
	}
	return f.summary, nil
}
func (f *fakeRepo) ListReviews(ctx context.Context, bank string, q domain.ReviewQuery) (domain.ReviewsPage, error) {
	f.calls++
	return f.rp, nil
}

type fakeCache struct {
	store   map[string]any
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Bank:
		*d = v.([]domain.Bank)
	case *domain.BankSummary:
		*d = v.(domain.BankSummary)
	case *domain.ReviewsPage:
		*d = v.(domain.ReviewsPage)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.deleted = append(c.deleted, key)
	return nil
}
func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) error {
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			_ = c.Del(ctx, k)
		}
	}
	return nil
}

// ---- tests ----

func TestBankSummary_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{summary: domain.BankSummary{Bank: "CBE", Reviews: 3, AvgSentiment: 0.2}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	s, err := q.BankSummary(context.Background(), "CBE")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if s.Reviews != 3 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.summary.Reviews = 99

	s2, err := q.BankSummary(context.Background(), "CBE")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if s2.Reviews != 3 || repo.calls != 1 {
		t.Fatalf("expected cached summary, got %+v after %d repo calls", s2, repo.calls)
	}
}

func TestBankSummary_NotFoundIsNotCached(t *testing.T) {
	repo := &fakeRepo{summary: domain.BankSummary{Bank: "CBE"}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)

	if _, err := q.BankSummary(context.Background(), "Nope"); err != domain.ErrNotFound {
		t.Fatalf("err = %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("cache should be empty: %v", cache.store)
	}
}

func TestListReviews_Cache(t *testing.T) {
	repo := &fakeRepo{
		rp: domain.ReviewsPage{Items: []domain.StoredReview{
			{ID: 1, BankName: "CBE", Text: "great app", Rating: 5, SentimentLabel: domain.Positive},
		}},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)
	pos := domain.Positive

	out, err := q.ListReviews(context.Background(), "CBE", domain.ReviewQuery{Label: &pos, Limit: 10})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Text != "great app" {
		t.Fatalf("unexpected reviews: %+v", out.Items)
	}

	// Change repo, call again -> should come from cache
	repo.rp.Items[0].Text = "Changed"
	out2, _ := q.ListReviews(context.Background(), "CBE", domain.ReviewQuery{Label: &pos, Limit: 10})
	if out2.Items[0].Text != "great app" {
		t.Fatalf("expected cached text, got %s", out2.Items[0].Text)
	}

	// a different label is a different cache entry
	neg := domain.Negative
	out3, _ := q.ListReviews(context.Background(), "CBE", domain.ReviewQuery{Label: &neg, Limit: 10})
	if out3.Items[0].Text != "Changed" {
		t.Fatalf("expected fresh read, got %s", out3.Items[0].Text)
	}
}

func TestInvalidateBanks(t *testing.T) {
	repo := &fakeRepo{
		banks:   []domain.Bank{{ID: 1, Name: "CBE"}},
		summary: domain.BankSummary{Bank: "CBE", Reviews: 1},
		rp:      domain.ReviewsPage{Items: []domain.StoredReview{{ID: 1}}},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)
	ctx := context.Background()

	_, _ = q.ListBanks(ctx)
	_, _ = q.BankSummary(ctx, "CBE")
	_, _ = q.ListReviews(ctx, "CBE", domain.ReviewQuery{Limit: 50})
	_, _ = q.ListReviews(ctx, "CBE", domain.ReviewQuery{Limit: 10})
	neg := domain.Negative
	_, _ = q.ListReviews(ctx, "CBE", domain.ReviewQuery{Label: &neg, Limit: 37})
	if len(cache.store) != 5 {
		t.Fatalf("cache entries = %d, want 5", len(cache.store))
	}

	q.InvalidateBanks(ctx, []string{"CBE"})
	if len(cache.store) != 0 {
		t.Fatalf("entries left after invalidation: %v", cache.store)
	}
}
