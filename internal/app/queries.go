package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bank_reviews/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

const banksKey = "banks"

func summaryKey(bank string) string { return "summary:" + strings.ToLower(bank) }

func reviewsPrefix(bank string) string { return "reviews:" + strings.ToLower(bank) + ":" }

func reviewsKey(bank string, q domain.ReviewQuery) string {
	label := "all"
	if q.Label != nil {
		label = strings.ToLower(string(*q.Label))
	}
	return fmt.Sprintf("%s%s:%d", reviewsPrefix(bank), label, q.Limit)
}

func (s *QueryService) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	var out []domain.Bank
	if ok, _ := s.cache.Get(ctx, banksKey, &out); ok {
		return out, nil
	}
	bs, err := s.repo.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, banksKey, bs, int(s.cacheTTL.Seconds()))
	return bs, nil
}

func (s *QueryService) BankSummary(ctx context.Context, bank string) (domain.BankSummary, error) {
	key := summaryKey(bank)
	var sum domain.BankSummary
	if ok, _ := s.cache.Get(ctx, key, &sum); ok {
		return sum, nil
	}
	sum, err := s.repo.BankSummary(ctx, bank)
	if err != nil {
		return domain.BankSummary{}, err
	}
	_ = s.cache.Set(ctx, key, sum, int(s.cacheTTL.Seconds()))
	return sum, nil
}

func (s *QueryService) ListReviews(ctx context.Context, bank string, q domain.ReviewQuery) (domain.ReviewsPage, error) {
	key := reviewsKey(bank, q)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListReviews(ctx, bank, q)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy so callers mutating the page cannot touch the cached value
	copyRS := deepCopyReviewsPage(rs)

	if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyRS, int(s.cacheTTL.Seconds()))
	}
	return copyRS, nil
}

// InvalidateBanks drops cached views of the given banks after new reviews
// were stored for them: every cached review page, whatever its label or limit.
func (s *QueryService) InvalidateBanks(ctx context.Context, banks []string) {
	_ = s.cache.Del(ctx, banksKey)
	for _, b := range banks {
		_ = s.cache.Del(ctx, summaryKey(b))
		_ = s.cache.DelPrefix(ctx, reviewsPrefix(b))
	}
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{Items: []domain.StoredReview{}}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.StoredReview, n)
		copy(out.Items, in.Items)
	}
	return out
}
