package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"bank_reviews/internal/dataset"
	"bank_reviews/internal/domain"
)

type ScrapeService struct {
	client  domain.StoreClient
	workers int
	count   int
	log     zerolog.Logger
	now     func() time.Time
}

func NewScrapeService(c domain.StoreClient, workers, count int, l zerolog.Logger) *ScrapeService {
	if workers <= 0 {
		workers = 1
	}
	return &ScrapeService{client: c, workers: workers, count: count, log: l, now: time.Now}
}

// ScrapeBank fetches and maps the newest reviews of one bank's app.
func (s *ScrapeService) ScrapeBank(ctx context.Context, bank, appID string) ([]domain.RawReview, error) {
	payloads, err := s.client.FetchReviews(ctx, appID, s.count)
	if err != nil {
		return nil, err
	}
	return mapReviews(bank, appID, payloads), nil
}

// ScrapeAll scrapes every bank with bounded concurrency. A bank that fails
// is logged and skipped; results keep bank-name order.
func (s *ScrapeService) ScrapeAll(ctx context.Context, apps map[string]string) ([]domain.RawReview, error) {
	banks := make([]string, 0, len(apps))
	for b := range apps {
		banks = append(banks, b)
	}
	sort.Strings(banks)

	results := make([][]domain.RawReview, len(banks))
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	for i, bank := range banks {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, bank, appID string) {
			defer wg.Done()
			defer sem.Release(1)

			rs, err := s.ScrapeBank(ctx, bank, appID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				s.log.Warn().Str("bank", bank).Str("app_id", appID).Msg("app not found; skipping")
				return
			case err != nil:
				s.log.Error().Err(err).Str("bank", bank).Str("app_id", appID).Msg("scrape failed")
				return
			case len(rs) == 0:
				s.log.Warn().Str("bank", bank).Str("app_id", appID).Msg("no reviews returned")
				return
			}
			s.log.Info().Str("bank", bank).Int("reviews", len(rs)).Msg("scrape ok")
			results[i] = rs
		}(i, bank, apps[bank])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.RawReview
	for _, rs := range results {
		out = append(out, rs...)
	}
	return out, nil
}

// Run scrapes all banks and writes reviews_raw_<YYYY-MM-DD>.csv into dir.
func (s *ScrapeService) Run(ctx context.Context, apps map[string]string, dir string) (string, int, error) {
	rs, err := s.ScrapeAll(ctx, apps)
	if err != nil {
		return "", 0, err
	}
	if len(rs) == 0 {
		return "", 0, fmt.Errorf("no reviews collected from %d apps", len(apps))
	}
	path := filepath.Join(dir, fmt.Sprintf("reviews_raw_%s.csv", s.now().Format("2006-01-02")))
	if err := dataset.SaveRaw(path, rs); err != nil {
		return "", 0, err
	}
	return path, len(rs), nil
}
