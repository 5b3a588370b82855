package domain

import "context"

type ReviewRepository interface {
	// Write paths
	EnsureSchema(ctx context.Context) error
	UpsertBank(ctx context.Context, name string) (int64, error)
	SaveReviews(ctx context.Context, rs []ScoredReview) (int, error)

	// Read paths
	ListBanks(ctx context.Context) ([]Bank, error)
	BankSummary(ctx context.Context, bank string) (BankSummary, error)
	ListReviews(ctx context.Context, bank string, q ReviewQuery) (ReviewsPage, error)
}

// StoreClient pulls raw review payloads for one app from the listing API.
type StoreClient interface {
	FetchReviews(ctx context.Context, appID string, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// DelPrefix removes every key starting with prefix.
	DelPrefix(ctx context.Context, prefix string) error
}

type ReviewQuery struct {
	Label *Label
	Limit int
}

type ReviewsPage struct {
	Items []StoredReview `json:"items"`
}
