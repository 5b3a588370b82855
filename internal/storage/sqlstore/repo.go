// Package sqlstore persists scored reviews into the banks/reviews tables
// on MySQL or Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"bank_reviews/internal/domain"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// insertBatch bounds the rows per INSERT statement.
const insertBatch = 500

type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repo struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
}

var _ domain.ReviewRepository = (*Repo)(nil)

func New(db *sql.DB, driver string) (*Repo, error) {
	r := &Repo{db: db, driver: driver, sb: sq.StatementBuilder}
	switch driver {
	case DriverMySQL:
	case DriverPostgres:
		r.sb = r.sb.PlaceholderFormat(sq.Dollar)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	return r, nil
}

// Open connects and pings the database. Connection failures are reported
// as domain.ErrStoreUnavailable.
func Open(ctx context.Context, driver, dsn string) (*Repo, error) {
	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	r, err := New(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// normalizeDSN makes MySQL return DATETIME columns as UTC time.Time values,
// which the review scans rely on.
func normalizeDSN(driver, dsn string) (string, error) {
	if driver != DriverMySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("sqlstore: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	schema := schemaMySQL
	if r.driver == DriverPostgres {
		schema = schemaPostgres
	}
	for _, stmt := range statements(schema) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertBank inserts the bank if absent and returns its id either way.
func (r *Repo) UpsertBank(ctx context.Context, name string) (int64, error) {
	return r.upsertBank(ctx, r.db, name)
}

func (r *Repo) upsertBank(ctx context.Context, db runner, name string) (int64, error) {
	ins := r.sb.Insert(tblBanks).Columns("bank_name").Values(name)
	if r.driver == DriverPostgres {
		ins = ins.Suffix("ON CONFLICT (bank_name) DO NOTHING")
	} else {
		ins = ins.Options("IGNORE")
	}
	q, args, err := ins.ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		return 0, fmt.Errorf("insert bank %q: %w", name, err)
	}
	return r.bankID(ctx, db, name)
}

// nameMatches compares bank names case-insensitively on both dialects.
func nameMatches(col, name string) sq.Sqlizer {
	return sq.Expr("LOWER("+col+") = LOWER(?)", name)
}

// findBank resolves a bank name as typed by an API caller.
func (r *Repo) findBank(ctx context.Context, name string) (domain.Bank, error) {
	q, args, err := r.sb.Select("bank_id", "bank_name").From(tblBanks).
		Where(nameMatches("bank_name", name)).
		OrderBy("bank_id").Limit(1).
		ToSql()
	if err != nil {
		return domain.Bank{}, err
	}
	var b domain.Bank
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&b.ID, &b.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Bank{}, domain.ErrNotFound
		}
		return domain.Bank{}, fmt.Errorf("select bank %q: %w", name, err)
	}
	return b, nil
}

func (r *Repo) bankID(ctx context.Context, db runner, name string) (int64, error) {
	q, args, err := r.sb.Select("bank_id").From(tblBanks).Where(sq.Eq{"bank_name": name}).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("select bank %q: %w", name, err)
	}
	return id, nil
}

// SaveReviews writes all rows in one transaction; on any error nothing is
// persisted.
func (r *Repo) SaveReviews(ctx context.Context, rs []domain.ScoredReview) (int, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := map[string]int64{}
	for start := 0; start < len(rs); start += insertBatch {
		end := min(start+insertBatch, len(rs))
		ins := r.sb.Insert(tblReviews).Columns(reviewColumns...)
		for _, rv := range rs[start:end] {
			id, ok := ids[rv.BankName]
			if !ok {
				if id, err = r.upsertBank(ctx, tx, rv.BankName); err != nil {
					return 0, err
				}
				ids[rv.BankName] = id
			}
			ins = ins.Values(id, rv.CleanedText, rv.Rating, rv.ReviewDate.UTC(),
				string(rv.SentimentLabel), rv.SentimentScore)
		}
		q, args, err := ins.ToSql()
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, fmt.Errorf("insert reviews %d-%d: %w", start, end, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reviews: %w", err)
	}
	return len(rs), nil
}

func (r *Repo) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	q, args, err := r.sb.Select("bank_id", "bank_name").From(tblBanks).OrderBy("bank_name").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bank
	for rows.Next() {
		var b domain.Bank
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) BankSummary(ctx context.Context, bank string) (domain.BankSummary, error) {
	q, args, err := r.sb.Select(summaryColumns...).
		From(tblBanks+" b").
		LeftJoin(tblReviews+" r ON r.bank_id = b.bank_id").
		Where(nameMatches("b.bank_name", bank)).
		GroupBy("b.bank_id", "b.bank_name").
		OrderBy("b.bank_id").Limit(1).
		ToSql()
	if err != nil {
		return domain.BankSummary{}, err
	}
	var s domain.BankSummary
	err = r.db.QueryRowContext(ctx, q, args...).Scan(
		&s.Bank, &s.Reviews, &s.AvgSentiment, &s.AvgRating,
		&s.Positive, &s.Negative, &s.Neutral, &s.FiveStar, &s.OneStar,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BankSummary{}, domain.ErrNotFound
		}
		return domain.BankSummary{}, err
	}
	return s, nil
}

// ListReviews returns the newest reviews of a bank, optionally of a single
// sentiment label. Bank names match case-insensitively; unknown banks give
// domain.ErrNotFound.
func (r *Repo) ListReviews(ctx context.Context, bank string, rq domain.ReviewQuery) (domain.ReviewsPage, error) {
	b, err := r.findBank(ctx, bank)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	sel := r.sb.Select("review_id", "review_text", "rating", "review_date", "sentiment_label", "sentiment_score").
		From(tblReviews).
		Where(sq.Eq{"bank_id": b.ID}).
		OrderBy("review_date DESC", "review_id DESC")
	if rq.Label != nil {
		sel = sel.Where(sq.Eq{"sentiment_label": string(*rq.Label)})
	}
	if rq.Limit > 0 {
		sel = sel.Limit(uint64(rq.Limit))
	}
	q, args, err := sel.ToSql()
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out := []domain.StoredReview{}
	for rows.Next() {
		rv := domain.StoredReview{BankName: b.Name}
		var label string
		if err := rows.Scan(&rv.ID, &rv.Text, &rv.Rating, &rv.ReviewDate, &label, &rv.SentimentScore); err != nil {
			return domain.ReviewsPage{}, err
		}
		rv.ReviewDate = rv.ReviewDate.UTC()
		if rv.SentimentLabel, err = domain.ParseLabel(label); err != nil {
			return domain.ReviewsPage{}, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}
