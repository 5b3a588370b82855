// Package dataset loads and saves the CSV tables exchanged between stages.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bank_reviews/internal/domain"
)

// naValue is how gota renders a missing cell.
const naValue = "NaN"

// LoadFrame reads a CSV into a string-typed DataFrame and checks that the
// required columns are present. A file holding only the header yields a
// zero-row frame: every record of a batch may legitimately be filtered out.
func LoadFrame(path string, required ...string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s", domain.ErrInputMissing, path)
		}
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(recs) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w in %s: no header", domain.ErrMissingColumns, path)
	}
	if missing := missingColumns(recs[0], required); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w in %s: %s", domain.ErrMissingColumns, path, strings.Join(missing, ", "))
	}
	if len(recs) == 1 {
		return emptyFrame(recs[0]), nil
	}

	df := dataframe.LoadRecords(recs,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, df.Err)
	}
	return df, nil
}

func emptyFrame(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

// LatestRaw returns the newest file in dir matching pattern. File names
// carry a sortable date, so the last one in lexical order wins.
func LatestRaw(dir, pattern string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no %s in %s", domain.ErrInputMissing, pattern, dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files[0], nil
}

func LoadRaw(path string) ([]domain.RawReview, error) {
	df, err := LoadFrame(path, requiredRaw...)
	if err != nil {
		return nil, err
	}
	rows := newRows(df)
	out := make([]domain.RawReview, 0, rows.len())
	for i := 0; i < rows.len(); i++ {
		r := domain.RawReview{
			Source:        rows.str(i, "source"),
			BankName:      rows.str(i, "bank_name"),
			AppID:         rows.str(i, "app_id"),
			ReviewDate:    rows.str(i, "review_date"),
			UserName:      rows.str(i, "user_name"),
			Rating:        rows.int(i, "rating"),
			ThumbsUpCount: rows.int(i, "thumbs_up_count"),
			AppVersion:    rows.str(i, "app_version"),
		}
		if v, ok := rows.cell(i, "review_text"); ok {
			r.ReviewText = &v
		}
		out = append(out, r)
	}
	return out, nil
}

func LoadCleaned(path string) ([]domain.CleanedReview, error) {
	df, err := LoadFrame(path, requiredCleaned...)
	if err != nil {
		return nil, err
	}
	rows := newRows(df)
	out := make([]domain.CleanedReview, 0, rows.len())
	for i := 0; i < rows.len(); i++ {
		c, err := rows.cleaned(i)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func LoadScored(path string) ([]domain.ScoredReview, error) {
	df, err := LoadFrame(path, requiredScored...)
	if err != nil {
		return nil, err
	}
	rows := newRows(df)
	out := make([]domain.ScoredReview, 0, rows.len())
	for i := 0; i < rows.len(); i++ {
		c, err := rows.cleaned(i)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		score, err := strconv.ParseFloat(rows.str(i, "sentiment_score"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: sentiment_score: %w", path, i+1, err)
		}
		label, err := domain.ParseLabel(rows.str(i, "sentiment_label"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		out = append(out, domain.ScoredReview{
			CleanedReview:  c,
			SentimentScore: score,
			SentimentLabel: label,
			ProcessedText:  rows.str(i, "processed_text"),
		})
	}
	return out, nil
}

// rows gives by-name access to the records of a string DataFrame.
type rows struct {
	idx  map[string]int
	data [][]string
}

func newRows(df dataframe.DataFrame) rows {
	recs := df.Records()
	r := rows{idx: map[string]int{}}
	if len(recs) == 0 {
		return r
	}
	for i, name := range recs[0] {
		r.idx[name] = i
	}
	r.data = recs[1:]
	return r
}

func (r rows) len() int { return len(r.data) }

// cell reports false for absent columns and missing values.
func (r rows) cell(i int, col string) (string, bool) {
	j, ok := r.idx[col]
	if !ok || j >= len(r.data[i]) {
		return "", false
	}
	v := r.data[i][j]
	if v == "" || v == naValue {
		return "", false
	}
	return v, true
}

func (r rows) str(i int, col string) string {
	v, _ := r.cell(i, col)
	return v
}

// int reads whole numbers, also when written as floats ("5.0").
func (r rows) int(i int, col string) int {
	v, ok := r.cell(i, col)
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return int(f)
	}
	return 0
}

func (r rows) cleaned(i int) (domain.CleanedReview, error) {
	date, err := time.Parse(time.RFC3339, r.str(i, "review_date"))
	if err != nil {
		return domain.CleanedReview{}, fmt.Errorf("review_date: %w", err)
	}
	return domain.CleanedReview{
		Source:        r.str(i, "source"),
		BankName:      r.str(i, "bank_name"),
		AppID:         r.str(i, "app_id"),
		ReviewDate:    date.UTC(),
		UserName:      r.str(i, "user_name"),
		Rating:        r.int(i, "rating"),
		ThumbsUpCount: r.int(i, "thumbs_up_count"),
		AppVersion:    r.str(i, "app_version"),
		CleanedText:   r.str(i, "cleaned_text"),
		WordCount:     r.int(i, "word_count"),
	}, nil
}

func missingColumns(have, want []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := set[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}
