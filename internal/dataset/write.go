package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bank_reviews/internal/domain"
)

func SaveRaw(path string, rs []domain.RawReview) error {
	return writeCSV(path, RawColumns, len(rs), func(i int) []string {
		r := rs[i]
		txt := ""
		if r.ReviewText != nil {
			txt = *r.ReviewText
		}
		return []string{
			r.Source, r.BankName, r.AppID, r.ReviewDate, r.UserName,
			strconv.Itoa(r.Rating), txt, strconv.Itoa(r.ThumbsUpCount), r.AppVersion,
		}
	})
}

func SaveCleaned(path string, rs []domain.CleanedReview) error {
	return writeCSV(path, CleanedColumns, len(rs), func(i int) []string {
		return cleanedRecord(rs[i])
	})
}

func SaveScored(path string, rs []domain.ScoredReview) error {
	return writeCSV(path, ScoredColumns, len(rs), func(i int) []string {
		r := rs[i]
		return append(cleanedRecord(r.CleanedReview),
			strconv.FormatFloat(r.SentimentScore, 'f', -1, 64),
			string(r.SentimentLabel),
			r.ProcessedText,
		)
	})
}

func cleanedRecord(r domain.CleanedReview) []string {
	return []string{
		r.Source, r.BankName, r.AppID, r.ReviewDate.UTC().Format(time.RFC3339), r.UserName,
		strconv.Itoa(r.Rating), strconv.Itoa(r.ThumbsUpCount), r.AppVersion,
		r.CleanedText, strconv.Itoa(r.WordCount),
	}
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	return WriteFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := w.Write(row(i)); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		w.Flush()
		return w.Error()
	})
}

// WriteFile writes to a temp file next to path and renames it into place, so
// a failed write never leaves a truncated file behind.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
