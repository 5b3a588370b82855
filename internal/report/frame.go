// Package report turns the scored review table into the per-bank summaries
// read by people: insights, themes and the series behind the dashboard.
package report

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	colBank      = "bank_name"
	colRating    = "rating"
	colDate      = "review_date"
	colScore     = "sentiment_score"
	colLabel     = "sentiment_label"
	colProcessed = "processed_text"
)

// Required lists the columns every report reads.
var Required = []string{colBank, colRating, colDate, colScore, colLabel, colProcessed}

// banks returns bank names in first-seen order.
func banks(df dataframe.DataFrame) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, b := range df.Col(colBank).Records() {
		if _, ok := seen[b]; ok || b == "" {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

func where(df dataframe.DataFrame, col, val string) dataframe.DataFrame {
	return df.Filter(dataframe.F{Colname: col, Comparator: series.Eq, Comparando: val})
}

// texts drops missing cells.
func texts(df dataframe.DataFrame, col string) []string {
	var out []string
	for _, s := range df.Col(col).Records() {
		if s != "" && s != "NaN" {
			out = append(out, s)
		}
	}
	return out
}

func mean(df dataframe.DataFrame, col string) float64 {
	if df.Nrow() == 0 {
		return 0
	}
	return series.Floats(df.Col(col).Float()).Mean()
}

func countWhere(df dataframe.DataFrame, col string, want float64) int {
	n := 0
	for _, v := range df.Col(col).Float() {
		if v == want {
			n++
		}
	}
	return n
}
