package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bank_reviews/internal/domain"
	"bank_reviews/internal/ngram"
)

// RatingDistribution counts reviews per (bank, star rating), sorted by bank
// then rating.
func RatingDistribution(df dataframe.DataFrame) dataframe.DataFrame {
	type key struct {
		bank   string
		rating int
	}
	counts := map[key]int{}
	bs := df.Col(colBank).Records()
	rs := df.Col(colRating).Float()
	for i := range bs {
		counts[key{bs[i], int(rs[i])}]++
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bank != keys[j].bank {
			return keys[i].bank < keys[j].bank
		}
		return keys[i].rating < keys[j].rating
	})

	bank := make([]string, len(keys))
	rating := make([]int, len(keys))
	count := make([]int, len(keys))
	for i, k := range keys {
		bank[i], rating[i], count[i] = k.bank, k.rating, counts[k]
	}
	return dataframe.New(
		series.New(bank, series.String, "bank_name"),
		series.New(rating, series.Int, "rating"),
		series.New(count, series.Int, "count"),
	)
}

// SentimentTrend averages the sentiment score per (calendar month, bank).
func SentimentTrend(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	type key struct{ month, bank string }
	type acc struct {
		sum float64
		n   int
	}
	groups := map[key]*acc{}
	ds := df.Col(colDate).Records()
	bs := df.Col(colBank).Records()
	ss := df.Col(colScore).Float()
	for i := range ds {
		t, err := time.Parse(time.RFC3339, ds[i])
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("row %d review_date: %w", i+1, err)
		}
		k := key{t.UTC().Format("2006-01"), bs[i]}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += ss[i]
		a.n++
	}
	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].bank < keys[j].bank
	})

	month := make([]string, len(keys))
	bank := make([]string, len(keys))
	avg := make([]float64, len(keys))
	n := make([]int, len(keys))
	for i, k := range keys {
		g := groups[k]
		month[i], bank[i], avg[i], n[i] = k.month, k.bank, g.sum/float64(g.n), g.n
	}
	return dataframe.New(
		series.New(month, series.String, "month"),
		series.New(bank, series.String, "bank_name"),
		series.New(avg, series.Float, "avg_sentiment"),
		series.New(n, series.Int, "reviews"),
	), nil
}

// WordFrequencies lists the topK words of each bank's positive and negative
// reviews, the term weights behind the per-bank word clouds. Banks keep
// first-seen order and words are ranked as ngram.Extractor ranks unigrams.
func WordFrequencies(df dataframe.DataFrame, ex *ngram.Extractor, topK int) (dataframe.DataFrame, error) {
	bank, label, word := []string{}, []string{}, []string{}
	count := []int{}
	for _, b := range banks(df) {
		sub := where(df, colBank, b)
		for _, l := range []domain.Label{domain.Positive, domain.Negative} {
			corpus := texts(where(sub, colLabel, string(l)), colProcessed)
			if len(corpus) == 0 {
				continue
			}
			top, err := ex.Top(corpus, 1, topK)
			if err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("words for %s %s: %w", b, l, err)
			}
			for _, f := range top {
				bank = append(bank, b)
				label = append(label, string(l))
				word = append(word, f.Phrase)
				count = append(count, f.Count)
			}
		}
	}
	return dataframe.New(
		series.New(bank, series.String, "bank_name"),
		series.New(label, series.String, "sentiment_label"),
		series.New(word, series.String, "word"),
		series.New(count, series.Int, "count"),
	), nil
}

func WriteFrame(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}
