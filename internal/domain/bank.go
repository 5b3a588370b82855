package domain

import "time"

type Bank struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StoredReview is the review fact row as persisted.
type StoredReview struct {
	ID             int64     `json:"id"`
	BankName       string    `json:"bank_name"`
	Text           string    `json:"text"`
	Rating         int       `json:"rating"`
	ReviewDate     time.Time `json:"review_date"`
	SentimentLabel Label     `json:"sentiment_label"`
	SentimentScore float64   `json:"sentiment_score"`
}

// BankSummary aggregates the stored reviews of one bank.
type BankSummary struct {
	Bank         string  `json:"bank"`
	Reviews      int     `json:"reviews"`
	AvgSentiment float64 `json:"avg_sentiment"`
	AvgRating    float64 `json:"avg_rating"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	Neutral      int     `json:"neutral"`
	FiveStar     int     `json:"five_star"`
	OneStar      int     `json:"one_star"`
}
