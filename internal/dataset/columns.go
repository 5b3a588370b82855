package dataset

// Column sets of each stage's table.
var (
	RawColumns = []string{
		"source", "bank_name", "app_id", "review_date", "user_name",
		"rating", "review_text", "thumbs_up_count", "app_version",
	}
	CleanedColumns = []string{
		"source", "bank_name", "app_id", "review_date", "user_name",
		"rating", "thumbs_up_count", "app_version", "cleaned_text", "word_count",
	}
	ScoredColumns = append(append([]string{}, CleanedColumns...),
		"sentiment_score", "sentiment_label", "processed_text")

	requiredRaw     = []string{"bank_name", "user_name", "review_date", "review_text", "rating"}
	requiredCleaned = []string{"bank_name", "user_name", "review_date", "rating", "cleaned_text", "word_count"}
	requiredScored  = append(append([]string{}, requiredCleaned...), "sentiment_score", "sentiment_label", "processed_text")
)
