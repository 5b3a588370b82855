package sqlstore

import (
	_ "embed"
	"strings"
)

//go:embed schema_mysql.sql
var schemaMySQL string

//go:embed schema_postgres.sql
var schemaPostgres string

// statements splits a schema file on ";" line endings. The schema files
// hold plain DDL, no procedures.
func statements(schema string) []string {
	var out []string
	for _, s := range strings.Split(schema, ";\n") {
		if s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const (
	tblBanks   = "banks"
	tblReviews = "reviews"
)

var reviewColumns = []string{
	"bank_id", "review_text", "rating", "review_date", "sentiment_label", "sentiment_score",
}

// Per-bank aggregate columns. SUM over an empty LEFT JOIN is NULL, hence
// the COALESCE wrappers.
var summaryColumns = []string{
	"b.bank_name",
	"COUNT(r.review_id)",
	"COALESCE(AVG(r.sentiment_score), 0)",
	"COALESCE(AVG(r.rating), 0)",
	"COALESCE(SUM(CASE WHEN r.sentiment_label = 'Positive' THEN 1 ELSE 0 END), 0)",
	"COALESCE(SUM(CASE WHEN r.sentiment_label = 'Negative' THEN 1 ELSE 0 END), 0)",
	"COALESCE(SUM(CASE WHEN r.sentiment_label = 'Neutral' THEN 1 ELSE 0 END), 0)",
	"COALESCE(SUM(CASE WHEN r.rating = 5 THEN 1 ELSE 0 END), 0)",
	"COALESCE(SUM(CASE WHEN r.rating = 1 THEN 1 ELSE 0 END), 0)",
}
