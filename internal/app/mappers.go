package app

import (
	"strconv"
	"strings"
	"time"

	"bank_reviews/internal/domain"
)

// SourceGooglePlay tags every scraped review.
const SourceGooglePlay = "Google Play"

/********** alias registry (single source of truth) **********/

var reviewAliases = map[string][]string{
	"date":    {"at", "date", "review_date", "reviewCreatedAt", "created_at"},
	"user":    {"userName", "user_name", "author", "reviewer.name", "user.name"},
	"rating":  {"score", "rating", "stars", "rating.value"},
	"text":    {"content", "text", "review_text", "body", "comment"},
	"thumbs":  {"thumbsUpCount", "thumbs_up_count", "likes", "helpful"},
	"version": {"reviewCreatedVersion", "appVersion", "app_version", "version"},
}

// rawDateLayout matches how the preprocess stage reads scraped dates.
const rawDateLayout = "2006-01-02 15:04:05"

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) *string {
	for _, p := range reviewAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "4,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// reviewDate accepts a date string as-is or epoch seconds.
func reviewDate(m map[string]any) string {
	for _, p := range reviewAliases["date"] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return time.Unix(int64(v), 0).UTC().Format(rawDateLayout)
		}
	}
	return ""
}

/********** reviews mapper **********/

func mapReviews(bank, appID string, in []map[string]any) []domain.RawReview {
	out := make([]domain.RawReview, 0, len(in))
	for _, r := range in {
		rv := domain.RawReview{
			Source:     SourceGooglePlay,
			BankName:   bank,
			AppID:      appID,
			ReviewDate: reviewDate(r),
			UserName:   deref(firstNonEmptyAlias(r, "user")),
			AppVersion: deref(firstNonEmptyAlias(r, "version")),
			// missing text stays nil so the cleaner can drop it
			ReviewText: firstNonEmptyAlias(r, "text"),
		}
		if f := getFloatFlexible(r, reviewAliases["rating"]...); f != nil {
			rv.Rating = int(*f)
		}
		if f := getFloatFlexible(r, reviewAliases["thumbs"]...); f != nil {
			rv.ThumbsUpCount = int(*f)
		}
		out = append(out, rv)
	}
	return out
}
