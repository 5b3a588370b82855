package preprocess

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Years outside this range come from inputs that carry no year at all
// ("12:30", "May 1") or cannot be stored in a SQL DATETIME.
const (
	minYear = 1900
	maxYear = 9999
)

// ParseDate reads a review date in any of the common layouts produced by
// exports and scrapers. Dates without a zone are taken as UTC. The boolean is
// false when the value cannot be read as a full calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	t = t.UTC()
	if t.Year() < minYear || t.Year() > maxYear {
		return time.Time{}, false
	}
	return t, true
}
