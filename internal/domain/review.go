package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Label is the three-way sentiment category derived from a compound score.
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

func (l Label) Valid() bool {
	switch l {
	case Positive, Negative, Neutral:
		return true
	}
	return false
}

// ParseLabel maps a stored/serialized label back to a Label.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown sentiment label %q", s)
	}
	return l, nil
}

func (l *Label) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// RawReview is one review as collected, before any cleaning.
// ReviewText is nil when the source had no text at all.
type RawReview struct {
	Source        string
	BankName      string
	AppID         string
	ReviewDate    string // unparsed, as found in the input
	UserName      string
	Rating        int
	ReviewText    *string
	ThumbsUpCount int
	AppVersion    string
}

// IdentityKey is the dedup key: (user name, raw date string, raw text).
type IdentityKey struct {
	UserName   string
	ReviewDate string
	Text       string
	HasText    bool
}

func (r RawReview) Key() IdentityKey {
	k := IdentityKey{UserName: r.UserName, ReviewDate: r.ReviewDate}
	if r.ReviewText != nil {
		k.Text, k.HasText = *r.ReviewText, true
	}
	return k
}

// CleanedReview is a RawReview with a parsed date and normalized text.
// The raw text is not carried forward.
type CleanedReview struct {
	Source        string
	BankName      string
	AppID         string
	ReviewDate    time.Time
	UserName      string
	Rating        int
	ThumbsUpCount int
	AppVersion    string
	CleanedText   string
	WordCount     int
}

// ScoredReview adds sentiment and keyword-normalized text.
type ScoredReview struct {
	CleanedReview
	SentimentScore float64
	SentimentLabel Label
	ProcessedText  string
}
