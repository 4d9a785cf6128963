package domain

import (
	"strings"
	"time"
)

// SearchPopularity is one aggregated search-count record. The
// (UserID, Keyword, Region) triple is unique; Count starts at 1 and is
// incremented on every repeated identical search.
type SearchPopularity struct {
	UserID    string    `json:"user_id"`
	Keyword   string    `json:"keyword"`
	Region    string    `json:"region"`
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeKeyword trims surrounding whitespace, collapses inner
// whitespace runs to a single space and lowercases the keyword, so
// that "  Fried   CHICKEN " and "fried chicken" share one record.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

// NormalizeRegion trims surrounding whitespace only. Region names are
// proper nouns and stay case-significant.
func NormalizeRegion(region string) string {
	return strings.TrimSpace(region)
}
