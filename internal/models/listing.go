package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is whether a marketplace listing is still open or has sold
type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingSold   ListingStatus = "sold"
)

// Listing is a single marketplace result returned by a search gateway.
// Condition and Category are passed through as the marketplace reports them.
type Listing struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Shipping  decimal.Decimal `json:"shipping"`
	Condition string          `json:"condition"`
	Category  string          `json:"category"`
	Status    ListingStatus   `json:"status"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Watchers  int             `json:"watchers"`
}

// ListingFilter narrows gateway results before they are summarized
type ListingFilter struct {
	MinPrice       decimal.NullDecimal `json:"min_price"`
	MaxPrice       decimal.NullDecimal `json:"max_price"`
	Condition      string              `json:"condition"` // "any", "new", "used" or an exact condition name
	ExcludeWords   []string            `json:"exclude_words"`
	SoldWithinDays int                 `json:"sold_within_days"` // 0 means no window
}

// Matches reports whether a listing passes the price, condition and keyword filters.
// The sold window is applied separately because it needs a reference time.
func (f ListingFilter) Matches(l Listing) bool {
	if f.MinPrice.Valid && l.Price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && l.Price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	if !conditionMatches(l.Condition, f.Condition) {
		return false
	}
	title := strings.ToLower(l.Title)
	for _, word := range f.ExcludeWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && strings.Contains(title, word) {
			return false
		}
	}
	return true
}

// SoldWithin reports whether a sold listing ended inside the window ending at now.
// Listings without an end time, and active listings, always pass.
func (f ListingFilter) SoldWithin(l Listing, now time.Time) bool {
	if f.SoldWithinDays <= 0 || l.Status != ListingSold || l.EndTime == nil {
		return true
	}
	cutoff := now.AddDate(0, 0, -f.SoldWithinDays)
	return !l.EndTime.Before(cutoff)
}

func conditionMatches(condition, target string) bool {
	target = strings.ToLower(strings.TrimSpace(target))
	condition = strings.ToLower(strings.TrimSpace(condition))
	switch target {
	case "", "any", "all":
		return true
	case "new":
		return condition == "new" || strings.HasPrefix(condition, "new ")
	case "used":
		switch condition {
		case "used", "like new", "good", "very good", "acceptable", "fair", "pre-owned":
			return true
		}
		return strings.HasPrefix(condition, "used")
	default:
		return condition == target
	}
}

// ParseExcludeWords splits a comma-separated list, dropping empty entries
func ParseExcludeWords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
