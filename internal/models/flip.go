package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlipStatus is the lifecycle stage of a tracked flip
type FlipStatus string

const (
	FlipResearching FlipStatus = "researching"
	FlipPurchased   FlipStatus = "purchased"
	FlipListed      FlipStatus = "listed"
	FlipSold        FlipStatus = "sold"
)

// AllFlipStatuses returns the statuses in lifecycle order
func AllFlipStatuses() []FlipStatus {
	return []FlipStatus{FlipResearching, FlipPurchased, FlipListed, FlipSold}
}

// Valid reports whether s is one of the enumerated statuses
func (s FlipStatus) Valid() bool {
	switch s {
	case FlipResearching, FlipPurchased, FlipListed, FlipSold:
		return true
	}
	return false
}

// NormalizeStatus lowercases and trims a status spelling
func NormalizeStatus(raw string) FlipStatus {
	return FlipStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Platform is the marketplace a flip is sold on
type Platform string

const (
	PlatformEbay       Platform = "ebay"
	PlatformFacebook   Platform = "facebook"
	PlatformCraigslist Platform = "craigslist"
	PlatformEtsy       Platform = "etsy"
	PlatformAmazon     Platform = "amazon"
	PlatformMercari    Platform = "mercari"
	PlatformOther      Platform = "other"
)

// AllPlatforms returns all supported selling platforms
func AllPlatforms() []Platform {
	return []Platform{
		PlatformEbay,
		PlatformFacebook,
		PlatformCraigslist,
		PlatformEtsy,
		PlatformAmazon,
		PlatformMercari,
		PlatformOther,
	}
}

// Valid reports whether p is one of the enumerated platforms
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms() {
		if p == known {
			return true
		}
	}
	return false
}

// NormalizePlatform maps display names and common spellings onto Platform.
// Unknown values are returned lowercased so validation can reject them.
func NormalizePlatform(raw string) Platform {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ebay":
		return PlatformEbay
	case "facebook", "facebook marketplace", "fb":
		return PlatformFacebook
	case "craigslist":
		return PlatformCraigslist
	case "etsy":
		return PlatformEtsy
	case "amazon":
		return PlatformAmazon
	case "mercari":
		return PlatformMercari
	case "other":
		return PlatformOther
	default:
		return Platform(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// FlipRecord is one tracked buy/sell cycle.
// NetProfit and ROIPercent are derived from the prices and fees on every write.
type FlipRecord struct {
	ID                  string              `json:"id" gorm:"primaryKey;size:36"`
	ItemDescription     string              `json:"item_description" gorm:"not null"`
	Category            string              `json:"category" gorm:"index"`
	Notes               string              `json:"notes"`
	PurchasePrice       decimal.Decimal     `json:"purchase_price" gorm:"type:text;not null"`
	PurchaseDate        time.Time           `json:"purchase_date" gorm:"index"`
	SaleOrEstimatePrice decimal.Decimal     `json:"sale_or_estimate_price" gorm:"type:text;not null"`
	Fees                decimal.Decimal     `json:"fees" gorm:"type:text;not null"`
	Platform            Platform            `json:"platform" gorm:"not null;index;default:'ebay'"`
	Status              FlipStatus          `json:"status" gorm:"not null;index;default:'researching'"`
	NetProfit           decimal.Decimal     `json:"net_profit" gorm:"type:text"`
	ROIPercent          decimal.NullDecimal `json:"roi_percent" gorm:"type:text"`
	CreatedAt           time.Time           `json:"created_at" gorm:"autoCreateTime:false;index"`
	UpdatedAt           time.Time           `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// CreateFlipRequest carries the caller-supplied fields of a new flip
type CreateFlipRequest struct {
	ItemDescription     string          `json:"item_description"`
	Category            string          `json:"category"`
	Notes               string          `json:"notes"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	PurchaseDate        time.Time       `json:"purchase_date"`
	SaleOrEstimatePrice decimal.Decimal `json:"sale_or_estimate_price"`
	Fees                decimal.Decimal `json:"fees"`
	Platform            Platform        `json:"platform"`
	Status              FlipStatus      `json:"status"`
}

// UpdateFlipRequest is a partial update; nil fields are left unchanged
type UpdateFlipRequest struct {
	ItemDescription     *string          `json:"item_description"`
	Category            *string          `json:"category"`
	Notes               *string          `json:"notes"`
	PurchasePrice       *decimal.Decimal `json:"purchase_price"`
	PurchaseDate        *time.Time       `json:"purchase_date"`
	SaleOrEstimatePrice *decimal.Decimal `json:"sale_or_estimate_price"`
	Fees                *decimal.Decimal `json:"fees"`
	Platform            *Platform        `json:"platform"`
	Status              *FlipStatus      `json:"status"`
}

// FlipFilter narrows a list of flips. Zero values match everything.
// From and To bound the purchase date and are both inclusive.
type FlipFilter struct {
	Status   FlipStatus
	Platform Platform
	From     *time.Time
	To       *time.Time
}

// RecentSearch is a query the user ran from the research screen
type RecentSearch struct {
	ID         uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	Query      string    `json:"query" gorm:"not null;uniqueIndex"`
	SearchedAt time.Time `json:"searched_at" gorm:"index"`
}

// PlatformBreakdown aggregates flips sold through one platform
type PlatformBreakdown struct {
	Flips       int                 `json:"flips"`
	TotalProfit decimal.Decimal     `json:"total_profit"`
	AverageROI  decimal.NullDecimal `json:"average_roi"`
}

// CategoryBreakdown aggregates flips in one item category
type CategoryBreakdown struct {
	Flips       int             `json:"flips"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// DailyProfit is one point of the profit-over-time series, keyed by purchase date
type DailyProfit struct {
	Date       string          `json:"date"` // YYYY-MM-DD
	Profit     decimal.Decimal `json:"profit"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// UncategorizedLabel groups flips recorded without a category
const UncategorizedLabel = "Uncategorized"

// FlipAnalytics summarizes the flip log over a period
type FlipAnalytics struct {
	Period        string                         `json:"period"` // "week", "month", "3month", "year", "all"
	TotalFlips    int                            `json:"total_flips"`
	SoldFlips     int                            `json:"sold_flips"`
	TotalProfit   decimal.Decimal                `json:"total_profit"`
	TotalInvested decimal.Decimal                `json:"total_invested"`
	AverageProfit decimal.NullDecimal            `json:"average_profit"`
	AverageROI    decimal.NullDecimal            `json:"average_roi"`
	BestROI       decimal.NullDecimal            `json:"best_roi"`
	ByPlatform    map[Platform]PlatformBreakdown `json:"by_platform"`
	ByStatus      map[FlipStatus]int             `json:"by_status"`
	ByCategory    map[string]CategoryBreakdown   `json:"by_category"`
	ProfitSeries  []DailyProfit                  `json:"profit_series"` // oldest day first
	RecentFlips   int                            `json:"recent_flips"` // purchased in the last 30 days
}
