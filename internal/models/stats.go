package models

import (
	"github.com/shopspring/decimal"
)

// PriceBucket is one histogram bar of the price distribution.
// Lower is inclusive; Upper is exclusive except on the last bucket.
type PriceBucket struct {
	Lower decimal.Decimal `json:"lower"`
	Upper decimal.Decimal `json:"upper"`
	Count int             `json:"count"`
}

// StatisticsSummary reduces a set of listing prices.
// Min, Max, Mean and Median are invalid (JSON null) when Count is zero so an
// empty market is never reported as a $0 market.
type StatisticsSummary struct {
	Count         int                 `json:"count"`
	Min           decimal.NullDecimal `json:"min"`
	Max           decimal.NullDecimal `json:"max"`
	Mean          decimal.NullDecimal `json:"mean"`
	Median        decimal.NullDecimal `json:"median"`
	TotalValue    decimal.Decimal     `json:"total_value"`
	MeanTotal     decimal.NullDecimal `json:"mean_total"` // price + shipping
	TotalWatchers int                 `json:"total_watchers"`
	Distribution  []PriceBucket       `json:"distribution"`
}

// HasData reports whether the summary was computed over at least one listing
func (s StatisticsSummary) HasData() bool {
	return s.Count > 0
}

// ProfitResult is the outcome of a profit calculation.
// ROIPercent is invalid when the cost basis is zero.
type ProfitResult struct {
	NetProfit  decimal.Decimal     `json:"net_profit"`
	ROIPercent decimal.NullDecimal `json:"roi_percent"`
}

// ROIDefined reports whether an ROI could be computed
func (r ProfitResult) ROIDefined() bool {
	return r.ROIPercent.Valid
}

// MarketReport is the research view of one query: active and sold statistics
// plus the derived figures a flipper uses to price an item.
type MarketReport struct {
	Query              string              `json:"query"`
	Category           string              `json:"category,omitempty"`
	Active             StatisticsSummary   `json:"active"`
	Sold               StatisticsSummary   `json:"sold"`
	SellThroughPercent decimal.Decimal     `json:"sell_through_percent"`
	PriceTrendPercent  decimal.NullDecimal `json:"price_trend_percent"`
	ReferencePrice     decimal.NullDecimal `json:"reference_price"`
	EstimatedFeeRate   decimal.Decimal     `json:"estimated_fee_rate"`
	SoldWindowDays     int                 `json:"sold_window_days"`
	Recommendation     Recommendation      `json:"recommendation"`
	Listings           []Listing           `json:"listings,omitempty"`
}

// Recommendation suggests where and at what price to list an item
type Recommendation struct {
	Platform         Platform            `json:"platform"`
	Reason           string              `json:"reason"`
	TargetPrice      decimal.NullDecimal `json:"target_price"`      // market anchor before discounting
	RecommendedPrice decimal.NullDecimal `json:"recommended_price"` // null without market data or cost basis
}
