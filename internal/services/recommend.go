package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
)

var (
	// competitiveDiscount undercuts the market target slightly
	competitiveDiscount = decimal.RequireFromString("0.95")
	// minimumMarkup keeps the recommended price at a 30% return on cost
	minimumMarkup = decimal.RequireFromString("1.3")

	electronicsThreshold = decimal.NewFromInt(100)
	localHomeThreshold   = decimal.NewFromInt(50)
)

// RecommendPlatform picks a selling platform from the item category, its
// typical sold price and condition. eBay is the default.
func RecommendPlatform(category string, avgPrice decimal.Decimal, condition string) (models.Platform, string) {
	used := strings.ToLower(strings.TrimSpace(condition)) != "new"

	switch normalizeCategory(category) {
	case "electronics":
		if avgPrice.GreaterThan(electronicsThreshold) {
			return models.PlatformEbay, "Electronics over $100 typically perform well on eBay due to buyer trust and protection."
		}
	case "home & garden":
		if avgPrice.LessThan(localHomeThreshold) {
			return models.PlatformFacebook, "Bulky home items are often best sold locally to avoid shipping costs."
		}
	case "clothing":
		if used {
			return models.PlatformFacebook, "Used clothing often sells better locally without shipping costs."
		}
	case "collectibles":
		return models.PlatformEbay, "Collectibles reach the largest collector audience on eBay with auction options."
	case "books":
		return models.PlatformAmazon, "Books typically reach more targeted buyers on Amazon."
	}
	return models.PlatformEbay, "General recommendation based on market size and visibility."
}

// TargetPrice anchors on the sold mean, moving halfway toward the median
// when the median is higher. Undefined without sold data.
func TargetPrice(sold models.StatisticsSummary) decimal.NullDecimal {
	if !sold.Mean.Valid {
		return decimal.NullDecimal{}
	}
	target := sold.Mean.Decimal
	if sold.Median.Valid && sold.Median.Decimal.GreaterThan(target) {
		target = target.Add(sold.Median.Decimal).Div(decimal.NewFromInt(2))
	}
	return decimal.NewNullDecimal(target)
}

// RecommendPrice is the larger of a slightly discounted market target and
// the cost basis marked up 30%, rounded to cents.
func RecommendPrice(target decimal.NullDecimal, costBasis decimal.Decimal) decimal.NullDecimal {
	floor := decimal.Zero
	if costBasis.IsPositive() {
		floor = costBasis.Mul(minimumMarkup)
	}
	if !target.Valid {
		if floor.IsZero() {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(floor.Round(2))
	}
	return decimal.NewNullDecimal(decimal.Max(target.Decimal.Mul(competitiveDiscount), floor).Round(2))
}

// Recommend combines the platform and price recommendations for an item
func Recommend(category, condition string, sold models.StatisticsSummary, costBasis decimal.Decimal) models.Recommendation {
	avg := decimal.Zero
	if sold.Mean.Valid {
		avg = sold.Mean.Decimal
	}
	platform, reason := RecommendPlatform(category, avg, condition)
	target := TargetPrice(sold)

	return models.Recommendation{
		Platform:         platform,
		Reason:           reason,
		TargetPrice:      target,
		RecommendedPrice: RecommendPrice(target, costBasis),
	}
}
