package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
)

// DefaultBucketCount is the number of histogram buckets used when no fixed width is configured
const DefaultBucketCount = 10

// MaxBucketCount bounds the histogram size. A fixed width that would need
// more buckets is widened to span/MaxBucketCount.
const MaxBucketCount = 200

var hundred = decimal.NewFromInt(100)

// StatsOptions controls the price distribution.
// BucketWidth takes precedence when positive; otherwise BucketCount equal-width buckets are used.
type StatsOptions struct {
	BucketWidth decimal.Decimal
	BucketCount int
}

// Summarize reduces listings to price statistics. The result does not depend
// on the order of the input and the input slice is left untouched.
func Summarize(listings []models.Listing, opts StatsOptions) models.StatisticsSummary {
	summary := models.StatisticsSummary{
		Count:        len(listings),
		TotalValue:   decimal.Zero,
		Distribution: []models.PriceBucket{},
	}
	if len(listings) == 0 {
		return summary
	}

	prices := make([]decimal.Decimal, len(listings))
	sum := decimal.Zero
	sumTotal := decimal.Zero
	for i, l := range listings {
		prices[i] = l.Price
		sum = sum.Add(l.Price)
		sumTotal = sumTotal.Add(l.Price).Add(l.Shipping)
		summary.TotalWatchers += l.Watchers
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })

	n := decimal.NewFromInt(int64(len(prices)))
	minPrice := prices[0]
	maxPrice := prices[len(prices)-1]

	summary.Min = decimal.NewNullDecimal(minPrice)
	summary.Max = decimal.NewNullDecimal(maxPrice)
	summary.Mean = decimal.NewNullDecimal(sum.Div(n))
	summary.Median = decimal.NewNullDecimal(median(prices))
	summary.TotalValue = sum
	summary.MeanTotal = decimal.NewNullDecimal(sumTotal.Div(n))
	summary.Distribution = distribution(prices, opts)

	return summary
}

// median expects sorted, non-empty prices
func median(sorted []decimal.Decimal) decimal.Decimal {
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
	}
	return sorted[mid]
}

// distribution buckets sorted prices over [min, max]. Empty buckets are kept
// so a rendered histogram has no gaps.
func distribution(sorted []decimal.Decimal, opts StatsOptions) []models.PriceBucket {
	minPrice := sorted[0]
	maxPrice := sorted[len(sorted)-1]
	span := maxPrice.Sub(minPrice)

	if span.IsZero() {
		return []models.PriceBucket{{Lower: minPrice, Upper: maxPrice, Count: len(sorted)}}
	}

	var width decimal.Decimal
	var count int
	fixed := opts.BucketWidth.IsPositive()
	if fixed {
		width = opts.BucketWidth
		needed := span.Div(width).Ceil()
		if needed.GreaterThan(decimal.NewFromInt(MaxBucketCount)) {
			fixed = false
			count = MaxBucketCount
		} else {
			count = int(needed.IntPart())
			if count < 1 {
				count = 1
			}
		}
	} else {
		count = opts.BucketCount
		if count <= 0 {
			count = DefaultBucketCount
		}
		if count > MaxBucketCount {
			count = MaxBucketCount
		}
	}
	if !fixed {
		width = span.Div(decimal.NewFromInt(int64(count)))
	}

	buckets := make([]models.PriceBucket, count)
	for i := range buckets {
		buckets[i].Lower = minPrice.Add(width.Mul(decimal.NewFromInt(int64(i))))
		buckets[i].Upper = minPrice.Add(width.Mul(decimal.NewFromInt(int64(i + 1))))
	}
	if !fixed {
		// avoid a rounding residue on the last edge
		buckets[count-1].Upper = maxPrice
	}

	countDec := decimal.NewFromInt(int64(count))
	for _, p := range sorted {
		offset := p.Sub(minPrice)
		var idx int
		if fixed {
			idx = int(offset.Div(width).Floor().IntPart())
		} else {
			idx = int(offset.Mul(countDec).Div(span).Floor().IntPart())
		}
		if idx >= count {
			idx = count - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}

	return buckets
}

// SellThroughRate is the share of listings that sold, as a percentage.
// Zero when there are no listings at all.
func SellThroughRate(active, sold []models.Listing) decimal.Decimal {
	total := len(active) + len(sold)
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(len(sold))).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

// PriceTrend compares the mean asking price with the mean sold price, as a
// percentage of the sold mean. Undefined when either side has no data.
func PriceTrend(active, sold models.StatisticsSummary) decimal.NullDecimal {
	if !active.Mean.Valid || !sold.Mean.Valid || sold.Mean.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	trend := active.Mean.Decimal.Sub(sold.Mean.Decimal).
		Div(sold.Mean.Decimal).
		Mul(hundred).
		Round(2)
	return decimal.NewNullDecimal(trend)
}
