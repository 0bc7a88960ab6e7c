package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/metrics"
	"github.com/kwikflip/backend/internal/models"
)

// AnalyticsService aggregates the flip log for the dashboard
type AnalyticsService struct {
	store *FlipStore
	now   func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(store *FlipStore) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// periodStart maps a period name onto the earliest purchase date it covers.
// The zero time means no bound.
func periodStart(period string, now time.Time) (string, time.Time) {
	switch period {
	case "week":
		return period, now.AddDate(0, 0, -7)
	case "month":
		return period, now.AddDate(0, -1, 0)
	case "3month":
		return period, now.AddDate(0, -3, 0)
	case "year":
		return period, now.AddDate(-1, 0, 0)
	default:
		return "all", time.Time{}
	}
}

// Summarize aggregates flips purchased within the period
func (s *AnalyticsService) Summarize(ctx context.Context, period string) (models.FlipAnalytics, error) {
	now := s.now()
	period, start := periodStart(period, now)

	filter := models.FlipFilter{}
	if !start.IsZero() {
		filter.From = &start
	}
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return models.FlipAnalytics{}, err
	}

	analytics := Aggregate(records, now)
	analytics.Period = period

	if period == "all" {
		byStatus := make(map[string]int, len(analytics.ByStatus))
		for status, n := range analytics.ByStatus {
			byStatus[string(status)] = n
		}
		metrics.UpdateFlipMetrics(byStatus, analytics.TotalProfit.InexactFloat64())
	}

	return analytics, nil
}

// Aggregate computes analytics over records. Averages skip flips whose ROI is undefined.
func Aggregate(records []models.FlipRecord, now time.Time) models.FlipAnalytics {
	analytics := models.FlipAnalytics{
		Period:      "all",
		TotalFlips:  len(records),
		TotalProfit:   TotalProfit(records),
		TotalInvested: decimal.Zero,
		ByPlatform:    map[models.Platform]models.PlatformBreakdown{},
		ByStatus:      map[models.FlipStatus]int{},
		ByCategory:    map[string]models.CategoryBreakdown{},
		ProfitSeries:  []models.DailyProfit{},
	}
	for _, status := range models.AllFlipStatuses() {
		analytics.ByStatus[status] = 0
	}

	recentCutoff := now.AddDate(0, 0, -30)
	roiSum := decimal.Zero
	roiCount := 0
	platformROI := map[models.Platform]decimal.Decimal{}
	platformROICount := map[models.Platform]int{}
	dailyProfit := map[string]decimal.Decimal{}

	for _, r := range records {
		analytics.ByStatus[r.Status]++
		analytics.TotalInvested = analytics.TotalInvested.Add(r.PurchasePrice)

		category := r.Category
		if category == "" {
			category = models.UncategorizedLabel
		}
		cat := analytics.ByCategory[category]
		cat.Flips++
		cat.TotalProfit = cat.TotalProfit.Add(r.NetProfit)
		analytics.ByCategory[category] = cat

		day := r.PurchaseDate.UTC().Format("2006-01-02")
		dailyProfit[day] = dailyProfit[day].Add(r.NetProfit)

		if r.Status == models.FlipSold {
			analytics.SoldFlips++
		}
		if !r.PurchaseDate.Before(recentCutoff) {
			analytics.RecentFlips++
		}

		breakdown := analytics.ByPlatform[r.Platform]
		breakdown.Flips++
		breakdown.TotalProfit = breakdown.TotalProfit.Add(r.NetProfit)
		analytics.ByPlatform[r.Platform] = breakdown

		if r.ROIPercent.Valid {
			roi := r.ROIPercent.Decimal
			roiSum = roiSum.Add(roi)
			roiCount++
			platformROI[r.Platform] = platformROI[r.Platform].Add(roi)
			platformROICount[r.Platform]++
			if !analytics.BestROI.Valid || roi.GreaterThan(analytics.BestROI.Decimal) {
				analytics.BestROI = decimal.NewNullDecimal(roi)
			}
		}
	}

	if len(records) > 0 {
		avg := analytics.TotalProfit.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
		analytics.AverageProfit = decimal.NewNullDecimal(avg)
	}
	if roiCount > 0 {
		analytics.AverageROI = decimal.NewNullDecimal(roiSum.Div(decimal.NewFromInt(int64(roiCount))).Round(2))
	}
	for platform, n := range platformROICount {
		breakdown := analytics.ByPlatform[platform]
		breakdown.AverageROI = decimal.NewNullDecimal(platformROI[platform].Div(decimal.NewFromInt(int64(n))).Round(2))
		analytics.ByPlatform[platform] = breakdown
	}

	analytics.ProfitSeries = profitSeries(dailyProfit)

	return analytics
}

// profitSeries orders daily totals by date and accumulates them
func profitSeries(daily map[string]decimal.Decimal) []models.DailyProfit {
	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	// YYYY-MM-DD sorts chronologically as a string
	sort.Strings(days)

	series := make([]models.DailyProfit, 0, len(days))
	running := decimal.Zero
	for _, day := range days {
		running = running.Add(daily[day])
		series = append(series, models.DailyProfit{Date: day, Profit: daily[day], Cumulative: running})
	}
	return series
}
