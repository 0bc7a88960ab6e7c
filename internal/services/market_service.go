package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/metrics"
	"github.com/kwikflip/backend/internal/models"
)

// DefaultSoldWindowDays limits sold comparables to recent sales
const DefaultSoldWindowDays = 30

// MarketOptions configures how research queries are summarized
type MarketOptions struct {
	SoldWindowDays int // 0 disables the window
	ResultsLimit   int
	Stats          StatsOptions
}

// MarketQuery is one research request
type MarketQuery struct {
	Query           string
	Category        string
	Filter          models.ListingFilter
	CostBasis       decimal.Decimal // optional, raises the recommended price floor
	IncludeListings bool
}

// MarketService turns gateway results into a market report
type MarketService struct {
	gateway SearchGateway
	fees    *FeeSchedule
	recent  *RecentSearchService
	opts    MarketOptions
	now     func() time.Time
}

// NewMarketService creates a new market service. recent may be nil.
func NewMarketService(gateway SearchGateway, fees *FeeSchedule, recent *RecentSearchService, opts MarketOptions) *MarketService {
	if fees == nil {
		fees = DefaultFeeSchedule()
	}
	if opts.SoldWindowDays < 0 {
		opts.SoldWindowDays = 0
	}
	return &MarketService{
		gateway: gateway,
		fees:    fees,
		recent:  recent,
		opts:    opts,
		now:     time.Now,
	}
}

// Analyze searches active and sold listings and summarizes both.
// Gateway errors are returned unchanged.
func (s *MarketService) Analyze(ctx context.Context, q MarketQuery) (models.MarketReport, error) {
	query := strings.TrimSpace(q.Query)
	if query == "" {
		return models.MarketReport{}, &ValidationError{Field: "q", Reason: "is required"}
	}

	filter := q.Filter
	if filter.SoldWithinDays <= 0 {
		filter.SoldWithinDays = s.opts.SoldWindowDays
	}

	active, err := s.gateway.Search(ctx, SearchRequest{Query: query, Status: models.ListingActive, Filter: filter, Limit: s.opts.ResultsLimit})
	if err != nil {
		return models.MarketReport{}, err
	}
	sold, err := s.gateway.Search(ctx, SearchRequest{Query: query, Status: models.ListingSold, Filter: filter, Limit: s.opts.ResultsLimit})
	if err != nil {
		return models.MarketReport{}, err
	}

	now := s.now()
	active = applyFilter(active, filter, now)
	sold = applyFilter(sold, filter, now)

	activeStats := Summarize(active, s.opts.Stats)
	soldStats := Summarize(sold, s.opts.Stats)

	report := models.MarketReport{
		Query:              query,
		Category:           q.Category,
		Active:             activeStats,
		Sold:               soldStats,
		SellThroughPercent: SellThroughRate(active, sold),
		PriceTrendPercent:  PriceTrend(activeStats, soldStats),
		ReferencePrice:     soldStats.Median,
		EstimatedFeeRate:   s.fees.EbayRate(q.Category),
		SoldWindowDays:     filter.SoldWithinDays,
		Recommendation:     Recommend(q.Category, filter.Condition, soldStats, q.CostBasis),
	}
	if q.IncludeListings {
		report.Listings = append(append([]models.Listing{}, active...), sold...)
	}

	metrics.MarketAnalysesTotal.Inc()

	if s.recent != nil {
		if err := s.recent.Record(ctx, query); err != nil {
			log.Printf("Warning: failed to record recent search %q: %v", query, err)
		}
	}

	return report, nil
}

// applyFilter returns the listings passing the filter in a new slice
func applyFilter(in []models.Listing, f models.ListingFilter, now time.Time) []models.Listing {
	out := make([]models.Listing, 0, len(in))
	for _, l := range in {
		if !f.Matches(l) || !f.SoldWithin(l, now) {
			continue
		}
		out = append(out, l)
	}
	return out
}
