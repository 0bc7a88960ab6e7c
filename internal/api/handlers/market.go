package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
	"github.com/kwikflip/backend/internal/services"
)

type MarketHandler struct {
	market *services.MarketService
	recent *services.RecentSearchService
}

func NewMarketHandler(market *services.MarketService, recent *services.RecentSearchService) *MarketHandler {
	return &MarketHandler{
		market: market,
		recent: recent,
	}
}

// Search researches a query against active and sold listings
func (h *MarketHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	filter := models.ListingFilter{
		Condition:    c.Query("condition"),
		ExcludeWords: models.ParseExcludeWords(c.Query("exclude")),
	}

	var err error
	if filter.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		respondError(c, err)
		return
	}
	if filter.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		respondError(c, err)
		return
	}
	if filter.MinPrice.Valid && filter.MaxPrice.Valid && filter.MinPrice.Decimal.GreaterThan(filter.MaxPrice.Decimal) {
		respondError(c, &services.ValidationError{Field: "min_price", Reason: "must not exceed max_price"})
		return
	}

	if raw := c.Query("days_sold"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			respondError(c, &services.ValidationError{Field: "days_sold", Reason: "must be a non-negative integer"})
			return
		}
		filter.SoldWithinDays = days
	}

	cost, err := queryDecimal(c, "cost")
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.market.Analyze(c.Request.Context(), services.MarketQuery{
		Query:           query,
		Category:        c.Query("category"),
		Filter:          filter,
		CostBasis:       cost.Decimal,
		IncludeListings: c.Query("listings") != "false",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Recent returns the latest research queries
func (h *MarketHandler) Recent(c *gin.Context) {
	searches, err := h.recent.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

func queryDecimal(c *gin.Context, key string) (decimal.NullDecimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, &services.ValidationError{Field: key, Reason: "must be a non-negative amount"}
	}
	return decimal.NewNullDecimal(d), nil
}
