package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
	"github.com/kwikflip/backend/internal/services"
)

type ProfitHandler struct {
	calc *services.ProfitCalculator
	fees *services.FeeSchedule
}

func NewProfitHandler(calc *services.ProfitCalculator, fees *services.FeeSchedule) *ProfitHandler {
	return &ProfitHandler{
		calc: calc,
		fees: fees,
	}
}

// ProfitRequest is the body of POST /api/profit.
// When Fees is omitted they are estimated from the platform and category
// on the item price plus shipping revenue.
type ProfitRequest struct {
	CostBasis       decimal.Decimal  `json:"cost_basis"`
	Fees            *decimal.Decimal `json:"fees"`
	ReferencePrice  decimal.Decimal  `json:"reference_price"`
	ShippingRevenue decimal.Decimal  `json:"shipping_revenue"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	AdditionalCosts decimal.Decimal  `json:"additional_costs"`
	Platform        models.Platform  `json:"platform"`
	Category        string           `json:"category"`
}

// ProfitResponse echoes the fees used alongside the result
type ProfitResponse struct {
	models.ProfitResult
	Revenue       decimal.Decimal `json:"revenue"`
	Fees          decimal.Decimal `json:"fees"`
	FeesEstimated bool            `json:"fees_estimated"`
	ROIDefined    bool            `json:"roi_defined"`
}

// RecommendationRequest is the body of POST /api/profit/recommendation.
// SoldMean and SoldMedian come from a market report's sold summary.
type RecommendationRequest struct {
	Category   string              `json:"category"`
	Condition  string              `json:"condition"`
	CostBasis  decimal.Decimal     `json:"cost_basis"`
	SoldMean   decimal.NullDecimal `json:"sold_mean"`
	SoldMedian decimal.NullDecimal `json:"sold_median"`
}

// Compute calculates net profit and ROI for a prospective flip
func (h *ProfitHandler) Compute(c *gin.Context) {
	var req ProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.ProfitInput{
		CostBasis:       req.CostBasis,
		ReferencePrice:  req.ReferencePrice,
		ShippingRevenue: req.ShippingRevenue,
		ShippingCost:    req.ShippingCost,
		AdditionalCosts: req.AdditionalCosts,
	}
	resp := ProfitResponse{Revenue: in.Revenue()}
	if req.Fees != nil {
		resp.Fees = *req.Fees
	} else {
		platform := models.PlatformEbay
		if req.Platform != "" {
			platform = models.NormalizePlatform(string(req.Platform))
		}
		if !platform.Valid() {
			respondError(c, &services.ValidationError{Field: "platform", Reason: "unknown platform"})
			return
		}
		resp.Fees = h.fees.EstimateFees(platform, req.Category, in.Revenue())
		resp.FeesEstimated = true
	}
	in.Fees = resp.Fees

	result, err := h.calc.Calculate(in)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.ProfitResult = result
	resp.ROIDefined = result.ROIDefined()

	c.JSON(http.StatusOK, resp)
}

// Recommend suggests a platform and listing price from sold statistics
func (h *ProfitHandler) Recommend(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CostBasis.IsNegative() {
		respondError(c, &services.ValidationError{Field: "cost_basis", Reason: "must not be negative", Cause: services.ErrInvalidInput})
		return
	}

	sold := models.StatisticsSummary{Mean: req.SoldMean, Median: req.SoldMedian}
	if !sold.Mean.Valid {
		// a median alone is still a usable anchor
		sold.Mean = sold.Median
	}

	c.JSON(http.StatusOK, services.Recommend(req.Category, req.Condition, sold, req.CostBasis))
}

// Fees returns the fee schedule used for estimates
func (h *ProfitHandler) Fees(c *gin.Context) {
	c.JSON(http.StatusOK, h.fees)
}
