package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kwikflip/backend/internal/models"
	"github.com/kwikflip/backend/internal/services"
)

type FlipHandler struct {
	store     *services.FlipStore
	analytics *services.AnalyticsService
}

func NewFlipHandler(store *services.FlipStore, analytics *services.AnalyticsService) *FlipHandler {
	return &FlipHandler{
		store:     store,
		analytics: analytics,
	}
}

// createFlipBody accepts purchase_date as a plain date
type createFlipBody struct {
	models.CreateFlipRequest
	PurchaseDate string `json:"purchase_date"`
}

type updateFlipBody struct {
	models.UpdateFlipRequest
	PurchaseDate *string `json:"purchase_date"`
}

// parseFlipFilter reads the status, platform, from and to query parameters
func parseFlipFilter(c *gin.Context) (models.FlipFilter, error) {
	filter := models.FlipFilter{}

	if status := c.Query("status"); status != "" {
		filter.Status = models.NormalizeStatus(status)
		if !filter.Status.Valid() {
			return filter, &services.ValidationError{Field: "status", Reason: "unknown status"}
		}
	}
	if platform := c.Query("platform"); platform != "" {
		filter.Platform = models.NormalizePlatform(platform)
		if !filter.Platform.Valid() {
			return filter, &services.ValidationError{Field: "platform", Reason: "unknown platform"}
		}
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate("from", raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate("to", raw)
		if err != nil {
			return filter, err
		}
		// A bare date covers the whole day
		if len(raw) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}
	return filter, nil
}

func (h *FlipHandler) ListFlips(c *gin.Context) {
	filter, err := parseFlipFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	flips, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flips":        flips,
		"count":        len(flips),
		"total_profit": services.TotalProfit(flips),
	})
}

// ExportFlips downloads the filtered flip log as CSV
func (h *FlipHandler) ExportFlips(c *gin.Context) {
	filter, err := parseFlipFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	flips, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteFlipsCSV(&buf, flips); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFileName(time.Now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *FlipHandler) CreateFlip(c *gin.Context) {
	var body createFlipBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := body.CreateFlipRequest
	if body.PurchaseDate != "" {
		date, err := parseDate("purchase_date", body.PurchaseDate)
		if err != nil {
			respondError(c, err)
			return
		}
		req.PurchaseDate = date
	}

	flip, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flip)
}

func (h *FlipHandler) GetFlip(c *gin.Context) {
	flip, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flip)
}

func (h *FlipHandler) UpdateFlip(c *gin.Context) {
	var body updateFlipBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := body.UpdateFlipRequest
	if body.PurchaseDate != nil {
		date, err := parseDate("purchase_date", *body.PurchaseDate)
		if err != nil {
			respondError(c, err)
			return
		}
		req.PurchaseDate = &date
	}

	flip, err := h.store.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flip)
}

// DeleteFlip is idempotent; unknown ids also return 204
func (h *FlipHandler) DeleteFlip(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAnalytics summarizes the flip log for a period (week, month, 3month, year, all)
func (h *FlipHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.analytics.Summarize(c.Request.Context(), c.DefaultQuery("period", "all"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
