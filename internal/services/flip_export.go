package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/kwikflip/backend/internal/models"
)

// FlipExportColumns is the header row of a flip export
var FlipExportColumns = []string{
	"id",
	"item_description",
	"category",
	"platform",
	"status",
	"purchase_date",
	"purchase_price",
	"sale_or_estimate_price",
	"fees",
	"net_profit",
	"roi_percent",
	"notes",
	"created_at",
	"updated_at",
}

// WriteFlipsCSV writes records as CSV with a header row.
// An undefined ROI is written as an empty cell.
func WriteFlipsCSV(w io.Writer, records []models.FlipRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FlipExportColumns); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, r := range records {
		roi := ""
		if r.ROIPercent.Valid {
			roi = r.ROIPercent.Decimal.String()
		}
		row := []string{
			r.ID,
			r.ItemDescription,
			r.Category,
			string(r.Platform),
			string(r.Status),
			r.PurchaseDate.UTC().Format("2006-01-02"),
			r.PurchasePrice.StringFixed(2),
			r.SaleOrEstimatePrice.StringFixed(2),
			r.Fees.StringFixed(2),
			r.NetProfit.StringFixed(2),
			roi,
			r.Notes,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write flip %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFileName names an export taken at t
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("flips_export_%s.csv", t.UTC().Format("20060102_150405"))
}
