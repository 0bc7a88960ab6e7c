package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/models"
)

func TestWriteFlipsCSV(t *testing.T) {
	created := time.Date(2026, 10, 2, 9, 30, 0, 0, time.UTC)
	records := []models.FlipRecord{
		{
			ID:                  "a",
			ItemDescription:     "Switch, OLED",
			Category:            "Electronics",
			Notes:               `said "mint"`,
			Platform:            models.PlatformEbay,
			Status:              models.FlipSold,
			PurchaseDate:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			PurchasePrice:       dec("20"),
			SaleOrEstimatePrice: dec("35"),
			Fees:                dec("3"),
			NetProfit:           dec("12"),
			ROIPercent:          decimal.NewNullDecimal(dec("60")),
			CreatedAt:           created,
			UpdatedAt:           created,
		},
		{
			ID:                  "b",
			ItemDescription:     "Free lamp",
			Platform:            models.PlatformCraigslist,
			Status:              models.FlipListed,
			PurchaseDate:        time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
			SaleOrEstimatePrice: dec("15"),
			NetProfit:           dec("15"),
			CreatedAt:           created,
			UpdatedAt:           created,
		},
	}

	var buf bytes.Buffer
	if err := WriteFlipsCSV(&buf, records); err != nil {
		t.Fatalf("WriteFlipsCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(FlipExportColumns, ",") {
		t.Errorf("header = %v", rows[0])
	}

	first := rows[1]
	if first[1] != "Switch, OLED" || first[11] != `said "mint"` {
		t.Errorf("quoted fields = %q/%q", first[1], first[11])
	}
	if first[5] != "2026-10-01" || first[6] != "20.00" || first[9] != "12.00" || first[10] != "60" {
		t.Errorf("first row = %v", first)
	}
	if first[12] != "2026-10-02T09:30:00Z" {
		t.Errorf("created_at = %s", first[12])
	}

	// zero cost basis leaves ROI blank
	if second := rows[2]; second[10] != "" || second[6] != "0.00" {
		t.Errorf("second row = %v", second)
	}
}

func TestWriteFlipsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFlipsCSV(&buf, nil); err != nil {
		t.Fatalf("WriteFlipsCSV failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(FlipExportColumns, ",") {
		t.Errorf("empty export = %q, want header only", got)
	}
}

func TestExportFileName(t *testing.T) {
	got := ExportFileName(time.Date(2026, 10, 14, 8, 5, 3, 0, time.UTC))
	if got != "flips_export_20261014_080503.csv" {
		t.Errorf("ExportFileName = %s", got)
	}
}
