package config

import (
	"reflect"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "DB_PATH", "CORS_ALLOWED_ORIGINS", "FRONTEND_DIST_PATH", "DEBUG",
	"EBAY_APP_ID", "EBAY_USE_MOCK", "EBAY_RESULTS_LIMIT", "EBAY_REQUESTS_PER_SECOND",
	"SEARCH_CACHE_SIZE", "SEARCH_CACHE_TTL", "SOLD_WINDOW_DAYS", "HISTOGRAM_BUCKET_WIDTH",
	"HISTOGRAM_BUCKETS", "ROI_PRECISION", "FEE_SCHEDULE_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" || cfg.DBPath != "./kwikflip.db" {
		t.Errorf("port/db = %s/%s", cfg.Port, cfg.DBPath)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://localhost:5173", "http://localhost:3000"}) {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.SoldWindowDays != 30 || cfg.HistogramBuckets != 10 || cfg.ROIPrecision != 2 {
		t.Errorf("window/buckets/precision = %d/%d/%d", cfg.SoldWindowDays, cfg.HistogramBuckets, cfg.ROIPrecision)
	}
	if !cfg.HistogramBucketWidth.IsZero() {
		t.Errorf("HistogramBucketWidth = %s, want 0", cfg.HistogramBucketWidth)
	}
	if cfg.SearchCacheTTL != 10*time.Minute {
		t.Errorf("SearchCacheTTL = %s, want 10m", cfg.SearchCacheTTL)
	}
	// No app id means demo data
	if !cfg.EbayUseMock {
		t.Error("EbayUseMock should be forced on without EBAY_APP_ID")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://kwikflip.app, https://staging.kwikflip.app,")
	t.Setenv("EBAY_APP_ID", "Kwik-Flip-PRD-123")
	t.Setenv("EBAY_RESULTS_LIMIT", "50")
	t.Setenv("EBAY_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("SEARCH_CACHE_TTL", "90s")
	t.Setenv("SOLD_WINDOW_DAYS", "0")
	t.Setenv("HISTOGRAM_BUCKET_WIDTH", "2.50")
	t.Setenv("ROI_PRECISION", "4")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://kwikflip.app", "https://staging.kwikflip.app"}) {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.EbayUseMock || cfg.EbayAppID != "Kwik-Flip-PRD-123" {
		t.Errorf("ebay = %s mock=%v, want live", cfg.EbayAppID, cfg.EbayUseMock)
	}
	if cfg.EbayResultsLimit != 50 || cfg.EbayRequestsPerSecond != 0.5 {
		t.Errorf("limit/rate = %d/%g", cfg.EbayResultsLimit, cfg.EbayRequestsPerSecond)
	}
	if cfg.SearchCacheTTL != 90*time.Second {
		t.Errorf("SearchCacheTTL = %s, want 90s", cfg.SearchCacheTTL)
	}
	if cfg.SoldWindowDays != 0 {
		t.Errorf("SoldWindowDays = %d, want 0", cfg.SoldWindowDays)
	}
	if cfg.HistogramBucketWidth.String() != "2.5" {
		t.Errorf("HistogramBucketWidth = %s, want 2.5", cfg.HistogramBucketWidth)
	}
	if cfg.ROIPrecision != 4 || !cfg.Debug {
		t.Errorf("precision/debug = %d/%v", cfg.ROIPrecision, cfg.Debug)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("EBAY_RESULTS_LIMIT", "lots")
	t.Setenv("SEARCH_CACHE_TTL", "forever")
	t.Setenv("DEBUG", "maybe")
	t.Setenv("HISTOGRAM_BUCKET_WIDTH", "wide")
	t.Setenv("EBAY_REQUESTS_PER_SECOND", "fast")

	cfg := Load()

	if cfg.EbayResultsLimit != 30 || cfg.SearchCacheTTL != 10*time.Minute || cfg.Debug {
		t.Errorf("fallbacks = %d/%s/%v", cfg.EbayResultsLimit, cfg.SearchCacheTTL, cfg.Debug)
	}
	if !cfg.HistogramBucketWidth.IsZero() || cfg.EbayRequestsPerSecond != 2 {
		t.Errorf("fallbacks = %s/%g", cfg.HistogramBucketWidth, cfg.EbayRequestsPerSecond)
	}
}
