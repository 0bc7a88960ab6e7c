package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration loaded from environment variables
type Config struct {
	Port             string
	DBPath           string
	CORSOrigins      []string
	FrontendDistPath string
	Debug            bool

	EbayAppID             string
	EbayUseMock           bool
	EbayResultsLimit      int
	EbayRequestsPerSecond float64
	SearchCacheSize       int
	SearchCacheTTL        time.Duration

	SoldWindowDays       int
	HistogramBucketWidth decimal.Decimal
	HistogramBuckets     int
	ROIPrecision         int
	FeeSchedulePath      string
}

// Load reads the .env file if present and returns a populated Config
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "./kwikflip.db"),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		FrontendDistPath: getEnv("FRONTEND_DIST_PATH", ""),
		Debug:            getEnvBool("DEBUG", false),

		EbayAppID:             getEnv("EBAY_APP_ID", ""),
		EbayUseMock:           getEnvBool("EBAY_USE_MOCK", false),
		EbayResultsLimit:      getEnvInt("EBAY_RESULTS_LIMIT", 30),
		EbayRequestsPerSecond: getEnvFloat("EBAY_REQUESTS_PER_SECOND", 2),
		SearchCacheSize:       getEnvInt("SEARCH_CACHE_SIZE", 128),
		SearchCacheTTL:        getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),

		SoldWindowDays:       getEnvInt("SOLD_WINDOW_DAYS", 30),
		HistogramBucketWidth: getEnvDecimal("HISTOGRAM_BUCKET_WIDTH", decimal.Zero),
		HistogramBuckets:     getEnvInt("HISTOGRAM_BUCKETS", 10),
		ROIPrecision:         getEnvInt("ROI_PRECISION", 2),
		FeeSchedulePath:      getEnv("FEE_SCHEDULE_PATH", ""),
	}

	// Without an app id the Finding API rejects every call
	if cfg.EbayAppID == "" && !cfg.EbayUseMock {
		log.Println("EBAY_APP_ID not set, using mock eBay data")
		cfg.EbayUseMock = true
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := getEnv(key, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Invalid %s=%q, using %g", key, v, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := getEnv(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Invalid %s=%q, using %t", key, v, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := getEnv(key, ""); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
	}
	return fallback
}
