package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwikflip/backend/internal/api"
	"github.com/kwikflip/backend/internal/config"
	"github.com/kwikflip/backend/internal/database"
	"github.com/kwikflip/backend/internal/services"
)

func main() {
	cfg := config.Load()

	// Money is rendered as JSON numbers for the frontend charts
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := database.Open(cfg.DBPath, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	fees, err := services.LoadFeeSchedule(cfg.FeeSchedulePath)
	if err != nil {
		log.Fatalf("Failed to load fee schedule: %v", err)
	}
	if cfg.FeeSchedulePath != "" {
		log.Printf("Loaded fee schedule overrides from %s", cfg.FeeSchedulePath)
	}

	// Search gateway: live Finding API or generated demo data
	var gateway services.SearchGateway
	if cfg.EbayUseMock {
		log.Println("Using mock eBay gateway")
		gateway = services.NewMockGateway(cfg.EbayResultsLimit)
	} else {
		gateway = services.NewEbayService(services.EbayOptions{
			AppID:             cfg.EbayAppID,
			ResultsLimit:      cfg.EbayResultsLimit,
			RequestsPerSecond: cfg.EbayRequestsPerSecond,
			CacheSize:         cfg.SearchCacheSize,
			CacheTTL:          cfg.SearchCacheTTL,
		})
		log.Printf("eBay Finding API enabled (limit %d, %.1f req/s)", cfg.EbayResultsLimit, cfg.EbayRequestsPerSecond)
	}

	calc := services.NewProfitCalculator(cfg.ROIPrecision)
	recent := services.NewRecentSearchService(db)
	market := services.NewMarketService(gateway, fees, recent, services.MarketOptions{
		SoldWindowDays: cfg.SoldWindowDays,
		ResultsLimit:   cfg.EbayResultsLimit,
		Stats: services.StatsOptions{
			BucketWidth: cfg.HistogramBucketWidth,
			BucketCount: cfg.HistogramBuckets,
		},
	})
	flips := services.NewFlipStore(db, calc)
	analytics := services.NewAnalyticsService(flips)

	// Seed the flip gauges so /metrics is populated before the first dashboard load
	if _, err := analytics.Summarize(context.Background(), "all"); err != nil {
		log.Printf("Failed to compute initial flip metrics: %v", err)
	}

	router := api.SetupRouter(api.Services{
		Market:    market,
		Recent:    recent,
		Calc:      calc,
		Fees:      fees,
		Flips:     flips,
		Analytics: analytics,
	}, api.RouterOptions{
		CORSOrigins:      cfg.CORSOrigins,
		FrontendDistPath: cfg.FrontendDistPath,
	})

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("Server exited")
}
