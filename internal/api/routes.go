package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kwikflip/backend/internal/api/handlers"
	"github.com/kwikflip/backend/internal/metrics"
	"github.com/kwikflip/backend/internal/services"
)

// Services bundles what the router exposes
type Services struct {
	Market    *services.MarketService
	Recent    *services.RecentSearchService
	Calc      *services.ProfitCalculator
	Fees      *services.FeeSchedule
	Flips     *services.FlipStore
	Analytics *services.AnalyticsService
}

// RouterOptions carries the HTTP-facing settings
type RouterOptions struct {
	CORSOrigins      []string
	FrontendDistPath string
}

func SetupRouter(svc Services, opts RouterOptions) *gin.Engine {
	router := gin.Default()

	serveFrontend := opts.FrontendDistPath != "" && dirExists(opts.FrontendDistPath)

	// CORS configuration - allow origins from config or use defaults
	config := cors.DefaultConfig()
	if len(opts.CORSOrigins) > 0 {
		config.AllowOrigins = opts.CORSOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(metricsMiddleware())

	// Initialize handlers
	marketHandler := handlers.NewMarketHandler(svc.Market, svc.Recent)
	profitHandler := handlers.NewProfitHandler(svc.Calc, svc.Fees)
	flipHandler := handlers.NewFlipHandler(svc.Flips, svc.Analytics)

	// API routes
	api := router.Group("/api")
	{
		// Market research routes
		market := api.Group("/market")
		{
			market.GET("/search", marketHandler.Search)
			market.GET("/recent", marketHandler.Recent)
		}

		api.POST("/profit", profitHandler.Compute)
		api.POST("/profit/recommendation", profitHandler.Recommend)
		api.GET("/fees", profitHandler.Fees)

		// Flip log routes
		flips := api.Group("/flips")
		{
			flips.GET("", flipHandler.ListFlips)
			flips.POST("", flipHandler.CreateFlip)
			flips.GET("/analytics", flipHandler.GetAnalytics)
			flips.GET("/export", flipHandler.ExportFlips)
			flips.GET("/:id", flipHandler.GetFlip)
			flips.PUT("/:id", flipHandler.UpdateFlip)
			flips.DELETE("/:id", flipHandler.DeleteFlip)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve frontend static files
	if serveFrontend {
		indexPath := filepath.Join(opts.FrontendDistPath, "index.html")

		router.Static("/assets", filepath.Join(opts.FrontendDistPath, "assets"))
		router.StaticFile("/favicon.ico", filepath.Join(opts.FrontendDistPath, "favicon.ico"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

// metricsMiddleware records request counts and latency by route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
