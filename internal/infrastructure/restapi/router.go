package restapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/configloader"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/logger"
)

// SetupRouter configures and returns the gin engine.
func SetupRouter(reportHandler *ReportHandler, cfg *configloader.Config) *gin.Engine {
	router := gin.New()
	router.Use(slogRequestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Payment"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.Service.Name,
			"version": cfg.Service.Version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(PaymentRequired(cfg.Payment))
	{
		v1.POST("/report", reportHandler.CreateReportHandler)
	}

	return router
}

// slogRequestLogger logs each request through the global slog logger.
func slogRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
