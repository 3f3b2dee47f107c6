package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/service"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/adviceclient"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/configloader"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/network/client"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/network/definition"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/priceclient"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/infrastructure/restapi"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/logger"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/metrics"
)

const shutdownGracePeriod = 5 * time.Second

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yml"
	}
	cfg, err := configloader.Load(configPath)
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.String("path", configPath), zap.Error(err))
	}

	// Route the global slog logger through zap so everything shares one sink.
	slogHandler := slogzap.Option{
		Level:  slogLevelFromConfig(cfg.Logging.Level),
		Logger: zapLogger,
	}.NewZapHandler()
	logger.InitWithHandler(slogHandler)
	appLogger := logger.NewSlogAdapter()

	logger.Info("Wallet exposure advisor starting",
		"service", cfg.Service.Name, "version", cfg.Service.Version, "config", configPath)

	metrics.MustRegister()

	chainProvider := definition.NewProvider(appLogger)
	sourceProvider := client.NewSourceProvider(zapLogger,
		time.Duration(cfg.Performance.RPCCallTimeoutSeconds)*time.Second)

	dexScreenerClient := priceclient.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.Pricing.MaxTokensPerBatchRequest,
	)
	priceSource := priceclient.NewCachedPriceSource(
		dexScreenerClient,
		appLogger,
		time.Duration(cfg.Pricing.CacheTTLMinutes)*time.Minute,
		cfg.Pricing.RequestsPerSecond,
		cfg.Pricing.MaxTokensPerBatchRequest,
	)

	adviceTimeout := time.Duration(cfg.Advice.RequestTimeoutMillis) * time.Millisecond
	var advisor *service.Advisor
	if cfg.Advice.APIKey == "" {
		logger.Warn("No advice API key configured, reports will use rule-based advice only")
		advisor = service.NewAdvisor(nil, appLogger, adviceTimeout)
	} else {
		adviceGen := adviceclient.NewClient(cfg.Advice.BaseURL, cfg.Advice.APIKey, cfg.Advice.Model, adviceTimeout, zapLogger)
		advisor = service.NewAdvisor(adviceGen, appLogger, adviceTimeout)
	}

	reportService := service.NewReportService(
		chainProvider,
		sourceProvider,
		priceSource,
		advisor,
		appLogger,
		cfg.Performance.MaxConcurrentRoutines,
	)

	reportHandler := restapi.NewReportHandler(reportService, chainProvider, appLogger, cfg)
	router := restapi.SetupRouter(reportHandler, cfg)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

func slogLevelFromConfig(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
