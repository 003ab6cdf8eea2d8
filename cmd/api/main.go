package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/config"
	"github.com/lucasmtl/incorpora-api/internal/handler"
	"github.com/lucasmtl/incorpora-api/internal/infra/cache"
	"github.com/lucasmtl/incorpora-api/internal/infra/client"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/infra/resilience"
	"github.com/lucasmtl/incorpora-api/internal/infra/supabase"
	"github.com/lucasmtl/incorpora-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("trailing_months", cfg.TrailingMonths),
		zap.Int("projection_months", cfg.ProjectionMonths),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "incorpora-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	reportCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		resilienceCfg,
		logger,
	)
	agentClient := client.NewAgentClient(httpClient, cfg.AgentAPIURL, resilience.NewCircuitBreaker("agent"), resilienceCfg)

	// --- Services ---
	contractsSvc := service.NewContractsService(supabaseClient, supabaseClient, reportCache, metrics, logger)
	reportsSvc := service.NewReportsService(
		supabaseClient,
		supabaseClient,
		supabaseClient,
		reportCache,
		metrics,
		logger,
		cfg.TrailingMonths,
		cfg.ProjectionMonths,
	)
	budgetsSvc := service.NewBudgetsService(supabaseClient, supabaseClient, metrics, logger)
	narrativeSvc := service.NewNarrativeService(reportsSvc, budgetsSvc, agentClient, reportCache, metrics, logger)
	authSvc := service.NewAuthService(supabaseClient, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Contracts: contractsSvc,
		Reports:   reportsSvc,
		Budgets:   budgetsSvc,
		Narrative: narrativeSvc,
		Auth:      authSvc,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
