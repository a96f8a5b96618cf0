package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/chat"
	"github.com/enerlink/parceiros-api-go/internal/config"
	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/handler"
	"github.com/enerlink/parceiros-api-go/internal/infra/cache"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
	"github.com/enerlink/parceiros-api-go/internal/infra/resilience"
	"github.com/enerlink/parceiros-api-go/internal/infra/supabase"
	"github.com/enerlink/parceiros-api-go/internal/notify"
	"github.com/enerlink/parceiros-api-go/internal/service"

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
		zap.String("chat_mode", cfg.ChatMode),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "parceiros-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Backend client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Notifications ---
	events := notify.NewRecorder(256)
	notifier := notify.NewTee(
		notify.NewZapNotifier(logger),
		events,
		notify.NewMetricsSink(metrics.IncrNotification),
	)

	// --- Services ---
	portalSvc := service.NewPortalService(service.Gateways{
		Contacts:    supabase.NewContactsGateway(supabaseClient),
		Contracts:   supabase.NewContractsGateway(supabaseClient),
		Requests:    supabase.NewRequestsGateway(supabaseClient),
		Occurrences: supabase.NewOccurrencesGateway(supabaseClient),
		Users:       supabase.NewUsersGateway(supabaseClient),
		Simulations: supabase.NewSimulationsGateway(supabaseClient),
	}, notifier, logger)

	authSvc := service.NewAuthService(supabaseClient, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	filesCache := cache.New[[]domain.StoredFile](cfg.CacheTTL)
	filesSvc := service.NewFilesService(supabaseClient, cfg.FilesBucket, filesCache, metrics, logger)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var channel chat.Channel
	if cfg.ChatMode == "simulated" {
		channel = chat.NewSimulatedChannel(appCtx, cfg.ChatReplyDelay)
		logger.Info("chat running in simulated mode", zap.Duration("reply_delay", cfg.ChatReplyDelay))
	} else {
		channel = chat.NewRealChannel(supabaseClient, supabaseClient, cfg.ChatBucket, logger)
	}

	// --- Initial load ---
	loadCtx, cancelLoad := context.WithTimeout(appCtx, 30*time.Second)
	if err := portalSvc.RefreshAll(loadCtx); err != nil {
		logger.Warn("initial data load incomplete", zap.Error(err))
	}
	cancelLoad()

	// --- Router ---
	router := handler.NewRouter(portalSvc, filesSvc, channel, authSvc, events, metrics, cfg.CORSOrigins, logger)

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
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-appCtx.Done()

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
