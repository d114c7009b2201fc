package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atrium-labs/contractsearch/internal/config"
	"github.com/atrium-labs/contractsearch/internal/db"
	dbRedis "github.com/atrium-labs/contractsearch/internal/db/redis"
	logpkg "github.com/atrium-labs/contractsearch/internal/logger"
	"github.com/atrium-labs/contractsearch/internal/metrics"
	historyrepo "github.com/atrium-labs/contractsearch/internal/repository/history"
	recordsrepo "github.com/atrium-labs/contractsearch/internal/repository/records"
	savedrepo "github.com/atrium-labs/contractsearch/internal/repository/saved"
	chiTransport "github.com/atrium-labs/contractsearch/internal/transport/chi"
	analyticsuc "github.com/atrium-labs/contractsearch/internal/usecase/analytics"
	exportuc "github.com/atrium-labs/contractsearch/internal/usecase/export"
	healthuc "github.com/atrium-labs/contractsearch/internal/usecase/health"
	liveuc "github.com/atrium-labs/contractsearch/internal/usecase/live"
	searchuc "github.com/atrium-labs/contractsearch/internal/usecase/search"
	"github.com/atrium-labs/contractsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting contractsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("records_url", cfg.Records.BaseURL),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Database is optional: without it history lives in memory and saved
	// searches are disabled.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer redisStore.Close()

		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
		store = redisStore
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Composition root: repositories, use case services, live controller.
	source := recordsrepo.New(
		cfg.Records.BaseURL,
		time.Duration(cfg.Records.TimeoutSec)*time.Second,
		logger,
	)

	var histStore liveuc.HistoryStore
	var savedStore *savedrepo.Store
	if store != nil {
		histStore = historyrepo.New(store, cfg.Storage.HistoryKey)
		savedStore = savedrepo.New(store)
	} else {
		histStore = historyrepo.NewMemory()
		logger.Warn("No database configured, history is in-memory and saved searches are disabled")
	}

	analyticsSvc := analyticsuc.New()
	searchSvc := searchuc.New(searchuc.Config{
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
		Weights: searchuc.Weights{
			Exact:   cfg.Search.ExactWeight,
			Partial: cfg.Search.PartialWeight,
			Fuzzy:   cfg.Search.FuzzyWeight,
		},
	}, analyticsSvc)
	exportSvc := exportuc.New()

	// Pass nil interface (not typed nil pointer!) if the store is absent.
	var savedLive liveuc.SavedSearches
	if savedStore != nil {
		savedLive = savedStore
	}

	controller := liveuc.New(
		liveuc.Config{
			Debounce:        time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
			SnapshotTTL:     time.Duration(cfg.Search.SnapshotTTLSec) * time.Second,
			HistoryLimit:    cfg.Search.HistoryLimit,
			SuggestionLimit: cfg.Search.SuggestionLimit,
			PageSize:        cfg.Records.PageSize,
		},
		source, searchSvc, histStore, savedLive, analyticsSvc, exportSvc, logger,
	)
	defer controller.Close()
	controller.Start(ctx)

	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}
	healthSvc := healthuc.New(dbPinger, source)

	// Create chi server
	var savedTransport chiTransport.SavedStore
	if savedStore != nil {
		savedTransport = savedStore
	}
	server := chiTransport.NewServer(controller, savedTransport, exportSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
