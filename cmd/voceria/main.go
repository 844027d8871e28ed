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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voceria-ai/voceria/internal/cache/contextcache"
	"github.com/voceria-ai/voceria/internal/cache/response"
	"github.com/voceria-ai/voceria/internal/config"
	"github.com/voceria-ai/voceria/internal/db"
	"github.com/voceria-ai/voceria/internal/db/memory"
	dbRedis "github.com/voceria-ai/voceria/internal/db/redis"
	"github.com/voceria-ai/voceria/internal/docindex"
	logpkg "github.com/voceria-ai/voceria/internal/logger"
	"github.com/voceria-ai/voceria/internal/metrics"
	"github.com/voceria-ai/voceria/internal/retriever"
	"github.com/voceria-ai/voceria/internal/sanitizer"
	"github.com/voceria-ai/voceria/internal/transport/httpapi"
	openaiGen "github.com/voceria-ai/voceria/internal/transport/openai"
	answeruc "github.com/voceria-ai/voceria/internal/usecase/answer"
	healthuc "github.com/voceria-ai/voceria/internal/usecase/health"
	"github.com/voceria-ai/voceria/internal/verifier"
	"github.com/voceria-ai/voceria/internal/version"
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

	logger.Info("Starting voceria API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Create the shared cache store based on backend
	var store db.Store
	switch cfg.Cache.Backend {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
	case "memory":
		store = memory.NewStore()
	default:
		logger.Fatal("Unknown cache backend", zap.String("backend", cfg.Cache.Backend))
	}
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the cache store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Document index fed from tenant buckets
	source := docindex.NewBucketSource(time.Duration(cfg.Documents.FetchTimeoutSec)*time.Second, logger)
	index := docindex.New(source, logger)

	// Generation provider
	generator := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	logger.Info("Generator created", zap.String("model", cfg.Generation.Model))

	// Caches: the response cache always carries a local tier so that a
	// remote outage degrades to in-process caching instead of failing.
	respCache := response.New(store, memory.NewStore(), cfg.Cache.KeyPrefix, response.DefaultTTLPolicy(), logger)
	ctxCache := contextcache.New(logger)

	// Answer pipeline
	answerSvc := answeruc.New(answeruc.Config{
		Documents:       index,
		Retriever:       retriever.New(),
		Verifier:        verifier.New(),
		Sanitizer:       sanitizer.New(cfg.Pipeline.AggressiveSanitizer),
		Generator:       generator,
		ResponseCache:   respCache,
		ContextCache:    ctxCache,
		Logger:          logger,
		MaxDocuments:    cfg.Pipeline.MaxDocuments,
		MaxContextChars: cfg.Pipeline.MaxContextChars,
		EnableCitations: cfg.Pipeline.EnableCitations,
	})

	// Health service
	healthSvc := healthuc.New(store, generator)

	// HTTP API
	server := httpapi.NewServer(answerSvc, index, respCache, ctxCache, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

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

			// Canonical log line — one line per request
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
