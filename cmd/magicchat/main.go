package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/config"
	"github.com/kailas-cloud/magicchat/internal/db"
	dbMemory "github.com/kailas-cloud/magicchat/internal/db/memory"
	dbRedis "github.com/kailas-cloud/magicchat/internal/db/redis"
	logpkg "github.com/kailas-cloud/magicchat/internal/logger"
	"github.com/kailas-cloud/magicchat/internal/metrics"
	"github.com/kailas-cloud/magicchat/internal/repository/querycache"
	sessionrepo "github.com/kailas-cloud/magicchat/internal/repository/session"
	chiTransport "github.com/kailas-cloud/magicchat/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/magicchat/internal/transport/openai"
	"github.com/kailas-cloud/magicchat/internal/transport/weaviate"
	chatuc "github.com/kailas-cloud/magicchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/magicchat/internal/usecase/health"
	"github.com/kailas-cloud/magicchat/internal/version"
)

func main() {
	env := config.GetEnv()

	bootLogger, err := logpkg.NewLogger(env)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	// Required variables are checked before anything is served.
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Fatal("Failed to load .env", zap.Error(err))
	}
	required, err := config.RequireEnv(config.RequiredVars...)
	if err != nil {
		var missing *config.MissingEnvError
		if errors.As(err, &missing) {
			bootLogger.Fatal("Missing required environment variable", zap.String("variable", missing.Name))
		}
		bootLogger.Fatal("Environment check failed", zap.Error(err))
	}

	cfg, err := config.Load(env, required)
	if err != nil {
		bootLogger.Fatal("Failed to load config", zap.Error(err))
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting magicchat server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("weaviate_class", cfg.Weaviate.Class),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	metrics.RegisterQueryMetrics()

	wv, err := weaviate.NewClient(weaviate.Config{
		URL:       cfg.Weaviate.URL,
		APIKey:    cfg.Weaviate.APIKey,
		OpenAIKey: cfg.OpenAI.APIKey,
		Class:     cfg.Weaviate.Class,
		Timeout:   time.Duration(cfg.Weaviate.TimeoutSec) * time.Second,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create Weaviate client", zap.Error(err))
	}

	ctx := context.Background()

	// Result cache
	store, err := buildStore(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	var searcher chatuc.Searcher = wv
	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if store != nil {
		defer store.Close()
		searcher = querycache.New(wv, store, querycache.Options{
			KeyPrefix:  cfg.Cache.KeyPrefix,
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
			CacheTotal: metrics.QueryCacheTotal,
		}, logger)
		cachePinger = store
		logger.Info("Query cache enabled", zap.String("driver", cfg.Cache.Driver))
	}

	keyChecker := openaiTransport.NewChecker(&openaiTransport.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Logger:  logger,
	})

	sessions := sessionrepo.New(sessionrepo.Config{
		IdleTTL:      time.Duration(cfg.Session.IdleTTLMin) * time.Minute,
		CleanupEvery: time.Duration(cfg.Session.CleanupEveryMin) * time.Minute,
	}, logger)
	chatSvc := chatuc.New(searcher, logger)
	healthSvc := healthuc.New(wv, keyChecker, cachePinger)

	server := chiTransport.NewServer(sessions, chatSvc, healthSvc, chiTransport.Options{
		RevealDelay: time.Duration(cfg.Chat.RevealDelayMs) * time.Millisecond,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

// buildStore creates the cache backend for the configured driver. "none" returns nil.
func buildStore(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case "none":
		return nil, nil
	case "memory":
		return dbMemory.NewStore(10 * time.Minute), nil
	case "redis", "valkey":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
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

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

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
