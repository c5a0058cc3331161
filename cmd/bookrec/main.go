package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/config"
	dbRedis "github.com/kailas-cloud/bookrec/internal/db/redis"
	logpkg "github.com/kailas-cloud/bookrec/internal/logger"
	"github.com/kailas-cloud/bookrec/internal/metrics"
	"github.com/kailas-cloud/bookrec/internal/repository/catalog"
	"github.com/kailas-cloud/bookrec/internal/repository/neighborcache"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
	chiTransport "github.com/kailas-cloud/bookrec/internal/transport/chi"
	exploreuc "github.com/kailas-cloud/bookrec/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/bookrec/internal/usecase/recommend"
	resolveuc "github.com/kailas-cloud/bookrec/internal/usecase/resolve"
	similaruc "github.com/kailas-cloud/bookrec/internal/usecase/similar"
	"github.com/kailas-cloud/bookrec/internal/version"
)

func main() {
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

	logger.Info("Starting bookrec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("snapshot", cfg.Snapshot.Path),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	metrics.RegisterRecommendMetrics()

	store, err := catalog.Load(cfg.Snapshot.Path,
		catalog.WithFormat(snapshot.Format(cfg.Snapshot.Format)),
		catalog.WithAllowedTopics(cfg.Snapshot.AllowedTopics...),
	)
	if err != nil {
		logger.Fatal("Failed to load catalog snapshot", zap.Error(err))
	}
	metrics.CatalogBooks.Set(float64(store.Len()))

	degenerate := store.Embeddings().DegenerateTitles()
	logger.Info("Catalog loaded",
		zap.Int("books", store.Len()),
		zap.Int("dimensions", store.Embeddings().Dimensions()),
		zap.Int("topics", len(store.Topics())),
		zap.Int("degenerate_vectors", len(degenerate)),
		zap.String("fingerprint", store.Fingerprint()),
	)

	var engineOpts []similaruc.Option
	if len(degenerate) > 0 {
		if cfg.Recommend.ExcludeDegenerate {
			engineOpts = append(engineOpts, similaruc.WithExcluded(degenerate...))
			logger.Warn("Excluding books with zero-norm embeddings", zap.Strings("titles", degenerate))
		} else {
			logger.Warn("Books with zero-norm embeddings will fail similarity queries",
				zap.Strings("titles", degenerate))
		}
	}

	ctx := context.Background()

	// Finder chain: Engine -> Instrumented -> Cached
	var finder similaruc.Finder = similaruc.NewInstrumented(
		similaruc.New(store, store.Embeddings(), engineOpts...), metrics.NearestDuration,
	)

	// Nil interface, not a typed nil pointer, when the cache is off.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		cacheStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:          cfg.Cache.Addrs,
			Username:       cfg.Cache.Username,
			Password:       cfg.Cache.Password,
			DB:             cfg.Cache.DB,
			ClientCacheTTL: cfg.Cache.ClientCacheTTL(),
			DialTimeout:    time.Duration(cfg.Cache.DialTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
		}
		defer cacheStore.Close()

		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cacheStore.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("Cache not ready", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
		}
		logger.Info("Connected to cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)

		finder = neighborcache.New(finder, cacheStore, store, neighborcache.Config{
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       cfg.Cache.TTL(),
		}, metrics.NeighborCacheTotal, logger)
		cachePinger = cacheStore
	}

	recommendSvc := recommenduc.New(
		resolveuc.New(store, cfg.Recommend.MaxCandidates),
		finder,
		exploreuc.New(store),
		store,
		cfg.Recommend.MaxK,
		recommenduc.Metrics{Resolve: metrics.ResolveTotal, Explore: metrics.ExploreTotal},
	)
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(recommendSvc, store, healthSvc, cfg.Recommend.DefaultK, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	if !cfg.RateLimit.Disabled {
		r.Use(chiTransport.RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window()))
	}
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
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
