package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"tickermate/internal/app"
	"tickermate/internal/config"
	hhttp "tickermate/internal/handler/http"
	"tickermate/internal/handler/http/middleware"
	hreport "tickermate/internal/handler/http/report"
	"tickermate/internal/handler/http/requestid"
	"tickermate/internal/observability/logging"
	"tickermate/internal/observability/tracing"
	pkgconfig "tickermate/internal/pkg/config"

	_ "tickermate/docs" // swagger docs
)

// @title           Tickermate API
// @version         1.0
// @description     Market snapshot plus classified social, news and stream content for a ticker.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	_ = godotenv.Load()
	logger := initLogger()

	cfg := loadConfig(logger)

	shutdownTracer := tracing.InitTracer(cfg.TracingSampleRatio)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error("failed to shut down tracer", slog.Any("error", err))
		}
	}()

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.Build(startCtx, cfg, app.Options{UseCache: true, UseArchive: true})
	cancel()
	if err != nil {
		logger.Error("failed to build application", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("failed to close connections", slog.Any("error", err))
		}
	}()

	components := setupServer(logger, cfg, application)
	runServer(logger, cfg, components)
}

// initLogger initializes the JSON logger at LOG_LEVEL and makes it the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads and validates the environment. Settings that fell back
// to defaults are logged and counted, not fatal.
func loadConfig(logger *slog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	for _, f := range cfg.Fallbacks {
		logger.Warn("configuration fallback applied",
			slog.String("key", f.Key),
			slog.String("reason", f.Reason))
	}
	pkgconfig.NewMetrics(prometheus.DefaultRegisterer, "api").Record(cfg.Fallbacks)
	return cfg
}

// ServerComponents holds what runServer needs besides the handler.
type ServerComponents struct {
	Handler http.Handler
	Limiter *middleware.IPRateLimiter
}

// setupServer registers routes and wraps them with the middleware chain.
func setupServer(logger *slog.Logger, cfg *config.Config, a *app.App) *ServerComponents {
	required := map[string]hhttp.Check{}
	optional := map[string]hhttp.Check{}
	if check := a.DatabaseCheck(); check != nil {
		required["database"] = check
	}
	if check := a.CacheCheck(); check != nil {
		optional["cache"] = check
	}

	mux := http.NewServeMux()
	hreport.Register(mux, a.Reports)
	mux.Handle("/health", &hhttp.HealthHandler{Version: cfg.Version, Required: required, Optional: optional})
	mux.Handle("/ready", &hhttp.ReadyHandler{Required: required})
	mux.Handle("/live", hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewIPRateLimiter(middleware.IPRateLimiterConfig{
			Rate:  cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		}, ipExtractor(logger))
		logger.Info("rate limiting initialized",
			slog.Float64("rps", cfg.RateLimit.RequestsPerSecond),
			slog.Int("burst", cfg.RateLimit.Burst))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	return &ServerComponents{
		Handler: applyMiddleware(logger, cfg, mux, limiter),
		Limiter: limiter,
	}
}

// ipExtractor trusts X-Forwarded-For only from TRUSTED_PROXIES.
func ipExtractor(logger *slog.Logger) middleware.IPExtractor {
	proxies := pkgconfig.List("TRUSTED_PROXIES", nil)
	if len(proxies) == 0 {
		logger.Info("rate limiting: using RemoteAddr (proxy headers ignored)")
		return middleware.RemoteAddrExtractor{}
	}
	prefixes, err := middleware.ParseTrustedProxies(proxies)
	if err != nil {
		logger.Error("failed to parse TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("rate limiting: trusted proxy mode enabled",
		slog.Int("trusted_proxies_count", len(prefixes)))
	return middleware.TrustedProxyExtractor{Trusted: prefixes}
}

// applyMiddleware wraps the handler with middleware chain.
// Middleware order: CORS → Request ID → IP Rate Limit → Recovery → Logging → Body Limit → Tracing → Metrics
func applyMiddleware(logger *slog.Logger, cfg *config.Config, handler http.Handler, limiter *middleware.IPRateLimiter) http.Handler {
	corsConfig := middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins)
	corsConfig.Logger = logger
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods))

	rateLimit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		rateLimit = limiter.Middleware()
	}

	return hhttp.Chain(handler,
		middleware.CORS(corsConfig),
		requestid.Middleware,
		rateLimit,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(1<<20),
		tracing.Middleware,
		hhttp.MetricsMiddleware,
	)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.Config, components *ServerComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.Limiter != nil {
		go components.Limiter.Cleanup(ctx, time.Minute)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Reports can wait on several LLM calls.
		WriteTimeout: 3 * time.Minute,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
