package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cnts-sn/sgi-cnts/config"
	httpx "github.com/cnts-sn/sgi-cnts/internal/http"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// HTTPHandlerConfig contains the dependencies of the HTTP handler.
type HTTPHandlerConfig struct {
	Config  *config.AppConfig
	Auth    *AuthServices
	Audit   ports.AuditReader
	Metrics MetricsContainer
	Logger  *slog.Logger
}

// BuildHTTPHandler assembles the router and wraps it with logging and panic recovery.
// Order: Recover -> Logging -> Gate -> Router.
func BuildHTTPHandler(cfg HTTPHandlerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Audit:          cfg.Audit,
		Metrics:        cfg.Metrics.Auth,
		MetricsHandler: cfg.Metrics.Handler,
		MetricsPath:    cfg.Metrics.Path,
		StaticDir:      appCfg.HTTP.StaticDir,
		Cookies: httpx.CookieConfig{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: !appCfg.IsDev,
		},
		Logger: logger,
	}
	if cfg.Auth != nil {
		services.Staff = cfg.Auth.Staff
		services.Patient = cfg.Auth.Patient
		services.Roles = cfg.Auth.Registry.All
	}

	return httpx.Chain(httpx.NewRouter(services), httpx.Recover(logger), httpx.Logging(logger))
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
