package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/cnts-sn/sgi-cnts/config"
)

// RunConfig contains what Run needs to start the application.
type RunConfig struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// Listener overrides HTTP_ADDR when set.
	Listener net.Listener
	// Ready, when set, is closed once the server accepts connections.
	Ready chan<- struct{}
}

// Run validates the configuration, builds every component and serves HTTP until ctx is
// cancelled or the server fails.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil {
		return errors.New("run config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	if err := appCfg.Validate(); err != nil {
		return err
	}

	var redisClient redis.UniversalClient
	if appCfg.Audit.Sink == config.AuditSinkRedis {
		client, err := ConnectRedis(ctx, RedisConnConfig{Redis: appCfg.Redis, Logger: logger})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisClient = client
		defer func() {
			if cerr := client.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	auditLog, err := BuildAuditLog(AuditConfig{Audit: appCfg.Audit, RedisClient: redisClient, Logger: logger})
	if err != nil {
		return err
	}

	m, err := BuildMetrics(appCfg.Observability.Metrics)
	if err != nil {
		return err
	}

	authSvcs, err := BuildAuthServices(AuthConfig{
		Auth:    appCfg.Auth,
		Audit:   auditLog,
		Metrics: m.Auth,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	handler := BuildHTTPHandler(HTTPHandlerConfig{
		Config:  appCfg,
		Auth:    authSvcs,
		Audit:   auditLog,
		Metrics: m,
		Logger:  logger,
	})
	server := newHTTPServer(appCfg.HTTP.Addr, handler)

	ln := cfg.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", server.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", server.Addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String(), "dev", appCfg.IsDev)
		if cfg.Ready != nil {
			close(cfg.Ready)
		}
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// The parent context is already cancelled here; shut down on a fresh one.
		return ShutdownHTTPServer(context.WithoutCancel(gctx), server, logger)
	})

	return g.Wait()
}
