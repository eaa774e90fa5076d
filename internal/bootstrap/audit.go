package bootstrap

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cnts-sn/sgi-cnts/config"
	"github.com/cnts-sn/sgi-cnts/internal/adapters/memaudit"
	redisadapter "github.com/cnts-sn/sgi-cnts/internal/adapters/redis"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// AuditConfig contains configuration for the audit trail.
type AuditConfig struct {
	Audit       config.AuditConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuditLog selects the audit backend. The Redis sink requires a connected client.
//
//nolint:ireturn // callers only need the port.
func BuildAuditLog(cfg AuditConfig) (ports.AuditLog, error) {
	switch cfg.Audit.Sink {
	case config.AuditSinkRedis:
		if cfg.RedisClient == nil {
			return nil, errors.New("redis audit sink selected but redis client not configured")
		}
		if cfg.Logger != nil {
			cfg.Logger.Info("audit trail", "sink", "redis", "key", cfg.Audit.RedisKey, "capacity", cfg.Audit.Capacity)
		}
		return redisadapter.NewAuditSink(cfg.RedisClient, redisadapter.AuditSinkOptions{
			Key:      cfg.Audit.RedisKey,
			Capacity: cfg.Audit.Capacity,
		}), nil
	default:
		if cfg.Logger != nil {
			cfg.Logger.Info("audit trail", "sink", "memory", "capacity", cfg.Audit.Capacity)
		}
		return memaudit.NewRing(cfg.Audit.Capacity), nil
	}
}
