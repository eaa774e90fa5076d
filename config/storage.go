package config

import (
	"fmt"
	"strings"
)

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// Sanitize trims the address and clamps the database index.
func (c *RedisConfig) Sanitize() {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.DB < 0 {
		c.DB = 0
	}
}

// AuditSinkKind selects where audit events are kept.
type AuditSinkKind string

const (
	// AuditSinkMemory keeps a bounded in-process ring.
	AuditSinkMemory AuditSinkKind = "memory"
	// AuditSinkRedis keeps a capped Redis list shared across instances.
	AuditSinkRedis AuditSinkKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuditSinkKind.
func (k *AuditSinkKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*k = AuditSinkKind(v)
		return nil
	default:
		return fmt.Errorf("invalid AuditSinkKind: %q (valid options: memory, redis)", v)
	}
}

const (
	defaultAuditCapacity = 200
	maxAuditCapacity     = 100_000
)

// AuditConfig controls the audit trail.
type AuditConfig struct {
	Sink     AuditSinkKind `env:"SINK"      envDefault:"memory"`
	Capacity int           `env:"CAPACITY"  envDefault:"200"`
	RedisKey string        `env:"REDIS_KEY" envDefault:"sgi:audit"`
}

// Sanitize clamps the capacity and fills defaults.
func (c *AuditConfig) Sanitize() {
	if c.Sink == "" {
		c.Sink = AuditSinkMemory
	}
	if c.Capacity <= 0 {
		c.Capacity = defaultAuditCapacity
	}
	if c.Capacity > maxAuditCapacity {
		c.Capacity = maxAuditCapacity
	}
	if c.RedisKey = strings.TrimSpace(c.RedisKey); c.RedisKey == "" {
		c.RedisKey = "sgi:audit"
	}
}
