// Package redis provides Redis-based adapters for the back office.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
	"github.com/redis/go-redis/v9"
)

const (
	defaultAuditKey      = "audit:events"
	defaultAuditCapacity = 200
)

var _ ports.AuditLog = (*AuditSink)(nil)

// AuditSink stores audit events in a capped Redis list shared by every instance.
// The list is kept newest-first.
type AuditSink struct {
	client   redis.UniversalClient
	key      string
	capacity int64
}

// AuditSinkOptions groups construction parameters for AuditSink.
type AuditSinkOptions struct {
	Key      string
	Capacity int
}

// NewAuditSink creates a Redis-backed audit sink.
func NewAuditSink(client redis.UniversalClient, opts AuditSinkOptions) *AuditSink {
	key := opts.Key
	if key == "" {
		key = defaultAuditKey
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditSink{client: client, key: key, capacity: int64(capacity)}
}

// Record pushes ev onto the list and trims it to capacity in one round trip.
func (s *AuditSink) Record(ctx context.Context, ev audit.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns everything held.
func (s *AuditSink) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := s.client.LRange(ctx, s.key, 0, stop).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []audit.Event{}, nil
		}
		return nil, fmt.Errorf("redis list audit events: %w", err)
	}

	out := make([]audit.Event, 0, len(raw))
	for _, item := range raw {
		var ev audit.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
