package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// auditRecorder writes audit events without ever failing the calling flow.
type auditRecorder struct {
	sink   ports.AuditSink
	logger *slog.Logger
	now    func() time.Time
}

type auditEntry struct {
	actor      string
	action     string
	outcome    string
	detail     string
	remoteAddr string
}

func (a auditRecorder) record(ctx context.Context, e auditEntry) {
	if a.sink == nil {
		return
	}
	ev := audit.NewEvent(a.now(), e.actor, e.action, e.outcome)
	ev.Detail = e.detail
	ev.RemoteAddr = e.remoteAddr
	if err := a.sink.Record(ctx, ev); err != nil {
		a.logger.WarnContext(ctx, "audit record failed",
			"action", e.action,
			"outcome", e.outcome,
			"error", err,
		)
	}
}

func resolveLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func resolveClock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func resolveTTL(ttl, def time.Duration) time.Duration {
	if ttl <= 0 {
		return def
	}
	return ttl
}
