// Package memaudit keeps recent audit events in process memory.
// It is a single-node, best-effort log; use the Redis sink when running more than one
// instance.
package memaudit

import (
	"context"
	"sync"

	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// DefaultCapacity is the number of events retained when none is configured.
const DefaultCapacity = 200

var _ ports.AuditLog = (*Ring)(nil)

// Ring is a bounded, newest-first event buffer safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	buf   []audit.Event
	next  int
	count int
}

// NewRing creates a ring holding up to capacity events.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]audit.Event, capacity)}
}

// Record appends ev, evicting the oldest event once full.
func (r *Ring) Record(_ context.Context, ev audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns everything held.
func (r *Ring) Recent(_ context.Context, limit int) ([]audit.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]audit.Event, n)
	for i := range n {
		idx := (r.next - 1 - i + len(r.buf)) % len(r.buf)
		out[i] = r.buf[idx]
	}
	return out, nil
}

// Len reports how many events are held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
