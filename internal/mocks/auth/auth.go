// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.StaffDirectory   = (*StaffDirectory)(nil)
	_ ports.PatientDirectory = (*PatientDirectory)(nil)
	_ ports.AuditLog         = (*RecordingAuditSink)(nil)
	_ ports.MFAVerifier      = StaticMFA{}
)

// StaffDirectory is an in-memory staff directory keyed by lower-cased email.
// Passwords are compared verbatim.
type StaffDirectory struct {
	Users map[string]domainauth.StaffUser
}

// NewStaffDirectory builds a directory holding users.
func NewStaffDirectory(users ...domainauth.StaffUser) *StaffDirectory {
	d := &StaffDirectory{Users: make(map[string]domainauth.StaffUser, len(users))}
	for _, u := range users {
		d.Users[strings.ToLower(u.Email)] = u
	}
	return d
}

func (d *StaffDirectory) Lookup(email string) (domainauth.StaffUser, bool) {
	u, ok := d.Users[strings.ToLower(strings.TrimSpace(email))]
	return u, ok
}

func (d *StaffDirectory) VerifyPassword(user domainauth.StaffUser, candidate string) bool {
	return user.Password != "" && user.Password == candidate
}

// PatientDirectory is an in-memory patient directory keyed by lower-cased email.
type PatientDirectory struct {
	Users map[string]domainauth.PatientUser
}

// NewPatientDirectory builds a directory holding users.
func NewPatientDirectory(users ...domainauth.PatientUser) *PatientDirectory {
	d := &PatientDirectory{Users: make(map[string]domainauth.PatientUser, len(users))}
	for _, u := range users {
		d.Users[strings.ToLower(u.Email)] = u
	}
	return d
}

func (d *PatientDirectory) Lookup(email string) (domainauth.PatientUser, bool) {
	u, ok := d.Users[strings.ToLower(strings.TrimSpace(email))]
	return u, ok
}

func (d *PatientDirectory) VerifyPassword(user domainauth.PatientUser, candidate string) bool {
	return user.Password != "" && user.Password == candidate
}

// StaticMFA accepts exactly one code for any secret.
type StaticMFA struct {
	Code string
}

func (m StaticMFA) Verify(_, candidate string) bool {
	return m.Code != "" && strings.TrimSpace(candidate) == m.Code
}

// ErrSinkUnavailable is returned by RecordingAuditSink when Fail is set.
var ErrSinkUnavailable = errors.New("audit sink unavailable")

// RecordingAuditSink keeps every recorded event in insertion order.
type RecordingAuditSink struct {
	mu     sync.Mutex
	events []audit.Event
	Fail   bool
}

func (s *RecordingAuditSink) Record(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrSinkUnavailable
	}
	s.events = append(s.events, ev)
	return nil
}

// Recent returns up to limit events, newest first.
func (s *RecordingAuditSink) Recent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]audit.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Events returns a copy of every recorded event, oldest first.
func (s *RecordingAuditSink) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.events...)
}
