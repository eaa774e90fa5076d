// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
)

// StaffDirectory resolves back-office login identities.
type StaffDirectory interface {
	// Lookup returns the identity for email, matched case-insensitively.
	Lookup(email string) (domainauth.StaffUser, bool)
	// VerifyPassword reports whether candidate matches the record's password.
	VerifyPassword(user domainauth.StaffUser, candidate string) bool
}

// PatientDirectory resolves patient-portal login identities.
type PatientDirectory interface {
	Lookup(email string) (domainauth.PatientUser, bool)
	VerifyPassword(user domainauth.PatientUser, candidate string) bool
}

// AuditSink appends audit events.
type AuditSink interface {
	Record(ctx context.Context, ev audit.Event) error
}

// AuditReader lists recent audit events, newest first.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// AuditLog is a sink that can also be read back.
type AuditLog interface {
	AuditSink
	AuditReader
}

// MFAVerifier checks a one-time code against a shared secret.
type MFAVerifier interface {
	Verify(secret, candidate string) bool
}
