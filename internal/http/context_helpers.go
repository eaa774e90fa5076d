package httpx

import (
	"context"

	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
)

// Unexported context key types avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same keys.
type (
	principalKey      struct{}
	patientSessionKey struct{}
)

// SetPrincipalInContext returns a child context that carries the resolved staff principal.
func SetPrincipalInContext(ctx context.Context, p domainauth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the staff principal and whether one is present.
func PrincipalFromContext(ctx context.Context) (domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domainauth.Principal)
	return p, ok
}

// SetPatientSessionInContext returns a child context that carries the patient session.
func SetPatientSessionInContext(ctx context.Context, s domainauth.PatientSession) context.Context {
	return context.WithValue(ctx, patientSessionKey{}, s)
}

// PatientSessionFromContext returns the patient session and whether one is present.
func PatientSessionFromContext(ctx context.Context) (domainauth.PatientSession, bool) {
	s, ok := ctx.Value(patientSessionKey{}).(domainauth.PatientSession)
	return s, ok
}
