package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cnts-sn/sgi-cnts/internal/auth/session"
	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
	apperrors "github.com/cnts-sn/sgi-cnts/internal/errors"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// PatientAuthServiceOptions groups dependencies for PatientAuthService.
type PatientAuthServiceOptions struct {
	Directory  ports.PatientDirectory
	Tokens     *session.Codecs
	Audit      ports.AuditSink
	Metrics    *metrics.AuthMetrics
	Logger     *slog.Logger
	Now        func() time.Time
	SessionTTL time.Duration
}

// PatientAuthService runs the single-step patient portal login.
type PatientAuthService struct {
	directory  ports.PatientDirectory
	tokens     *session.Codecs
	metrics    *metrics.AuthMetrics
	logger     *slog.Logger
	audit      auditRecorder
	sessionTTL time.Duration
}

// NewPatientAuthService constructs a PatientAuthService.
func NewPatientAuthService(opts PatientAuthServiceOptions) (*PatientAuthService, error) {
	if opts.Directory == nil {
		return nil, errors.New("patient directory is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token codecs are required")
	}
	logger := resolveLogger(opts.Logger).With("component", "patient_auth")
	return &PatientAuthService{
		directory:  opts.Directory,
		tokens:     opts.Tokens,
		metrics:    opts.Metrics,
		logger:     logger,
		audit:      auditRecorder{sink: opts.Audit, logger: logger, now: resolveClock(opts.Now)},
		sessionTTL: resolveTTL(opts.SessionTTL, DefaultSessionTTL),
	}, nil
}

// PatientLoginResult carries the issued token and the claims it encodes.
type PatientLoginResult struct {
	SessionToken string
	Session      domainauth.PatientSession
}

// Login verifies the patient's password and issues a session token.
func (s *PatientAuthService) Login(ctx context.Context, in LoginInput) (*PatientLoginResult, error) {
	email := strings.TrimSpace(in.Email)
	user, ok := s.directory.Lookup(email)
	if !ok || !s.directory.VerifyPassword(user, in.Password) {
		s.metrics.Attempt(metrics.ActorPatient, metrics.StepPassword, metrics.ResultFailure)
		s.audit.record(ctx, auditEntry{
			actor: email, action: audit.ActionPatientLogin, outcome: audit.OutcomeFailure, remoteAddr: in.RemoteAddr,
		})
		return nil, ErrInvalidCredentials
	}

	sess := domainauth.PatientSession{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AccessToken: user.AccessToken,
	}
	tok, err := s.tokens.SignPatient(sess, s.sessionTTL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "issue patient session token")
	}

	s.metrics.Attempt(metrics.ActorPatient, metrics.StepPassword, metrics.ResultSuccess)
	s.audit.record(ctx, auditEntry{
		actor: user.Email, action: audit.ActionPatientLogin, outcome: audit.OutcomeSuccess, remoteAddr: in.RemoteAddr,
	})
	s.logger.InfoContext(ctx, "patient login", "user_id", user.ID)
	return &PatientLoginResult{SessionToken: tok, Session: sess}, nil
}

// Resolve verifies a patient session token.
func (s *PatientAuthService) Resolve(raw string) (domainauth.PatientSession, bool) {
	return s.tokens.VerifyPatient(raw)
}

// Logout records the end of a patient session; absent or invalid tokens are a no-op.
func (s *PatientAuthService) Logout(ctx context.Context, raw, remoteAddr string) {
	sess, ok := s.tokens.VerifyPatient(raw)
	if !ok {
		return
	}
	s.metrics.Attempt(metrics.ActorPatient, metrics.StepLogout, metrics.ResultSuccess)
	s.audit.record(ctx, auditEntry{
		actor: sess.Email, action: audit.ActionPatientLogout, outcome: audit.OutcomeSuccess, remoteAddr: remoteAddr,
	})
}

// SessionTTL is the lifetime of issued patient session tokens.
func (s *PatientAuthService) SessionTTL() time.Duration { return s.sessionTTL }
