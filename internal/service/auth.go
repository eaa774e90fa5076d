package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cnts-sn/sgi-cnts/internal/auth/session"
	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
	"github.com/cnts-sn/sgi-cnts/internal/domain/rbac"
	apperrors "github.com/cnts-sn/sgi-cnts/internal/errors"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// Default token lifetimes.
const (
	DefaultSessionTTL = 8 * time.Hour
	DefaultPreAuthTTL = 5 * time.Minute
)

var (
	// ErrInvalidCredentials is returned for any failed factor. It never says which one.
	ErrInvalidCredentials = apperrors.Unauthorized("invalid credentials")
	// ErrPreAuthMissing means the second step has no valid first-step proof; login restarts.
	ErrPreAuthMissing = apperrors.Unauthorized("pre-auth missing or expired")
)

// LoginStep tells the caller where the login flow stands after a call.
type LoginStep string

const (
	// StepMFARequired means the password was accepted and a TOTP code is now required.
	StepMFARequired LoginStep = "mfa_required"
	// StepAuthenticated means a session token was issued.
	StepAuthenticated LoginStep = "authenticated"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Directory ports.StaffDirectory
	Registry  *rbac.Registry
	Tokens    *session.Codecs
	MFA       ports.MFAVerifier
	Audit     ports.AuditSink
	Metrics   *metrics.AuthMetrics
	Logger    *slog.Logger
	Now       func() time.Time

	SessionTTL time.Duration
	PreAuthTTL time.Duration
}

// AuthService runs the back-office two-step login and resolves sessions into principals.
// It keeps no per-user state; every step is carried by a signed token.
type AuthService struct {
	directory  ports.StaffDirectory
	registry   *rbac.Registry
	tokens     *session.Codecs
	mfa        ports.MFAVerifier
	metrics    *metrics.AuthMetrics
	logger     *slog.Logger
	audit      auditRecorder
	sessionTTL time.Duration
	preAuthTTL time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Directory == nil {
		return nil, errors.New("staff directory is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token codecs are required")
	}
	if opts.MFA == nil {
		return nil, errors.New("mfa verifier is required")
	}
	registry := opts.Registry
	if registry == nil {
		registry = rbac.DefaultRegistry()
	}
	logger := resolveLogger(opts.Logger).With("component", "auth")
	return &AuthService{
		directory:  opts.Directory,
		registry:   registry,
		tokens:     opts.Tokens,
		mfa:        opts.MFA,
		metrics:    opts.Metrics,
		logger:     logger,
		audit:      auditRecorder{sink: opts.Audit, logger: logger, now: resolveClock(opts.Now)},
		sessionTTL: resolveTTL(opts.SessionTTL, DefaultSessionTTL),
		preAuthTTL: resolveTTL(opts.PreAuthTTL, DefaultPreAuthTTL),
	}, nil
}

// LoginInput groups parameters for the password step.
type LoginInput struct {
	Email      string
	Password   string
	RemoteAddr string
}

// LoginResult is the outcome of a successful step. Exactly one token is set, matching Step.
type LoginResult struct {
	Step         LoginStep
	PreAuthToken string
	SessionToken string
	Session      domainauth.StaffSession
}

// Login verifies the password. Identities that require MFA receive a pre-auth token;
// the others receive a session directly.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	user, ok := s.directory.Lookup(email)
	if !ok || !s.directory.VerifyPassword(user, in.Password) {
		s.metrics.Attempt(metrics.ActorStaff, metrics.StepPassword, metrics.ResultFailure)
		s.audit.record(ctx, auditEntry{
			actor: email, action: audit.ActionLogin, outcome: audit.OutcomeFailure, remoteAddr: in.RemoteAddr,
		})
		s.logger.InfoContext(ctx, "staff login rejected", "remote_addr", in.RemoteAddr)
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		tok, err := s.tokens.SignPreAuth(domainauth.PreAuth{Email: user.Email}, s.preAuthTTL)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "issue pre-auth token")
		}
		s.metrics.Attempt(metrics.ActorStaff, metrics.StepPassword, metrics.ResultPending)
		s.audit.record(ctx, auditEntry{
			actor: user.Email, action: audit.ActionLogin, outcome: audit.OutcomePending,
			detail: "mfa required", remoteAddr: in.RemoteAddr,
		})
		return &LoginResult{Step: StepMFARequired, PreAuthToken: tok}, nil
	}

	res, err := s.issueSession(user, false)
	if err != nil {
		return nil, err
	}
	s.metrics.Attempt(metrics.ActorStaff, metrics.StepPassword, metrics.ResultSuccess)
	s.audit.record(ctx, auditEntry{
		actor: user.Email, action: audit.ActionLogin, outcome: audit.OutcomeSuccess, remoteAddr: in.RemoteAddr,
	})
	s.logger.InfoContext(ctx, "staff login", "user_id", user.ID, "mfa", false)
	return res, nil
}

// MFAInput groups parameters for the TOTP step.
type MFAInput struct {
	PreAuthToken string
	Code         string
	RemoteAddr   string
}

// CompleteMFA consumes a pre-auth token and a TOTP code. ErrPreAuthMissing means the
// caller must restart at the password step; ErrInvalidCredentials means the code was
// wrong and the pre-auth token remains usable until it expires.
func (s *AuthService) CompleteMFA(ctx context.Context, in MFAInput) (*LoginResult, error) {
	pre, ok := s.tokens.VerifyPreAuth(in.PreAuthToken)
	if !ok {
		return nil, ErrPreAuthMissing
	}
	user, ok := s.directory.Lookup(pre.Email)
	if !ok || !user.MFAEnabled {
		return nil, ErrPreAuthMissing
	}

	if !s.mfa.Verify(user.TOTPSecret, in.Code) {
		s.metrics.Attempt(metrics.ActorStaff, metrics.StepMFA, metrics.ResultFailure)
		s.audit.record(ctx, auditEntry{
			actor: user.Email, action: audit.ActionMFA, outcome: audit.OutcomeFailure, remoteAddr: in.RemoteAddr,
		})
		s.logger.InfoContext(ctx, "staff mfa rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issueSession(user, true)
	if err != nil {
		return nil, err
	}
	s.metrics.Attempt(metrics.ActorStaff, metrics.StepMFA, metrics.ResultSuccess)
	s.audit.record(ctx, auditEntry{
		actor: user.Email, action: audit.ActionMFA, outcome: audit.OutcomeSuccess, remoteAddr: in.RemoteAddr,
	})
	s.logger.InfoContext(ctx, "staff login", "user_id", user.ID, "mfa", true)
	return res, nil
}

func (s *AuthService) issueSession(user domainauth.StaffUser, mfa bool) (*LoginResult, error) {
	sess := domainauth.StaffSession{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RoleIDs:     user.RoleIDs(),
		MFA:         mfa,
	}
	tok, err := s.tokens.SignStaff(sess, s.sessionTTL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "issue session token")
	}
	return &LoginResult{Step: StepAuthenticated, SessionToken: tok, Session: sess}, nil
}

// Resolve verifies a session token and resolves its role ids through the registry.
// Unknown role ids are dropped; a principal with no roles is still authenticated.
func (s *AuthService) Resolve(raw string) (domainauth.Principal, bool) {
	sess, ok := s.tokens.VerifyStaff(raw)
	if !ok {
		return domainauth.Principal{}, false
	}
	return domainauth.Principal{Session: sess, Roles: s.registry.Resolve(sess.RoleIDs)}, true
}

// PendingMFA reports whether raw is a valid pre-auth token.
func (s *AuthService) PendingMFA(raw string) bool {
	_, ok := s.tokens.VerifyPreAuth(raw)
	return ok
}

// StepUpRequired reports whether sess was issued without MFA for an identity that now
// requires it.
func (s *AuthService) StepUpRequired(sess domainauth.StaffSession) bool {
	if sess.MFA {
		return false
	}
	user, ok := s.directory.Lookup(sess.Email)
	return ok && user.MFAEnabled
}

// StepUpToken issues a pre-auth token for an authenticated session that needs MFA.
func (s *AuthService) StepUpToken(sess domainauth.StaffSession) (string, error) {
	tok, err := s.tokens.SignPreAuth(domainauth.PreAuth{Email: sess.Email}, s.preAuthTTL)
	if err != nil {
		return "", fmt.Errorf("issue step-up token: %w", err)
	}
	return tok, nil
}

// Logout records the end of a session. It never fails; an absent or invalid token is a
// no-op.
func (s *AuthService) Logout(ctx context.Context, raw, remoteAddr string) {
	sess, ok := s.tokens.VerifyStaff(raw)
	if !ok {
		return
	}
	s.metrics.Attempt(metrics.ActorStaff, metrics.StepLogout, metrics.ResultSuccess)
	s.audit.record(ctx, auditEntry{
		actor: sess.Email, action: audit.ActionLogout, outcome: audit.OutcomeSuccess, remoteAddr: remoteAddr,
	})
}

// Roles returns the role catalog in stable order.
func (s *AuthService) Roles() []rbac.Role {
	return s.registry.All()
}

// SessionTTL is the lifetime of issued session tokens.
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// PreAuthTTL is the lifetime of issued pre-auth tokens.
func (s *AuthService) PreAuthTTL() time.Duration { return s.preAuthTTL }
