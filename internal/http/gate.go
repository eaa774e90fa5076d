package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
	"github.com/cnts-sn/sgi-cnts/internal/service"
)

// Page paths the gates redirect to.
const (
	StaffLoginPath   = "/admin/login"
	StaffMFAPath     = "/admin/mfa"
	StaffHomePath    = "/admin"
	PatientLoginPath = "/patient/login"
	PatientHomePath  = "/patient"
)

// Gate names used as metric labels.
const (
	gateStaff   = "staff"
	gatePatient = "patient"
)

// VerdictKind is the outcome of a gate decision.
type VerdictKind string

const (
	VerdictAllow VerdictKind = "allow"
	VerdictLogin VerdictKind = "login"
	VerdictMFA   VerdictKind = "mfa"
)

// Verdict is what the gate does with a request.
type Verdict struct {
	Kind VerdictKind
	// Location is the redirect target for VerdictLogin and VerdictMFA.
	Location string
}

// GateInput is everything a gate decision depends on.
type GateInput struct {
	// Target is the request URI to return to after authenticating.
	Target string
	// Session is true when the request carries a valid session token.
	Session bool
	// StepUpRequired is true when the session was issued without MFA for an identity
	// that requires it.
	StepUpRequired bool
	// PreAuthPending is true when the request carries a valid pre-auth token.
	PreAuthPending bool
}

// publicPaths bypass the gates entirely.
//
//nolint:gochecknoglobals // static read-only lookup
var publicPaths = map[string]bool{
	StaffLoginPath:        true,
	StaffMFAPath:          true,
	PatientLoginPath:      true,
	"/api/patient/login":  true,
	"/api/patient/logout": true,
	"/favicon.ico":        true,
	"/healthz":            true,
	"/metrics":            true,
}

//nolint:gochecknoglobals // static read-only lookup
var publicPrefixes = []string{"/api/auth/", "/static/"}

// IsPublicPath reports whether path bypasses authentication.
func IsPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isStaffPath(path string) bool {
	return path == StaffHomePath || strings.HasPrefix(path, StaffHomePath+"/") || strings.HasPrefix(path, "/api/admin/")
}

func isPatientPath(path string) bool {
	return path == PatientHomePath || strings.HasPrefix(path, PatientHomePath+"/") || strings.HasPrefix(path, "/api/patient/")
}

// DecideStaff computes the back-office gate outcome. It checks identity and step-up
// completeness only; permissions are enforced by the routes themselves.
func DecideStaff(in GateInput) Verdict {
	switch {
	case in.Session && !in.StepUpRequired:
		return Verdict{Kind: VerdictAllow}
	case in.Session || in.PreAuthPending:
		return Verdict{Kind: VerdictMFA, Location: withQuery(StaffMFAPath, "next", safeRedirectPath(in.Target, StaffHomePath))}
	default:
		return Verdict{Kind: VerdictLogin, Location: withQuery(StaffLoginPath, "next", safeRedirectPath(in.Target, StaffHomePath))}
	}
}

// DecidePatient computes the patient portal gate outcome.
func DecidePatient(in GateInput) Verdict {
	if in.Session {
		return Verdict{Kind: VerdictAllow}
	}
	return Verdict{Kind: VerdictLogin, Location: withQuery(PatientLoginPath, "next", safeRedirectPath(in.Target, PatientHomePath))}
}

// StaffAuth is the subset of the staff auth service the HTTP layer needs.
type StaffAuth interface {
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	CompleteMFA(ctx context.Context, in service.MFAInput) (*service.LoginResult, error)
	Resolve(raw string) (domainauth.Principal, bool)
	PendingMFA(raw string) bool
	StepUpRequired(sess domainauth.StaffSession) bool
	StepUpToken(sess domainauth.StaffSession) (string, error)
	Logout(ctx context.Context, raw, remoteAddr string)
	SessionTTL() time.Duration
	PreAuthTTL() time.Duration
}

// PatientAuth is the subset of the patient auth service the HTTP layer needs.
type PatientAuth interface {
	Login(ctx context.Context, in service.LoginInput) (*service.PatientLoginResult, error)
	Resolve(raw string) (domainauth.PatientSession, bool)
	Logout(ctx context.Context, raw, remoteAddr string)
	SessionTTL() time.Duration
}

// GateConfig groups dependencies for the Gate middleware.
type GateConfig struct {
	Staff   StaffAuth
	Patient PatientAuth
	Cookies CookieConfig
	Metrics *metrics.AuthMetrics
	Logger  *slog.Logger
}

// Gate returns a middleware that runs ahead of every request. Public paths pass
// through; back-office and patient paths require the matching session and carry the
// resolved identity in the request context. API paths get 401 JSON instead of
// redirects.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			switch {
			case IsPublicPath(path):
				next.ServeHTTP(w, r)
			case cfg.Staff != nil && isStaffPath(path):
				staffGate(cfg, logger, next, w, r)
			case cfg.Patient != nil && isPatientPath(path):
				patientGate(cfg, next, w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func staffGate(cfg GateConfig, logger *slog.Logger, next http.Handler, w http.ResponseWriter, r *http.Request) {
	in := GateInput{Target: r.URL.RequestURI()}
	p, ok := cfg.Staff.Resolve(cookieValue(r, StaffSessionCookie))
	if ok {
		in.Session = true
		in.StepUpRequired = cfg.Staff.StepUpRequired(p.Session)
	} else {
		in.PreAuthPending = cfg.Staff.PendingMFA(cookieValue(r, PreAuthCookie))
	}

	v := DecideStaff(in)
	cfg.Metrics.GateDecision(gateStaff, string(v.Kind))

	switch v.Kind {
	case VerdictAllow:
		next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), p)))
		return
	case VerdictMFA:
		// A session without MFA gets a fresh pre-auth token so the MFA page can finish it.
		if in.Session && !cfg.Staff.PendingMFA(cookieValue(r, PreAuthCookie)) {
			tok, err := cfg.Staff.StepUpToken(p.Session)
			if err != nil {
				logger.ErrorContext(r.Context(), "issue step-up token failed", "error", err)
				WriteAppError(w, err)
				return
			}
			cfg.Cookies.set(w, r, preAuthSpec(cfg.Staff.PreAuthTTL()), tok)
		}
		if isAPIPath(r.URL.Path) {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "mfa_required",
				Err:     errors.New("multi-factor authentication required"),
			})
			return
		}
	case VerdictLogin:
		if isAPIPath(r.URL.Path) {
			writeAuthRequired(w)
			return
		}
	}
	http.Redirect(w, r, v.Location, http.StatusSeeOther)
}

func patientGate(cfg GateConfig, next http.Handler, w http.ResponseWriter, r *http.Request) {
	sess, ok := cfg.Patient.Resolve(cookieValue(r, PatientSessionCookie))
	v := DecidePatient(GateInput{Target: r.URL.RequestURI(), Session: ok})
	cfg.Metrics.GateDecision(gatePatient, string(v.Kind))

	if v.Kind == VerdictAllow {
		next.ServeHTTP(w, r.WithContext(SetPatientSessionInContext(r.Context(), sess)))
		return
	}
	if isAPIPath(r.URL.Path) {
		writeAuthRequired(w)
		return
	}
	http.Redirect(w, r, v.Location, http.StatusSeeOther)
}

func writeAuthRequired(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}
