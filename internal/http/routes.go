package httpx

import (
	"log/slog"
	"net/http"

	"github.com/cnts-sn/sgi-cnts/internal/domain/rbac"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Staff   StaffAuth
	Patient PatientAuth
	// Roles lists the role catalog for the permission matrix.
	Roles func() []rbac.Role
	Audit ports.AuditReader
	// Metrics records gate decisions; nil disables them.
	Metrics *metrics.AuthMetrics
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	// StaticDir is served under /static/ when set.
	StaticDir string
	Cookies   CookieConfig
	Logger    *slog.Logger
}

// NewRouter creates the HTTP router with every route behind the authorization gate.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Staff != nil {
		registerStaffRoutes(mux, &AuthHandlers{Svc: services.Staff, Cookies: services.Cookies, Logger: logger})
		roles := services.Roles
		if roles == nil {
			roles = rbac.DefaultRegistry().All
		}
		registerAdminRoutes(mux, &AdminHandlers{Roles: roles, Audit: services.Audit, Logger: logger})
		mux.Handle("GET /{$}", http.RedirectHandler(StaffHomePath, http.StatusSeeOther))
	}
	if services.Patient != nil {
		registerPatientRoutes(mux, &PatientHandlers{Svc: services.Patient, Cookies: services.Cookies, Logger: logger})
	}

	if services.MetricsHandler != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.MetricsHandler)
	}
	if services.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(services.StaticDir))))
	}

	return Gate(GateConfig{
		Staff:   services.Staff,
		Patient: services.Patient,
		Cookies: services.Cookies,
		Metrics: services.Metrics,
		Logger:  logger,
	})(mux)
}

func registerStaffRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET "+StaffLoginPath, h.LoginPage)
	mux.HandleFunc("GET "+StaffMFAPath, h.MFAPage)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/mfa", h.MFA)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/status", h.Status)
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers) {
	mux.HandleFunc("GET "+StaffHomePath, h.Dashboard)
	mux.Handle("GET /api/admin/roles",
		RequirePermission(rbac.Perm(rbac.ModuleUtilisateurs, rbac.ActionRead))(http.HandlerFunc(h.RoleMatrix)))
	mux.Handle("GET /api/admin/audit",
		RequirePermission(rbac.Perm(rbac.ModuleAudit, rbac.ActionRead))(http.HandlerFunc(h.AuditLog)))
}

func registerPatientRoutes(mux *http.ServeMux, h *PatientHandlers) {
	mux.HandleFunc("GET "+PatientLoginPath, h.LoginPage)
	mux.HandleFunc("POST /api/patient/login", h.Login)
	mux.HandleFunc("POST /api/patient/logout", h.Logout)
	mux.HandleFunc("GET "+PatientHomePath, h.Me)
	mux.HandleFunc("GET /api/patient/me", h.Me)
}
