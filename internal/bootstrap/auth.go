package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cnts-sn/sgi-cnts/config"
	"github.com/cnts-sn/sgi-cnts/internal/adapters/authroles"
	"github.com/cnts-sn/sgi-cnts/internal/adapters/devauth"
	"github.com/cnts-sn/sgi-cnts/internal/auth/session"
	"github.com/cnts-sn/sgi-cnts/internal/auth/totp"
	"github.com/cnts-sn/sgi-cnts/internal/domain/rbac"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
	"github.com/cnts-sn/sgi-cnts/internal/service"
)

// AuthConfig contains configuration for the auth services.
type AuthConfig struct {
	Auth     config.AuthConfig
	Registry *rbac.Registry
	Audit    ports.AuditSink
	Metrics  *metrics.AuthMetrics
	Logger   *slog.Logger
	// Now overrides the clock for tokens and TOTP; nil uses time.Now.
	Now func() time.Time
}

// AuthServices groups the staff and patient authentication services.
type AuthServices struct {
	Staff    *service.AuthService
	Patient  *service.PatientAuthService
	Registry *rbac.Registry
}

// BuildAuthServices wires the token codecs, the seeded directories and both services.
func BuildAuthServices(cfg AuthConfig) (*AuthServices, error) {
	reg := cfg.Registry
	if reg == nil {
		reg = rbac.DefaultRegistry()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	codecs, err := session.NewCodecs(session.Config{
		StaffSecret:   []byte(cfg.Auth.SessionSecret),
		PatientSecret: []byte(cfg.Auth.PatientSessionSecret),
		PreAuthSecret: []byte(cfg.Auth.PreAuthSecret),
		Now:           now,
	})
	if err != nil {
		return nil, fmt.Errorf("build token codecs: %w", err)
	}

	admin := cfg.Auth.Admin
	staffDir := devauth.NewStaffDirectory(devauth.StaffConfig{
		ID:          admin.ID,
		Email:       admin.Email,
		Password:    admin.Password,
		DisplayName: admin.DisplayName,
		Roles:       admin.Roles,
		TOTPSecret:  admin.TOTPSecret,
		MFADisabled: cfg.Auth.MFADisabled,
	}, authroles.StaticRoleMapper{Registry: reg})

	if cfg.Logger != nil {
		if admin.Password == "" {
			cfg.Logger.Warn("ADMIN_PASSWORD is empty; back-office login is disabled")
		}
		if !cfg.Auth.MFADisabled && admin.TOTPSecret == "" {
			cfg.Logger.Warn("MFA enabled but ADMIN_TOTP_SECRET is empty; back-office login is password-only")
		}
	}

	staff, err := service.NewAuthService(service.AuthServiceOptions{
		Directory:  staffDir,
		Registry:   reg,
		Tokens:     codecs,
		MFA:        totp.Verifier{Now: now},
		Audit:      cfg.Audit,
		Metrics:    cfg.Metrics,
		Logger:     cfg.Logger,
		Now:        now,
		SessionTTL: cfg.Auth.SessionTTL,
		PreAuthTTL: cfg.Auth.PreAuthTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build staff auth service: %w", err)
	}

	p := cfg.Auth.Patient
	patientDir := devauth.NewPatientDirectory(devauth.PatientConfig{
		ID:          p.ID,
		Email:       p.Email,
		Password:    p.Password,
		Name:        p.Name,
		AccessToken: p.AccessToken,
	})
	if cfg.Logger != nil && !patientDir.Usable() {
		cfg.Logger.Warn("DEMO_PATIENT_PASSWORD or DEMO_PATIENT_ACCESS_TOKEN is empty; patient portal login is disabled")
	}

	patient, err := service.NewPatientAuthService(service.PatientAuthServiceOptions{
		Directory:  patientDir,
		Tokens:     codecs,
		Audit:      cfg.Audit,
		Metrics:    cfg.Metrics,
		Logger:     cfg.Logger,
		Now:        now,
		SessionTTL: cfg.Auth.PatientSessionTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build patient auth service: %w", err)
	}

	return &AuthServices{Staff: staff, Patient: patient, Registry: reg}, nil
}
