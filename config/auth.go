package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinSecretLength is the minimum HMAC key length, in bytes, for every signing secret.
const MinSecretLength = 32

// AdminConfig describes the seeded back-office account.
type AdminConfig struct {
	ID          string `env:"ID"           envDefault:"admin"`
	Email       string `env:"EMAIL"        envDefault:"admin@cnts.sn"`
	Password    string `env:"PASSWORD"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Administrateur"`
	// Roles is a comma-separated list of role keys or ids; empty means administrator.
	Roles      string `env:"ROLES"`
	TOTPSecret string `env:"TOTP_SECRET"`
}

// DemoPatientConfig describes the seeded patient portal account.
type DemoPatientConfig struct {
	ID          string `env:"ID"           envDefault:"patient-demo"`
	Email       string `env:"EMAIL"        envDefault:"patient@cnts.local"`
	Password    string `env:"PASSWORD"`
	Name        string `env:"NAME"         envDefault:"Patient Démo"`
	AccessToken string `env:"ACCESS_TOKEN"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	Admin   AdminConfig       `envPrefix:"ADMIN_"`
	Patient DemoPatientConfig `envPrefix:"DEMO_PATIENT_"`

	// Three independent HMAC keys, one per token flavour.
	SessionSecret        string `env:"AUTH_SESSION_SECRET"`
	PatientSessionSecret string `env:"PATIENT_SESSION_SECRET"`
	PreAuthSecret        string `env:"AUTH_PREAUTH_SECRET"`

	// MFADisabled is the single MFA policy switch.
	MFADisabled bool `env:"AUTH_MFA_DISABLED" envDefault:"false"`

	SessionTTL        time.Duration `env:"AUTH_SESSION_TTL"    envDefault:"8h"`
	PatientSessionTTL time.Duration `env:"PATIENT_SESSION_TTL" envDefault:"8h"`
	PreAuthTTL        time.Duration `env:"AUTH_PREAUTH_TTL"    envDefault:"5m"`
}

// Sanitize trims identity fields.
func (c *AuthConfig) Sanitize() {
	c.Admin.Email = strings.TrimSpace(c.Admin.Email)
	c.Admin.TOTPSecret = strings.ReplaceAll(strings.TrimSpace(c.Admin.TOTPSecret), " ", "")
	c.Patient.Email = strings.TrimSpace(c.Patient.Email)
}

// Validate checks signing secrets, token lifetimes and the seeded patient account.
func (c *AuthConfig) Validate() error {
	secrets := []struct {
		name, value string
	}{
		{"AUTH_SESSION_SECRET", c.SessionSecret},
		{"PATIENT_SESSION_SECRET", c.PatientSessionSecret},
		{"AUTH_PREAUTH_SECRET", c.PreAuthSecret},
	}

	var errs []error
	for i, s := range secrets {
		switch {
		case s.value == "":
			errs = append(errs, fmt.Errorf("%s is required", s.name))
			continue
		case len(s.value) < MinSecretLength:
			errs = append(errs, fmt.Errorf("%s must be at least %d bytes", s.name, MinSecretLength))
		}
		for _, other := range secrets[:i] {
			if other.value == s.value {
				errs = append(errs, fmt.Errorf("%s must differ from %s", s.name, other.name))
			}
		}
	}

	if c.Patient.Password != "" && strings.TrimSpace(c.Patient.AccessToken) == "" {
		errs = append(errs, errors.New("DEMO_PATIENT_ACCESS_TOKEN is required when DEMO_PATIENT_PASSWORD is set"))
	}

	ttls := []struct {
		name  string
		value time.Duration
	}{
		{"AUTH_SESSION_TTL", c.SessionTTL},
		{"PATIENT_SESSION_TTL", c.PatientSessionTTL},
		{"AUTH_PREAUTH_TTL", c.PreAuthTTL},
	}
	for _, ttl := range ttls {
		if ttl.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", ttl.name))
		}
	}
	return errors.Join(errs...)
}
