// Package devauth provides config-driven identity directories for the back office and
// the patient portal. Each directory models exactly one seeded account; it is not a
// general user database.
package devauth

import (
	"strings"

	"github.com/cnts-sn/sgi-cnts/internal/adapters/authroles"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

var (
	_ ports.StaffDirectory   = (*StaffDirectory)(nil)
	_ ports.PatientDirectory = (*PatientDirectory)(nil)
)

// StaffConfig describes the seeded back-office account.
type StaffConfig struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	// Roles is the raw comma-separated role list; empty means administrator.
	Roles      string
	TOTPSecret string
	// MFADisabled is the deployment-wide policy switch. When set, TOTPSecret is ignored.
	MFADisabled bool
}

// StaffDirectory resolves the seeded back-office identity.
// Records are rebuilt on every lookup from the configuration.
type StaffDirectory struct {
	cfg    StaffConfig
	mapper authroles.StaticRoleMapper
}

// NewStaffDirectory constructs a StaffDirectory.
func NewStaffDirectory(cfg StaffConfig, mapper authroles.StaticRoleMapper) *StaffDirectory {
	return &StaffDirectory{cfg: cfg, mapper: mapper}
}

// Lookup returns the seeded identity when email matches it case-insensitively.
func (d *StaffDirectory) Lookup(email string) (domainauth.StaffUser, bool) {
	if !sameEmail(d.cfg.Email, email) {
		return domainauth.StaffUser{}, false
	}

	secret := strings.TrimSpace(d.cfg.TOTPSecret)
	if d.cfg.MFADisabled {
		secret = ""
	}

	id := d.cfg.ID
	if id == "" {
		id = "admin"
	}
	name := d.cfg.DisplayName
	if name == "" {
		name = d.cfg.Email
	}

	return domainauth.StaffUser{
		ID:          id,
		Email:       d.cfg.Email,
		DisplayName: name,
		Roles:       d.mapper.Map(d.cfg.Roles),
		MFAEnabled:  secret != "",
		TOTPSecret:  secret,
		Password:    d.cfg.Password,
	}, true
}

// VerifyPassword compares candidate against the seeded password.
func (d *StaffDirectory) VerifyPassword(user domainauth.StaffUser, candidate string) bool {
	return PasswordMatches(user.Password, candidate)
}

func sameEmail(configured, candidate string) bool {
	configured = strings.TrimSpace(configured)
	candidate = strings.TrimSpace(candidate)
	return configured != "" && strings.EqualFold(configured, candidate)
}
