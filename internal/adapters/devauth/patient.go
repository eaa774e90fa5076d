package devauth

import domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"

// PatientConfig describes the seeded demo patient.
type PatientConfig struct {
	ID          string
	Email       string
	Password    string
	Name        string
	AccessToken string
}

// PatientDirectory resolves the seeded patient identity.
type PatientDirectory struct {
	cfg PatientConfig
}

// NewPatientDirectory constructs a PatientDirectory.
func NewPatientDirectory(cfg PatientConfig) *PatientDirectory {
	return &PatientDirectory{cfg: cfg}
}

// Usable reports whether the seeded patient can sign in. A patient session always
// carries the upstream access token, so an account without one is disabled.
func (d *PatientDirectory) Usable() bool {
	return d.cfg.Email != "" && d.cfg.Password != "" && d.cfg.AccessToken != ""
}

// Lookup returns the demo patient when email matches it case-insensitively.
// A disabled account never matches.
func (d *PatientDirectory) Lookup(email string) (domainauth.PatientUser, bool) {
	if !d.Usable() || !sameEmail(d.cfg.Email, email) {
		return domainauth.PatientUser{}, false
	}
	id := d.cfg.ID
	if id == "" {
		id = "patient-demo"
	}
	name := d.cfg.Name
	if name == "" {
		name = d.cfg.Email
	}
	return domainauth.PatientUser{
		ID:          id,
		Email:       d.cfg.Email,
		DisplayName: name,
		Password:    d.cfg.Password,
		AccessToken: d.cfg.AccessToken,
	}, true
}

// VerifyPassword compares candidate against the seeded password.
func (d *PatientDirectory) VerifyPassword(user domainauth.PatientUser, candidate string) bool {
	return PasswordMatches(user.Password, candidate)
}
