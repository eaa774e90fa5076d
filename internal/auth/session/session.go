// Package session issues and verifies the back-office session, patient session and
// pre-auth tokens. Each flavour has its own claim shape, secret and issuer; a token of
// one flavour never verifies as another.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/cnts-sn/sgi-cnts/internal/auth/token"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
)

const (
	issuerStaff   = "sgi-cnts/staff"
	issuerPatient = "sgi-cnts/patient"
	issuerPreAuth = "sgi-cnts/preauth"
)

var errMissingClaim = errors.New("missing required claim")

type staffClaims struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	RoleIDs     []string `json:"roleIds"`
	MFA         *bool    `json:"mfa"`
	token.Registered
}

func (c *staffClaims) Validate() error {
	if c.UserID == "" || c.Email == "" || c.DisplayName == "" || c.RoleIDs == nil || c.MFA == nil {
		return errMissingClaim
	}
	return nil
}

type patientClaims struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AccessToken string `json:"accessToken"`
	token.Registered
}

func (c *patientClaims) Validate() error {
	if c.UserID == "" || c.Email == "" || c.DisplayName == "" || c.AccessToken == "" {
		return errMissingClaim
	}
	return nil
}

type preAuthClaims struct {
	Email string `json:"email"`
	token.Registered
}

func (c *preAuthClaims) Validate() error {
	if c.Email == "" {
		return errMissingClaim
	}
	return nil
}

// Config carries the three independent signing secrets.
type Config struct {
	StaffSecret   []byte
	PatientSecret []byte
	PreAuthSecret []byte
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Codecs signs and verifies every token flavour. It is safe for concurrent use.
type Codecs struct {
	staff   *token.Codec[staffClaims, *staffClaims]
	patient *token.Codec[patientClaims, *patientClaims]
	preAuth *token.Codec[preAuthClaims, *preAuthClaims]
}

// NewCodecs builds the codecs from cfg.
func NewCodecs(cfg Config) (*Codecs, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	staff, err := token.New[staffClaims](cfg.StaffSecret, token.WithIssuer(issuerStaff), token.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("staff session codec: %w", err)
	}
	patient, err := token.New[patientClaims](cfg.PatientSecret, token.WithIssuer(issuerPatient), token.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("patient session codec: %w", err)
	}
	preAuth, err := token.New[preAuthClaims](cfg.PreAuthSecret, token.WithIssuer(issuerPreAuth), token.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("pre-auth codec: %w", err)
	}
	return &Codecs{staff: staff, patient: patient, preAuth: preAuth}, nil
}

// SignStaff issues a back-office session token.
func (c *Codecs) SignStaff(s domainauth.StaffSession, ttl time.Duration) (string, error) {
	mfa := s.MFA
	roleIDs := s.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return c.staff.Sign(staffClaims{
		UserID:      s.UserID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		RoleIDs:     roleIDs,
		MFA:         &mfa,
	}, ttl)
}

// VerifyStaff returns the session carried by raw, or false for any invalid token.
func (c *Codecs) VerifyStaff(raw string) (domainauth.StaffSession, bool) {
	claims, ok := c.staff.Verify(raw)
	if !ok {
		return domainauth.StaffSession{}, false
	}
	return domainauth.StaffSession{
		UserID:      claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		RoleIDs:     claims.RoleIDs,
		MFA:         *claims.MFA,
	}, true
}

// SignPatient issues a patient-portal session token.
func (c *Codecs) SignPatient(s domainauth.PatientSession, ttl time.Duration) (string, error) {
	return c.patient.Sign(patientClaims{
		UserID:      s.UserID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		AccessToken: s.AccessToken,
	}, ttl)
}

// VerifyPatient returns the session carried by raw, or false for any invalid token.
func (c *Codecs) VerifyPatient(raw string) (domainauth.PatientSession, bool) {
	claims, ok := c.patient.Verify(raw)
	if !ok {
		return domainauth.PatientSession{}, false
	}
	return domainauth.PatientSession{
		UserID:      claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		AccessToken: claims.AccessToken,
	}, true
}

// SignPreAuth issues a short-lived pre-auth token.
func (c *Codecs) SignPreAuth(p domainauth.PreAuth, ttl time.Duration) (string, error) {
	return c.preAuth.Sign(preAuthClaims{Email: p.Email}, ttl)
}

// VerifyPreAuth returns the pre-auth state carried by raw, or false for any invalid token.
func (c *Codecs) VerifyPreAuth(raw string) (domainauth.PreAuth, bool) {
	claims, ok := c.preAuth.Verify(raw)
	if !ok {
		return domainauth.PreAuth{}, false
	}
	return domainauth.PreAuth{Email: claims.Email}, true
}
