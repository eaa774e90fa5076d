// Package auth contains domain-level types for identities and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import "github.com/cnts-sn/sgi-cnts/internal/domain/rbac"

// StaffUser is a back-office identity resolved by a staff directory.
// Roles may contain duplicates; order is irrelevant to authorization.
type StaffUser struct {
	ID          string
	Email       string
	DisplayName string
	Roles       []rbac.Role
	// MFAEnabled is true only when the deployment requires MFA and TOTPSecret is set.
	MFAEnabled bool
	TOTPSecret string
	Password   string
}

// RoleIDs returns the stable ids of the user's roles, in order.
func (u StaffUser) RoleIDs() []string {
	ids := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		ids[i] = r.ID()
	}
	return ids
}

// PatientUser is a patient-portal identity resolved by a patient directory.
type PatientUser struct {
	ID          string
	Email       string
	DisplayName string
	Password    string
	// AccessToken is the upstream bearer credential forwarded to the clinical API.
	AccessToken string
}

// StaffSession is the set of claims carried by a back-office session token.
type StaffSession struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	RoleIDs     []string `json:"roleIds"`
	MFA         bool     `json:"mfa"`
}

// PatientSession is the set of claims carried by a patient-portal session token.
type PatientSession struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AccessToken string `json:"accessToken"`
}

// PreAuth proves the first factor was verified and MFA is pending.
type PreAuth struct {
	Email string `json:"email"`
}

// Principal is a verified staff session with its roles resolved through the registry.
type Principal struct {
	Session StaffSession
	Roles   []rbac.Role
}

// Can reports whether the principal holds p.
func (p Principal) Can(perm rbac.Permission) bool {
	return rbac.HasPermission(p.Roles, perm)
}

// Rights returns the principal's per-module capabilities.
func (p Principal) Rights() map[string]rbac.Rights {
	return rbac.RightsByModule(p.Roles)
}
