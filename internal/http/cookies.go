package httpx

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names.
const (
	StaffSessionCookie   = "sgi_session"
	PatientSessionCookie = "sgi_patient_session"
	PreAuthCookie        = "sgi_preauth"
)

// CookieConfig controls attributes shared by every auth cookie.
type CookieConfig struct {
	Domain string
	// Secure forces the Secure attribute. Requests arriving over TLS (directly or via a
	// proxy setting X-Forwarded-Proto) always get it.
	Secure bool
}

type cookieSpec struct {
	name     string
	sameSite http.SameSite
	ttl      time.Duration
}

func staffSessionSpec(ttl time.Duration) cookieSpec {
	return cookieSpec{name: StaffSessionCookie, sameSite: http.SameSiteLaxMode, ttl: ttl}
}

func patientSessionSpec(ttl time.Duration) cookieSpec {
	return cookieSpec{name: PatientSessionCookie, sameSite: http.SameSiteStrictMode, ttl: ttl}
}

func preAuthSpec(ttl time.Duration) cookieSpec {
	return cookieSpec{name: PreAuthCookie, sameSite: http.SameSiteLaxMode, ttl: ttl}
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// set writes an http-only cookie scoped to the whole site.
func (c CookieConfig) set(w http.ResponseWriter, r *http.Request, spec cookieSpec, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     spec.name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: spec.sameSite,
		MaxAge:   int(spec.ttl.Seconds()),
		Expires:  time.Now().Add(spec.ttl).UTC(),
	})
}

// clear expires a cookie. It mirrors the attributes used when setting it so every
// browser matches and drops the original.
func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request, spec cookieSpec) {
	http.SetCookie(w, &http.Cookie{
		Name:     spec.name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: spec.sameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
