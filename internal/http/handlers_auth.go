package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cnts-sn/sgi-cnts/internal/service"
)

// AuthHandlers provides HTTP handlers for the back-office login flow.
type AuthHandlers struct {
	Svc     StaffAuth
	Cookies CookieConfig
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginPageState is the view model of the login and MFA pages.
type loginPageState struct {
	Error bool   `json:"error"`
	Next  string `json:"next"`
}

func pageState(r *http.Request, fallback string) loginPageState {
	q := r.URL.Query()
	return loginPageState{
		Error: q.Get("error") == "1",
		Next:  safeRedirectPath(q.Get("next"), fallback),
	}
}

// LoginPage renders the login page state. Authenticated users go straight to next.
// GET /admin/login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	state := pageState(r, StaffHomePath)
	if p, ok := h.Svc.Resolve(cookieValue(r, StaffSessionCookie)); ok && !h.Svc.StepUpRequired(p.Session) {
		http.Redirect(w, r, state.Next, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// MFAPage renders the MFA page state, or sends the user back to login when no
// first-factor proof is present.
// GET /admin/mfa.
func (h *AuthHandlers) MFAPage(w http.ResponseWriter, r *http.Request) {
	state := pageState(r, StaffHomePath)
	if !h.Svc.PendingMFA(cookieValue(r, PreAuthCookie)) {
		h.Cookies.clear(w, r, preAuthSpec(0))
		http.Redirect(w, r, withQuery(StaffLoginPath, "next", state.Next), http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// Login handles the password step.
// POST /api/auth/login (form: email, password, next).
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	next := safeRedirectPath(r.FormValue("next"), StaffHomePath)
	res, err := h.Svc.Login(r.Context(), service.LoginInput{
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			rejectTo(w, r, withQuery(StaffLoginPath, "error", "1", "next", next))
			return
		}
		h.logger().ErrorContext(r.Context(), "staff login failed", "error", err)
		WriteAppError(w, err)
		return
	}

	if res.Step == service.StepMFARequired {
		h.Cookies.set(w, r, preAuthSpec(h.Svc.PreAuthTTL()), res.PreAuthToken)
		respondRedirect(w, r, withQuery(StaffMFAPath, "next", next))
		return
	}

	h.Cookies.clear(w, r, preAuthSpec(0))
	h.Cookies.set(w, r, staffSessionSpec(h.Svc.SessionTTL()), res.SessionToken)
	respondRedirect(w, r, next)
}

// MFA handles the TOTP step. The pre-auth cookie is deleted once it is consumed; a
// wrong code keeps it so the user can retry until it expires.
// POST /api/auth/mfa (form: token, next).
func (h *AuthHandlers) MFA(w http.ResponseWriter, r *http.Request) {
	next := safeRedirectPath(r.FormValue("next"), StaffHomePath)
	res, err := h.Svc.CompleteMFA(r.Context(), service.MFAInput{
		PreAuthToken: cookieValue(r, PreAuthCookie),
		Code:         r.FormValue("token"),
		RemoteAddr:   r.RemoteAddr,
	})
	switch {
	case errors.Is(err, service.ErrPreAuthMissing):
		h.Cookies.clear(w, r, preAuthSpec(0))
		rejectTo(w, r, withQuery(StaffLoginPath, "next", next))
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		rejectTo(w, r, withQuery(StaffMFAPath, "error", "1", "next", next))
		return
	case err != nil:
		h.logger().ErrorContext(r.Context(), "staff mfa failed", "error", err)
		WriteAppError(w, err)
		return
	}

	h.Cookies.clear(w, r, preAuthSpec(0))
	h.Cookies.set(w, r, staffSessionSpec(h.Svc.SessionTTL()), res.SessionToken)
	respondRedirect(w, r, next)
}

// Logout deletes the session and any pending pre-auth cookie. It succeeds whether or
// not a session was present.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Svc.Logout(r.Context(), cookieValue(r, StaffSessionCookie), r.RemoteAddr)
	h.Cookies.clear(w, r, staffSessionSpec(0))
	h.Cookies.clear(w, r, preAuthSpec(0))
	respondRedirect(w, r, StaffLoginPath)
}

// Status returns the current authentication status with per-module rights.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Svc.Resolve(cookieValue(r, StaffSessionCookie))
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"mfa_pending":   h.Svc.PendingMFA(cookieValue(r, PreAuthCookie)),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated":    true,
		"step_up_required": h.Svc.StepUpRequired(p.Session),
		"user":             p.Session,
		"rights":           p.Rights(),
	})
}

// rejectTo sends a failed step back to a page. JSON clients get 401 with the target.
func rejectTo(w http.ResponseWriter, r *http.Request, location string) {
	if wantsJSON(r) {
		WriteJSON(w, http.StatusUnauthorized, map[string]string{
			"error":       "invalid_credentials",
			"redirect_to": location,
		})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
