package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cnts-sn/sgi-cnts/internal/service"
)

// PatientHandlers provides HTTP handlers for the patient portal.
type PatientHandlers struct {
	Svc     PatientAuth
	Cookies CookieConfig
	Logger  *slog.Logger
}

// patientView is what the portal exposes about the signed-in patient. The upstream
// access token stays in the cookie.
type patientView struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// LoginPage renders the patient login page state.
// GET /patient/login.
func (h *PatientHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	state := pageState(r, PatientHomePath)
	if _, ok := h.Svc.Resolve(cookieValue(r, PatientSessionCookie)); ok {
		http.Redirect(w, r, state.Next, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

// Login handles the patient password login.
// POST /api/patient/login (form: email, password, next).
func (h *PatientHandlers) Login(w http.ResponseWriter, r *http.Request) {
	next := safeRedirectPath(r.FormValue("next"), PatientHomePath)
	res, err := h.Svc.Login(r.Context(), service.LoginInput{
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		RemoteAddr: r.RemoteAddr,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			rejectTo(w, r, withQuery(PatientLoginPath, "error", "1", "next", next))
			return
		}
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "patient login failed", "error", err)
		}
		WriteAppError(w, err)
		return
	}

	h.Cookies.set(w, r, patientSessionSpec(h.Svc.SessionTTL()), res.SessionToken)
	respondRedirect(w, r, next)
}

// Logout deletes the patient session cookie; it succeeds without a session too.
// POST /api/patient/logout.
func (h *PatientHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Svc.Logout(r.Context(), cookieValue(r, PatientSessionCookie), r.RemoteAddr)
	h.Cookies.clear(w, r, patientSessionSpec(0))
	respondRedirect(w, r, PatientLoginPath)
}

// Me returns the signed-in patient. The gate guarantees a session is present.
// GET /patient, GET /api/patient/me.
func (h *PatientHandlers) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := PatientSessionFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}
	WriteJSON(w, http.StatusOK, patientView{UserID: s.UserID, Email: s.Email, DisplayName: s.DisplayName})
}
