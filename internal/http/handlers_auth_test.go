package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnts-sn/sgi-cnts/internal/domain/audit"
)

func TestAuthHandlers_LoginWithoutMFA(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.postForm("/api/auth/login", loginForm(" ADMIN@cnts.sn", testStaffPassword, "/admin?tab=dons"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?tab=dons", rec.Header().Get("Location"))

	ck := responseCookie(rec, StaffSessionCookie)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, 8*60*60, ck.MaxAge)
	assert.False(t, ck.Secure)

	dash := env.get("/admin", ck)
	require.Equal(t, http.StatusOK, dash.Code)
	var body struct {
		Rights map[string]map[string]bool `json:"rights"`
	}
	require.NoError(t, json.Unmarshal(dash.Body.Bytes(), &body))
	assert.True(t, body.Rights["donneurs"]["delete"])
}

func TestAuthHandlers_LoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for _, form := range []url.Values{
		loginForm("nobody@cnts.sn", testStaffPassword, "/admin/stock"),
		loginForm(testStaffEmail, "wrong", "/admin/stock"),
	} {
		rec := env.postForm("/api/auth/login", form)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login?error=1&next=%2Fadmin%2Fstock", rec.Header().Get("Location"))
		assert.Nil(t, responseCookie(rec, StaffSessionCookie))
		assert.Nil(t, responseCookie(rec, PreAuthCookie))
	}

	page := env.get("/admin/login?error=1&next=%2Fadmin%2Fstock")
	require.Equal(t, http.StatusOK, page.Code)
	assert.JSONEq(t, `{"error":true,"next":"/admin/stock"}`, page.Body.String())
}

func TestAuthHandlers_LoginJSONClient(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(loginForm(testStaffEmail, "wrong", "").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t,
		`{"error":"invalid_credentials","redirect_to":"/admin/login?error=1&next=%2Fadmin"}`,
		rec.Body.String())
}

func TestAuthHandlers_RejectsOpenRedirect(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for _, next := range []string{"https://evil.example/", "//evil.example", "javascript:alert(1)", "admin"} {
		rec := env.postForm("/api/auth/login", loginForm(testStaffEmail, testStaffPassword, next))
		require.Equal(t, http.StatusSeeOther, rec.Code, next)
		assert.Equal(t, "/admin", rec.Header().Get("Location"), next)
	}
}

func TestAuthHandlers_TwoStepLogin(t *testing.T) {
	env := newTestEnv(t, envOptions{MFA: true})

	rec := env.postForm("/api/auth/login", loginForm(testStaffEmail, testStaffPassword, "/admin/stock"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/mfa?next=%2Fadmin%2Fstock", rec.Header().Get("Location"))
	assert.Nil(t, responseCookie(rec, StaffSessionCookie))

	pre := responseCookie(rec, PreAuthCookie)
	require.NotNil(t, pre)
	assert.True(t, pre.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, pre.SameSite)
	assert.Equal(t, 5*60, pre.MaxAge)

	// The pre-auth cookie alone never opens the dashboard.
	gated := env.get("/admin", pre)
	require.Equal(t, http.StatusSeeOther, gated.Code)
	assert.Equal(t, "/admin/mfa?next=%2Fadmin", gated.Header().Get("Location"))

	page := env.get("/admin/mfa?next=%2Fadmin%2Fstock", pre)
	require.Equal(t, http.StatusOK, page.Code)
	assert.JSONEq(t, `{"error":false,"next":"/admin/stock"}`, page.Body.String())

	bad := url.Values{"token": {"12345"}, "next": {"/admin/stock"}}
	failed := env.postForm("/api/auth/mfa", bad, pre)
	require.Equal(t, http.StatusSeeOther, failed.Code)
	assert.Equal(t, "/admin/mfa?error=1&next=%2Fadmin%2Fstock", failed.Header().Get("Location"))
	assert.Nil(t, responseCookie(failed, PreAuthCookie), "failed code keeps the pre-auth cookie")

	good := url.Values{"token": {env.totpCode(t)}, "next": {"/admin/stock"}}
	done := env.postForm("/api/auth/mfa", good, pre)
	require.Equal(t, http.StatusSeeOther, done.Code)
	assert.Equal(t, "/admin/stock", done.Header().Get("Location"))

	cleared := responseCookie(done, PreAuthCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	sess := responseCookie(done, StaffSessionCookie)
	require.NotNil(t, sess)

	status := env.get("/api/auth/status", sess)
	require.Equal(t, http.StatusOK, status.Code)
	var body struct {
		Authenticated bool `json:"authenticated"`
		StepUp        bool `json:"step_up_required"`
		User          struct {
			MFA     bool     `json:"mfa"`
			RoleIDs []string `json:"roleIds"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.False(t, body.StepUp)
	assert.True(t, body.User.MFA)
	assert.Equal(t, []string{"admin"}, body.User.RoleIDs)

	var actions []string
	for _, ev := range env.sink.Events() {
		actions = append(actions, ev.Action+"/"+ev.Outcome)
	}
	assert.Equal(t, []string{"auth.login/pending", "auth.mfa/failure", "auth.mfa/success"}, actions)
}

func TestAuthHandlers_MFAWithoutPreAuthRestartsLogin(t *testing.T) {
	env := newTestEnv(t, envOptions{MFA: true})

	rec := env.postForm("/api/auth/mfa", url.Values{"token": {env.totpCode(t)}, "next": {"/admin/stock"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fstock", rec.Header().Get("Location"))
	assert.Nil(t, responseCookie(rec, StaffSessionCookie))

	page := env.get("/admin/mfa")
	require.Equal(t, http.StatusSeeOther, page.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin", page.Header().Get("Location"))
}

func TestAuthHandlers_MFAExpiredPreAuth(t *testing.T) {
	env := newTestEnv(t, envOptions{MFA: true})

	rec := env.postForm("/api/auth/login", loginForm(testStaffEmail, testStaffPassword, ""))
	pre := responseCookie(rec, PreAuthCookie)
	require.NotNil(t, pre)

	env.clock.Advance(env.staff.PreAuthTTL() + time.Second)
	done := env.postForm("/api/auth/mfa", url.Values{"token": {env.totpCode(t)}}, pre)
	require.Equal(t, http.StatusSeeOther, done.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin", done.Header().Get("Location"))
}

func TestAuthHandlers_LogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	anon := env.postForm("/api/auth/logout", nil)
	login := env.postForm("/api/auth/login", loginForm(testStaffEmail, testStaffPassword, ""))
	sess := responseCookie(login, StaffSessionCookie)
	require.NotNil(t, sess)
	authed := env.postForm("/api/auth/logout", nil, sess)

	for _, rec := range []*httptest.ResponseRecorder{anon, authed} {
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, StaffLoginPath, rec.Header().Get("Location"))
		ck := responseCookie(rec, StaffSessionCookie)
		require.NotNil(t, ck)
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}

	events := env.sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionLogout, events[1].Action)
}

func TestAuthHandlers_StatusAnonymous(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.get("/api/auth/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false,"mfa_pending":false}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAuthHandlers_LoginPageRedirectsWhenSignedIn(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	login := env.postForm("/api/auth/login", loginForm(testStaffEmail, testStaffPassword, ""))
	sess := responseCookie(login, StaffSessionCookie)
	require.NotNil(t, sess)

	rec := env.get("/admin/login?next=%2Fadmin%2Fstock", sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/stock", rec.Header().Get("Location"))
}

func TestCookies_SecureAttribute(t *testing.T) {
	spec := staffSessionSpec(0)

	tests := []struct {
		name   string
		cfg    CookieConfig
		header string
		want   bool
	}{
		{"dev over http", CookieConfig{}, "", false},
		{"production flag", CookieConfig{Secure: true}, "", true},
		{"behind tls proxy", CookieConfig{}, "https", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Forwarded-Proto", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.cfg.set(rec, req, spec, "v")
			ck := responseCookie(rec, StaffSessionCookie)
			require.NotNil(t, ck)
			assert.Equal(t, tt.want, ck.Secure)
		})
	}
}
