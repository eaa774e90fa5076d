package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
)

func TestDecideStaff(t *testing.T) {
	tests := []struct {
		name string
		in   GateInput
		want Verdict
	}{
		{
			name: "anonymous goes to login with return target",
			in:   GateInput{Target: "/admin/stock?page=2"},
			want: Verdict{Kind: VerdictLogin, Location: "/admin/login?next=%2Fadmin%2Fstock%3Fpage%3D2"},
		},
		{
			name: "valid session passes",
			in:   GateInput{Target: "/admin", Session: true},
			want: Verdict{Kind: VerdictAllow},
		},
		{
			name: "session missing mfa steps up",
			in:   GateInput{Target: "/admin", Session: true, StepUpRequired: true},
			want: Verdict{Kind: VerdictMFA, Location: "/admin/mfa?next=%2Fadmin"},
		},
		{
			name: "pending pre-auth resumes mfa",
			in:   GateInput{Target: "/admin", PreAuthPending: true},
			want: Verdict{Kind: VerdictMFA, Location: "/admin/mfa?next=%2Fadmin"},
		},
		{
			name: "unsafe target falls back to dashboard",
			in:   GateInput{Target: "//evil.example/x"},
			want: Verdict{Kind: VerdictLogin, Location: "/admin/login?next=%2Fadmin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideStaff(tt.in))
		})
	}
}

func TestDecidePatient(t *testing.T) {
	assert.Equal(t, Verdict{Kind: VerdictAllow}, DecidePatient(GateInput{Target: "/patient", Session: true}))
	assert.Equal(t,
		Verdict{Kind: VerdictLogin, Location: "/patient/login?next=%2Fpatient"},
		DecidePatient(GateInput{Target: "/patient"}))
	// Patients never get a step-up branch.
	assert.Equal(t, VerdictLogin, DecidePatient(GateInput{PreAuthPending: true}).Kind)
}

func TestIsPublicPath(t *testing.T) {
	public := []string{
		"/admin/login", "/admin/mfa", "/patient/login",
		"/api/auth/login", "/api/auth/mfa", "/api/auth/logout", "/api/auth/status",
		"/api/patient/login", "/api/patient/logout",
		"/static/app.css", "/favicon.ico", "/healthz", "/metrics",
	}
	for _, p := range public {
		assert.True(t, IsPublicPath(p), p)
	}
	private := []string{"/admin", "/admin/", "/admin/stock", "/api/admin/roles", "/patient", "/api/patient/me", "/admin/login/x"}
	for _, p := range private {
		assert.False(t, IsPublicPath(p), p)
	}
}

func TestGate_AnonymousRequests(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/admin", http.StatusSeeOther, "/admin/login?next=%2Fadmin"},
		{"/admin?tab=stock", http.StatusSeeOther, "/admin/login?next=%2Fadmin%3Ftab%3Dstock"},
		{"/patient", http.StatusSeeOther, "/patient/login?next=%2Fpatient"},
		{"/api/admin/roles", http.StatusUnauthorized, ""},
		{"/api/patient/me", http.StatusUnauthorized, ""},
		{"/healthz", http.StatusOK, ""},
		{"/admin/login", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.get(tt.path)
			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestGate_APIUnauthorizedBody(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.get("/api/admin/audit")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication_required", body["error"])
}

func TestGate_ExpiredSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ck := env.staffCookie(t, domainauth.StaffSession{
		UserID: "admin", Email: testStaffEmail, DisplayName: "A", RoleIDs: []string{"admin"},
	})

	assert.Equal(t, http.StatusOK, env.get("/admin", ck).Code)

	env.clock.Advance(8*time.Hour + time.Second)
	rec := env.get("/admin", ck)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin", rec.Header().Get("Location"))
}

func TestGate_PatientCookieDoesNotOpenBackOffice(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.postForm("/api/patient/login", loginForm(testPatientEmail, testPatientPass, ""))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	patient := responseCookie(rec, PatientSessionCookie)
	require.NotNil(t, patient)

	forged := &http.Cookie{Name: StaffSessionCookie, Value: patient.Value}
	assert.Equal(t, http.StatusSeeOther, env.get("/admin", forged).Code)
}

func TestGate_StepUpIssuesPreAuth(t *testing.T) {
	env := newTestEnv(t, envOptions{MFA: true})
	ck := env.staffCookie(t, domainauth.StaffSession{
		UserID: "admin", Email: testStaffEmail, DisplayName: "A", RoleIDs: []string{"admin"}, MFA: false,
	})

	rec := env.get("/admin", ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/mfa?next=%2Fadmin", rec.Header().Get("Location"))
	pre := responseCookie(rec, PreAuthCookie)
	require.NotNil(t, pre)
	assert.True(t, env.staff.PendingMFA(pre.Value))

	api := env.get("/api/admin/roles", ck)
	assert.Equal(t, http.StatusUnauthorized, api.Code)
	assert.Contains(t, api.Body.String(), "mfa_required")

	form := loginForm("", "", "/admin")
	form.Set("token", env.totpCode(t))
	done := env.postForm("/api/auth/mfa", form, pre)
	require.Equal(t, http.StatusSeeOther, done.Code)
	sess := responseCookie(done, StaffSessionCookie)
	require.NotNil(t, sess)
	assert.Equal(t, http.StatusOK, env.get("/admin", sess).Code)
}

func TestGate_RecordsDecisions(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.get("/admin")
	env.get("/patient")
	env.get("/healthz")

	const want = `
# HELP sgi_auth_gate_decisions_total Session gate decisions by gate and outcome.
# TYPE sgi_auth_gate_decisions_total counter
sgi_auth_gate_decisions_total{decision="login",gate="patient"} 1
sgi_auth_gate_decisions_total{decision="login",gate="staff"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(env.promReg, strings.NewReader(want), "sgi_auth_gate_decisions_total"))
}
