package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/cnts-sn/sgi-cnts/internal/auth/session"
	"github.com/cnts-sn/sgi-cnts/internal/auth/totp"
	domainauth "github.com/cnts-sn/sgi-cnts/internal/domain/auth"
	"github.com/cnts-sn/sgi-cnts/internal/domain/rbac"
	authmocks "github.com/cnts-sn/sgi-cnts/internal/mocks/auth"
	"github.com/cnts-sn/sgi-cnts/internal/observability/metrics"
	"github.com/cnts-sn/sgi-cnts/internal/service"
	"github.com/cnts-sn/sgi-cnts/internal/testutil"
)

const (
	testStaffEmail    = "admin@cnts.sn"
	testStaffPassword = "s3cret"
	testPatientEmail  = "patient@cnts.local"
	testPatientPass   = "patient"
	testTOTPSecret    = "JBSWY3DPEHPK3PXP"
)

type envOptions struct {
	MFA   bool
	Roles []string
}

type testEnv struct {
	handler  http.Handler
	clock    *testutil.Clock
	codecs   *session.Codecs
	staff    *service.AuthService
	patient  *service.PatientAuthService
	sink     *authmocks.RecordingAuditSink
	promReg  *prometheus.Registry
	registry *rbac.Registry
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	clock := testutil.NewClock(testutil.TestTime())
	reg := rbac.DefaultRegistry()
	sink := &authmocks.RecordingAuditSink{}
	promReg := prometheus.NewRegistry()
	m, err := metrics.NewAuthMetrics(promReg)
	require.NoError(t, err)

	codecs, err := session.NewCodecs(session.Config{
		StaffSecret:   []byte(strings.Repeat("s", 32)),
		PatientSecret: []byte(strings.Repeat("p", 32)),
		PreAuthSecret: []byte(strings.Repeat("a", 32)),
		Now:           clock.Now,
	})
	require.NoError(t, err)

	roles := opts.Roles
	if roles == nil {
		roles = []string{rbac.KeyAdmin}
	}
	user := domainauth.StaffUser{
		ID:          "admin",
		Email:       testStaffEmail,
		DisplayName: "Administrateur",
		Password:    testStaffPassword,
		Roles:       reg.Resolve(roles),
	}
	if opts.MFA {
		user.MFAEnabled = true
		user.TOTPSecret = testTOTPSecret
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	staff, err := service.NewAuthService(service.AuthServiceOptions{
		Directory: authmocks.NewStaffDirectory(user),
		Registry:  reg,
		Tokens:    codecs,
		MFA:       totp.Verifier{Now: clock.Now},
		Audit:     sink,
		Metrics:   m,
		Logger:    logger,
		Now:       clock.Now,
	})
	require.NoError(t, err)

	patient, err := service.NewPatientAuthService(service.PatientAuthServiceOptions{
		Directory: authmocks.NewPatientDirectory(domainauth.PatientUser{
			ID:          "patient-demo",
			Email:       testPatientEmail,
			DisplayName: "Patient Démo",
			Password:    testPatientPass,
			AccessToken: "upstream-token",
		}),
		Tokens:  codecs,
		Audit:   sink,
		Metrics: m,
		Logger:  logger,
		Now:     clock.Now,
	})
	require.NoError(t, err)

	h := NewRouter(RouterServices{
		Staff:   staff,
		Patient: patient,
		Roles:   reg.All,
		Audit:   sink,
		Metrics: m,
		Logger:  logger,
	})
	return &testEnv{
		handler:  h,
		clock:    clock,
		codecs:   codecs,
		staff:    staff,
		patient:  patient,
		sink:     sink,
		promReg:  promReg,
		registry: reg,
	}
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) staffCookie(t *testing.T, sess domainauth.StaffSession) *http.Cookie {
	t.Helper()
	raw, err := e.codecs.SignStaff(sess, service.DefaultSessionTTL)
	require.NoError(t, err)
	return &http.Cookie{Name: StaffSessionCookie, Value: raw}
}

func (e *testEnv) totpCode(t *testing.T) string {
	t.Helper()
	code, err := totp.Code(testTOTPSecret, e.clock.Now())
	require.NoError(t, err)
	return code
}

// responseCookie returns the named Set-Cookie from rec, or nil.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func loginForm(email, password, next string) url.Values {
	v := url.Values{}
	v.Set("email", email)
	v.Set("password", password)
	if next != "" {
		v.Set("next", next)
	}
	return v
}
