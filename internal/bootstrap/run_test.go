package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnts-sn/sgi-cnts/config"
	"github.com/cnts-sn/sgi-cnts/internal/adapters/memaudit"
)

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Auth:  testAuthConfig(),
		HTTP:  config.HTTPConfig{Addr: "127.0.0.1:0"},
		Audit: config.AuditConfig{Sink: config.AuditSinkMemory, Capacity: 20},
		Observability: config.ObservabilityConfig{
			Metrics: config.ObservabilityMetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}
	return cfg
}

func TestBuildHTTPHandler_LoginAndMetrics(t *testing.T) {
	cfg := testAppConfig()
	ring := memaudit.NewRing(cfg.Audit.Capacity)
	m, err := BuildMetrics(cfg.Observability.Metrics)
	require.NoError(t, err)
	svcs, err := BuildAuthServices(AuthConfig{Auth: cfg.Auth, Audit: ring, Metrics: m.Auth, Logger: discardLogger()})
	require.NoError(t, err)

	h := BuildHTTPHandler(HTTPHandlerConfig{
		Config: cfg, Auth: svcs, Audit: ring, Metrics: m, Logger: discardLogger(),
	})

	form := url.Values{"email": {"admin@cnts.sn"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sgi_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	// Production mode marks cookies Secure.
	assert.True(t, session.Secure)

	scrape := httptest.NewRecorder()
	h.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(),
		`sgi_auth_attempts_total{actor="staff",result="success",step="password"} 1`)
	assert.Contains(t, scrape.Body.String(), "go_goroutines")
}

func TestBuildHTTPHandler_DevCookies(t *testing.T) {
	cfg := testAppConfig()
	cfg.IsDev = true
	svcs, err := BuildAuthServices(AuthConfig{Auth: cfg.Auth})
	require.NoError(t, err)
	h := BuildHTTPHandler(HTTPHandlerConfig{Config: cfg, Auth: svcs, Logger: discardLogger()})

	form := url.Values{"email": {"patient@cnts.local"}, "password": {"patient"}}
	req := httptest.NewRequest(http.MethodPost, "/api/patient/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sgi_patient_session", cookies[0].Name)
	assert.False(t, cookies[0].Secure)
}

func TestBuildHTTPHandler_LogsRequests(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	cfg := testAppConfig()
	svcs, err := BuildAuthServices(AuthConfig{Auth: cfg.Auth})
	require.NoError(t, err)
	h := BuildHTTPHandler(HTTPHandlerConfig{Config: cfg, Auth: svcs, Logger: logger})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"path":"/healthz"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestBuildMetrics_Disabled(t *testing.T) {
	m, err := BuildMetrics(config.ObservabilityMetricsConfig{Enabled: false, Path: "/metrics"})
	require.NoError(t, err)
	assert.NotNil(t, m.Auth)
	assert.Nil(t, m.Handler)
}

func TestRun_RejectsInvalidConfig(t *testing.T) {
	cfg := testAppConfig()
	cfg.Auth.PreAuthSecret = cfg.Auth.SessionSecret

	err := Run(context.Background(), RunConfig{Config: cfg, Logger: discardLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_PREAUTH_SECRET must differ from AUTH_SESSION_SECRET")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, RunConfig{Config: testAppConfig(), Logger: discardLogger(), Listener: ln, Ready: ready})
	}()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"sgi-cnts"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}
