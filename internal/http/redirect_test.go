package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/admin"},
		{"/admin/stock", "/admin/stock"},
		{"/admin/stock?page=2#top", "/admin/stock?page=2#top"},
		{"//evil.example", "/admin"},
		{"/\\evil.example", "/admin"},
		{"https://evil.example/admin", "/admin"},
		{"javascript:alert(1)", "/admin"},
		{"admin/stock", "/admin"},
		{"%zz", "/admin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.in, "/admin"), tt.in)
	}
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/admin/login", withQuery("/admin/login"))
	assert.Equal(t, "/admin/login", withQuery("/admin/login", "next", ""))
	assert.Equal(t, "/admin/login?error=1&next=%2Fadmin", withQuery("/admin/login", "next", "/admin", "error", "1"))
}

func TestRespondRedirect(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	respondRedirect(rec, req, "/admin")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec = httptest.NewRecorder()
	respondRedirect(rec, req, "/admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirect_to":"/admin"}`, rec.Body.String())
}
