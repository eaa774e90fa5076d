package httpx

import (
	"log/slog"
	"net/http"

	"github.com/cnts-sn/sgi-cnts/internal/domain/rbac"
	"github.com/cnts-sn/sgi-cnts/internal/ports"
)

// Audit listing bounds.
const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AdminHandlers serves the back-office pages that sit behind the staff gate.
type AdminHandlers struct {
	Roles  func() []rbac.Role
	Audit  ports.AuditReader
	Logger *slog.Logger
}

// Dashboard returns the signed-in user and the modules they can use.
// GET /admin.
func (h *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user":   p.Session,
		"roles":  p.Roles,
		"rights": p.Rights(),
	})
}

// roleMatrixEntry is one row of the permission matrix.
type roleMatrixEntry struct {
	Role   rbac.Role              `json:"role"`
	Rights map[string]rbac.Rights `json:"rights"`
}

// RoleMatrix returns every role with its rights by module.
// GET /api/admin/roles (requires utilisateurs:read).
func (h *AdminHandlers) RoleMatrix(w http.ResponseWriter, _ *http.Request) {
	roles := h.Roles()
	out := make([]roleMatrixEntry, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleMatrixEntry{Role: role, Rights: rbac.RightsByModule([]rbac.Role{role})})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"modules": rbac.Modules,
		"actions": rbac.Actions,
		"roles":   out,
	})
}

// AuditLog returns the most recent audit events, newest first.
// GET /api/admin/audit?limit=N (requires audit:read).
func (h *AdminHandlers) AuditLog(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"events": []any{}})
		return
	}
	limit := ParseLimit(r, defaultAuditLimit, maxAuditLimit)
	events, err := h.Audit.Recent(r.Context(), limit)
	if err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "read audit log failed", "error", err)
		}
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
