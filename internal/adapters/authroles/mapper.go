package authroles

import (
	"strings"

	"github.com/cnts-sn/sgi-cnts/internal/domain/rbac"
)

// StaticRoleMapper turns a comma-separated role list from configuration into roles.
// Each token is matched against the registry by id first, then by key.
type StaticRoleMapper struct {
	Registry *rbac.Registry
	// DefaultKey is used when the configured list is empty (default "admin").
	DefaultKey string
}

// Map resolves raw. Unknown tokens are dropped; an empty list yields the default role.
func (m StaticRoleMapper) Map(raw string) []rbac.Role {
	reg := m.Registry
	if reg == nil {
		reg = rbac.DefaultRegistry()
	}

	refs := Split(raw)
	if len(refs) == 0 {
		key := m.DefaultKey
		if key == "" {
			key = rbac.KeyAdmin
		}
		if r, ok := reg.ByKey(key); ok {
			return []rbac.Role{r}
		}
		return nil
	}
	return reg.Resolve(refs)
}

// Split breaks a comma-separated list into trimmed, non-empty tokens.
func Split(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
