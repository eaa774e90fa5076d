package rbac

import "encoding/json"

// Role is an immutable, named bundle of permissions.
// The zero value grants nothing.
type Role struct {
	id    string
	key   string
	name  string
	perms []Permission
	set   map[Permission]struct{}
}

// NewRole constructs a Role. Duplicate permissions are collapsed and invalid actions
// are dropped; perms is copied so later mutation of the argument has no effect.
func NewRole(id, key, name string, perms ...Permission) Role {
	r := Role{
		id:   id,
		key:  key,
		name: name,
		set:  make(map[Permission]struct{}, len(perms)),
	}
	for _, p := range perms {
		if !p.Action.Valid() || p.Module == "" {
			continue
		}
		if _, dup := r.set[p]; dup {
			continue
		}
		r.set[p] = struct{}{}
		r.perms = append(r.perms, p)
	}
	return r
}

// ID is the stable, globally unique identifier stored in session claims.
func (r Role) ID() string { return r.id }

// Key is the registry key used by manual configuration.
func (r Role) Key() string { return r.key }

// Name is the display name.
func (r Role) Name() string { return r.name }

// Has reports whether the role grants exactly p.
func (r Role) Has(p Permission) bool {
	_, ok := r.set[p]
	return ok
}

// Permissions returns a copy of the role's permissions in declaration order.
func (r Role) Permissions() []Permission {
	return append([]Permission(nil), r.perms...)
}

// MarshalJSON renders the role for the permission matrix.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string       `json:"id"`
		Key         string       `json:"key"`
		Name        string       `json:"name"`
		Permissions []Permission `json:"permissions"`
	}{r.id, r.key, r.name, r.Permissions()})
}
