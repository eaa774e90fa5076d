// Package rbac contains the back-office authorization model: permissions, roles and
// the predicates page and route handlers use to decide what an identity may do.
// It is pure and free of I/O.
package rbac

// Action is one of the closed set of verbs a permission may grant.
type Action string

const (
	ActionRead     Action = "read"
	ActionWrite    Action = "write"
	ActionDelete   Action = "delete"
	ActionValidate Action = "validate"
)

// Actions lists every valid action in display order.
var Actions = []Action{ActionRead, ActionWrite, ActionDelete, ActionValidate}

// Valid reports whether a is part of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionWrite, ActionDelete, ActionValidate:
		return true
	default:
		return false
	}
}

// Permission is a (module, action) capability unit. Equality is structural.
type Permission struct {
	Module string `json:"module"`
	Action Action `json:"action"`
}

// Perm builds a Permission.
func Perm(module string, action Action) Permission {
	return Permission{Module: module, Action: action}
}

func (p Permission) String() string { return p.Module + ":" + string(p.Action) }

// Rights is the per-module capability record produced by RightsByModule.
type Rights struct {
	Read     bool `json:"read"`
	Write    bool `json:"write"`
	Delete   bool `json:"delete"`
	Validate bool `json:"validate"`
}

func (r *Rights) grant(a Action) {
	switch a {
	case ActionRead:
		r.Read = true
	case ActionWrite:
		r.Write = true
	case ActionDelete:
		r.Delete = true
	case ActionValidate:
		r.Validate = true
	}
}

// HasPermission reports whether any role grants exactly p.
// There is no wildcard or implication between actions: write does not imply read.
func HasPermission(roles []Role, p Permission) bool {
	for _, r := range roles {
		if r.Has(p) {
			return true
		}
	}
	return false
}

// RightsByModule folds every permission of every role into a per-module record.
// Modules with no granted permission are absent from the result.
func RightsByModule(roles []Role) map[string]Rights {
	out := make(map[string]Rights)
	for _, r := range roles {
		for _, p := range r.perms {
			rights := out[p.Module]
			rights.grant(p.Action)
			out[p.Module] = rights
		}
	}
	return out
}
