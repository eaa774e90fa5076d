package rbac

// Business capability areas of the back office.
const (
	ModuleDonneurs     = "donneurs"
	ModuleCollectes    = "collectes"
	ModuleAnalyses     = "analyses"
	ModuleLiberation   = "liberation"
	ModuleStock        = "stock"
	ModuleDistribution = "distribution"
	ModuleHopitaux     = "hopitaux"
	ModuleAudit        = "audit"
	ModuleUtilisateurs = "utilisateurs"
	ModuleContenus     = "contenus"
)

// Modules lists every module known to the catalog.
var Modules = []string{
	ModuleDonneurs,
	ModuleCollectes,
	ModuleAnalyses,
	ModuleLiberation,
	ModuleStock,
	ModuleDistribution,
	ModuleHopitaux,
	ModuleAudit,
	ModuleUtilisateurs,
	ModuleContenus,
}

// Registry keys of the built-in roles.
const (
	KeyAdmin             = "admin"
	KeyMedecin           = "medecin"
	KeyBiologiste        = "biologiste"
	KeyAgentStock        = "agentStock"
	KeyAgentCollecte     = "agentCollecte"
	KeyAgentDistribution = "agentDistribution"
	KeyQualite           = "qualite"
	KeyLectureSeule      = "lectureSeule"
	KeyEditeur           = "editeur"
)

// Registry is a fixed catalog of roles addressable by id and by key.
// It is built once and never mutated, so it is safe for concurrent use.
type Registry struct {
	roles []Role
	byID  map[string]int
	byKey map[string]int
}

// NewRegistry builds a registry from roles. Later entries with an id or key already
// present are ignored.
func NewRegistry(roles ...Role) *Registry {
	reg := &Registry{
		byID:  make(map[string]int, len(roles)),
		byKey: make(map[string]int, len(roles)),
	}
	for _, r := range roles {
		if r.id == "" || r.key == "" {
			continue
		}
		if _, ok := reg.byID[r.id]; ok {
			continue
		}
		if _, ok := reg.byKey[r.key]; ok {
			continue
		}
		reg.byID[r.id] = len(reg.roles)
		reg.byKey[r.key] = len(reg.roles)
		reg.roles = append(reg.roles, r)
	}
	return reg
}

// All returns every role in catalog order.
func (reg *Registry) All() []Role {
	return append([]Role(nil), reg.roles...)
}

// Keys returns the registry keys in catalog order.
func (reg *Registry) Keys() []string {
	keys := make([]string, len(reg.roles))
	for i, r := range reg.roles {
		keys[i] = r.key
	}
	return keys
}

// ByID looks a role up by its stable id.
func (reg *Registry) ByID(id string) (Role, bool) {
	i, ok := reg.byID[id]
	if !ok {
		return Role{}, false
	}
	return reg.roles[i], true
}

// ByKey looks a role up by its registry key.
func (reg *Registry) ByKey(key string) (Role, bool) {
	i, ok := reg.byKey[key]
	if !ok {
		return Role{}, false
	}
	return reg.roles[i], true
}

// Lookup tries ByID first and falls back to ByKey.
func (reg *Registry) Lookup(ref string) (Role, bool) {
	if r, ok := reg.ByID(ref); ok {
		return r, true
	}
	return reg.ByKey(ref)
}

// Resolve maps role references to roles, preserving order and duplicates.
// Unresolvable references are dropped.
func (reg *Registry) Resolve(refs []string) []Role {
	out := make([]Role, 0, len(refs))
	for _, ref := range refs {
		if r, ok := reg.Lookup(ref); ok {
			out = append(out, r)
		}
	}
	return out
}

func all(module string) []Permission {
	out := make([]Permission, 0, len(Actions))
	for _, a := range Actions {
		out = append(out, Perm(module, a))
	}
	return out
}

func readWrite(module string) []Permission {
	return []Permission{Perm(module, ActionRead), Perm(module, ActionWrite)}
}

func concat(groups ...[]Permission) []Permission {
	var out []Permission
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultRegistry returns the CNTS role catalog.
func DefaultRegistry() *Registry {
	var adminPerms []Permission
	for _, m := range Modules {
		adminPerms = append(adminPerms, all(m)...)
	}

	readOnly := make([]Permission, 0, 6)
	for _, m := range []string{
		ModuleDonneurs, ModuleCollectes, ModuleAnalyses,
		ModuleStock, ModuleDistribution, ModuleHopitaux,
	} {
		readOnly = append(readOnly, Perm(m, ActionRead))
	}

	return NewRegistry(
		NewRole("admin", KeyAdmin, "Administrateur", adminPerms...),
		NewRole("medecin", KeyMedecin, "Médecin",
			concat(
				readWrite(ModuleDonneurs),
				[]Permission{Perm(ModuleCollectes, ActionRead), Perm(ModuleAnalyses, ActionRead)},
			)...),
		NewRole("biologiste", KeyBiologiste, "Biologiste",
			concat(
				readWrite(ModuleAnalyses),
				[]Permission{Perm(ModuleLiberation, ActionValidate)},
			)...),
		NewRole("agent_stock", KeyAgentStock, "Agent de stock", readWrite(ModuleStock)...),
		NewRole("agent_collecte", KeyAgentCollecte, "Agent de collecte",
			concat(readWrite(ModuleCollectes), readWrite(ModuleDonneurs))...),
		NewRole("agent_distribution", KeyAgentDistribution, "Agent de distribution",
			concat(
				readWrite(ModuleDistribution),
				[]Permission{Perm(ModuleHopitaux, ActionRead), Perm(ModuleStock, ActionRead)},
			)...),
		NewRole("qualite", KeyQualite, "Responsable qualité",
			Perm(ModuleAudit, ActionRead),
			Perm(ModuleAnalyses, ActionRead),
			Perm(ModuleLiberation, ActionRead),
			Perm(ModuleLiberation, ActionValidate),
		),
		NewRole("lecture_seule", KeyLectureSeule, "Lecture seule", readOnly...),
		NewRole("editeur", KeyEditeur, "Éditeur de contenus",
			Perm(ModuleContenus, ActionRead),
			Perm(ModuleContenus, ActionWrite),
			Perm(ModuleContenus, ActionDelete),
		),
	)
}
