package metadata

// Transition is one edge of a space's workflow: items in From may move to To
// when the acting user holds one of Roles and every field in Required has a
// value.
type Transition struct {
	from     State
	to       State
	roles    []string
	required []string
}

func (t Transition) From() State {
	return t.from
}

func (t Transition) To() State {
	return t.to
}

func (t Transition) Roles() []string {
	rolesCopy := make([]string, len(t.roles))
	copy(rolesCopy, t.roles)
	return rolesCopy
}

func (t Transition) Required() []string {
	requiredCopy := make([]string, len(t.required))
	copy(requiredCopy, t.required)
	return requiredCopy
}

// AllowsRole reports whether a holder of roleKey may take this transition.
func (t Transition) AllowsRole(roleKey string) bool {
	for _, r := range t.roles {
		if r == roleKey {
			return true
		}
	}
	return false
}

// AllowsAnyRole reports whether any of roleKeys may take this transition.
func (t Transition) AllowsAnyRole(roleKeys []string) bool {
	for _, r := range roleKeys {
		if t.AllowsRole(r) {
			return true
		}
	}
	return false
}
