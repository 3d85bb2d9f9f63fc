// Package metadata holds the per-space schema: custom fields, roles, the
// state set, and the state-transition table. A Metadata value is immutable
// once built; schema edits parse a fresh definition and swap the snapshot on
// the owning space, so concurrent readers never observe a half-updated schema.
package metadata

import "fmt"

type Metadata struct {
	fields      []Field
	fieldIndex  map[string]int
	roles       []Role
	roleIndex   map[string]int
	states      []State
	stateSet    map[State]bool
	stateFields map[State][]string
	transitions map[State][]Transition
}

// Fields returns the custom field definitions in declaration order.
func (m *Metadata) Fields() []Field {
	fieldsCopy := make([]Field, len(m.fields))
	copy(fieldsCopy, m.fields)
	return fieldsCopy
}

// FieldByName looks up a field definition by its name.
func (m *Metadata) FieldByName(name string) (Field, bool) {
	idx, ok := m.fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[idx], true
}

// FieldsFor returns the fields editable while an item sits in state, in
// declaration order. States with no explicit field list expose every field.
func (m *Metadata) FieldsFor(state State) []Field {
	names, ok := m.stateFields[state]
	if !ok {
		return m.Fields()
	}
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		if idx, ok := m.fieldIndex[name]; ok {
			fields = append(fields, m.fields[idx])
		}
	}
	return fields
}

// Roles returns the declared roles in declaration order.
func (m *Metadata) Roles() []Role {
	rolesCopy := make([]Role, len(m.roles))
	copy(rolesCopy, m.roles)
	return rolesCopy
}

// HasRole reports whether roleKey is declared by this schema.
func (m *Metadata) HasRole(roleKey string) bool {
	_, ok := m.roleIndex[roleKey]
	return ok
}

// RoleKeys returns the declared role keys in declaration order.
func (m *Metadata) RoleKeys() []string {
	keys := make([]string, len(m.roles))
	for i, r := range m.roles {
		keys[i] = r.key
	}
	return keys
}

// States returns the state set; StateNew first, StateClosed last.
func (m *Metadata) States() []State {
	statesCopy := make([]State, len(m.states))
	copy(statesCopy, m.states)
	return statesCopy
}

// HasState reports whether state belongs to this schema's state set.
func (m *Metadata) HasState(state State) bool {
	return m.stateSet[state]
}

// TransitionsFrom returns the outgoing transitions of state in declaration
// order. An empty result marks a terminal state.
func (m *Metadata) TransitionsFrom(state State) []Transition {
	outgoing := m.transitions[state]
	outgoingCopy := make([]Transition, len(outgoing))
	copy(outgoingCopy, outgoing)
	return outgoingCopy
}

// TransitionBetween finds the edge from -> to, if the workflow defines one.
func (m *Metadata) TransitionBetween(from, to State) (Transition, bool) {
	for _, t := range m.transitions[from] {
		if t.to == to {
			return t, true
		}
	}
	return Transition{}, false
}

// RequiredFields returns the field names that must hold a value before the
// from -> to transition commits, in schema declaration order. The second
// return is false when the workflow has no such edge.
func (m *Metadata) RequiredFields(from, to State) ([]string, bool) {
	t, ok := m.TransitionBetween(from, to)
	if !ok {
		return nil, false
	}
	return t.Required(), true
}

// IsTerminal reports whether state has no outgoing transitions.
func (m *Metadata) IsTerminal(state State) bool {
	return len(m.transitions[state]) == 0
}

// RenameRole builds a new schema snapshot with oldKey renamed to newKey in
// the role map and every transition that references it. The receiver is left
// untouched; the caller publishes the returned snapshot atomically.
func (m *Metadata) RenameRole(oldKey, newKey string) (*Metadata, error) {
	if !m.HasRole(oldKey) {
		return nil, fmt.Errorf("role %q is not declared", oldKey)
	}
	if m.HasRole(newKey) {
		return nil, fmt.Errorf("role %q is already declared", newKey)
	}
	if newKey == RoleAdmin {
		return nil, fmt.Errorf("%s is reserved", RoleAdmin)
	}
	if len(newKey) == 0 {
		return nil, fmt.Errorf("role key cannot be empty")
	}

	renamed := &Metadata{
		fields:      m.fields,
		fieldIndex:  m.fieldIndex,
		states:      m.states,
		stateSet:    m.stateSet,
		stateFields: m.stateFields,
		roleIndex:   make(map[string]int, len(m.roleIndex)),
		transitions: make(map[State][]Transition, len(m.transitions)),
	}
	renamed.roles = make([]Role, len(m.roles))
	for i, r := range m.roles {
		if r.key == oldKey {
			r.key = newKey
		}
		renamed.roles[i] = r
		renamed.roleIndex[r.key] = i
	}
	for from, outgoing := range m.transitions {
		edges := make([]Transition, len(outgoing))
		for i, t := range outgoing {
			roles := t.Roles()
			for j, key := range roles {
				if key == oldKey {
					roles[j] = newKey
				}
			}
			edges[i] = Transition{from: t.from, to: t.to, roles: roles, required: t.required}
		}
		renamed.transitions[from] = edges
	}
	return renamed, nil
}
