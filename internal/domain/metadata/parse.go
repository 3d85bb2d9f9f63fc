package metadata

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"jtrac/internal/shared/errors"
)

var validate = validator.New()

// definition is the wire form of a space's schema. The grammar is YAML; see
// Parse for the semantic rules layered on top.
type definition struct {
	Fields      []fieldDef      `yaml:"fields" validate:"dive"`
	Roles       []roleDef       `yaml:"roles" validate:"required,min=1,dive"`
	States      []stateDef      `yaml:"states" validate:"dive"`
	Transitions []transitionDef `yaml:"transitions" validate:"dive"`
}

type fieldDef struct {
	Name    string   `yaml:"name" validate:"required"`
	Label   string   `yaml:"label" validate:"required"`
	Type    string   `yaml:"type,omitempty" validate:"omitempty,oneof=text number date select"`
	Options []string `yaml:"options,omitempty"`
}

type roleDef struct {
	Key   string `yaml:"key" validate:"required"`
	Label string `yaml:"label" validate:"required"`
}

// stateDef accepts either a bare state name or a mapping with an editable
// field subset:
//
//	states:
//	  - OPEN
//	  - name: REVIEW
//	    fields: [severity]
type stateDef struct {
	Name   string   `yaml:"name" validate:"required"`
	Fields []string `yaml:"fields,omitempty"`
}

func (s *stateDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&s.Name)
	}
	type plain stateDef
	return node.Decode((*plain)(s))
}

func (s stateDef) MarshalYAML() (interface{}, error) {
	if len(s.Fields) == 0 {
		return s.Name, nil
	}
	type plain stateDef
	return plain(s), nil
}

type transitionDef struct {
	From     string   `yaml:"from" validate:"required"`
	To       string   `yaml:"to" validate:"required"`
	Roles    []string `yaml:"roles" validate:"required,min=1"`
	Required []string `yaml:"required,omitempty"`
}

// Parse builds an immutable Metadata from a YAML definition. Parse is total:
// every malformed input maps to a MalformedMetadataError, never a panic, and
// a failed parse leaves nothing partially constructed.
func Parse(text []byte) (*Metadata, error) {
	var def definition
	if err := yaml.Unmarshal(text, &def); err != nil {
		return nil, errors.NewMalformedMetadataError(err.Error())
	}
	if err := validate.Struct(def); err != nil {
		return nil, errors.NewMalformedMetadataError(err.Error())
	}
	return build(&def)
}

func build(def *definition) (*Metadata, error) {
	m := &Metadata{
		fieldIndex:  make(map[string]int),
		roleIndex:   make(map[string]int),
		stateSet:    make(map[State]bool),
		stateFields: make(map[State][]string),
		transitions: make(map[State][]Transition),
	}

	for _, fd := range def.Fields {
		if _, dup := m.fieldIndex[fd.Name]; dup {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("duplicate field name %q", fd.Name))
		}
		ft := FieldType(fd.Type)
		if fd.Type == "" {
			ft = FieldTypeText
		}
		if ft == FieldTypeSelect && len(fd.Options) == 0 {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("select field %q has no options", fd.Name))
		}
		if ft != FieldTypeSelect && len(fd.Options) > 0 {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("field %q is not a select field but declares options", fd.Name))
		}
		m.fieldIndex[fd.Name] = len(m.fields)
		m.fields = append(m.fields, Field{
			name:      fd.Name,
			label:     fd.Label,
			fieldType: ft,
			options:   append([]string(nil), fd.Options...),
		})
	}

	for _, rd := range def.Roles {
		if rd.Key == RoleAdmin {
			return nil, errors.NewMalformedMetadataError("ROLE_ADMIN is reserved and cannot be declared")
		}
		if _, dup := m.roleIndex[rd.Key]; dup {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("duplicate role key %q", rd.Key))
		}
		m.roleIndex[rd.Key] = len(m.roles)
		m.roles = append(m.roles, Role{key: rd.Key, label: rd.Label})
	}

	// StateNew and StateClosed are implicit members of every state set. An
	// explicit declaration is only needed to attach an editable field subset.
	m.states = append(m.states, StateNew)
	m.stateSet[StateNew] = true
	for _, sd := range def.States {
		state := State(sd.Name)
		if state.IsNew() || state.IsClosed() {
			if len(sd.Fields) == 0 {
				return nil, errors.NewMalformedMetadataError(fmt.Sprintf("state %q is implicit and needs no declaration", sd.Name))
			}
		} else {
			if m.stateSet[state] {
				return nil, errors.NewMalformedMetadataError(fmt.Sprintf("duplicate state %q", sd.Name))
			}
			m.states = append(m.states, state)
			m.stateSet[state] = true
		}
		if len(sd.Fields) > 0 {
			for _, name := range sd.Fields {
				if _, ok := m.fieldIndex[name]; !ok {
					return nil, errors.NewMalformedMetadataError(fmt.Sprintf("state %q references undefined field %q", sd.Name, name))
				}
			}
			m.stateFields[state] = m.orderFieldNames(sd.Fields)
		}
	}
	m.states = append(m.states, StateClosed)
	m.stateSet[StateClosed] = true

	for _, td := range def.Transitions {
		from, to := State(td.From), State(td.To)
		if !m.stateSet[from] {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("transition from undefined state %q", td.From))
		}
		if !m.stateSet[to] {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("transition to undefined state %q", td.To))
		}
		if from == to {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("transition %q -> %q is a self loop", td.From, td.To))
		}
		if _, dup := m.TransitionBetween(from, to); dup {
			return nil, errors.NewMalformedMetadataError(fmt.Sprintf("duplicate transition %q -> %q", td.From, td.To))
		}
		for _, roleKey := range td.Roles {
			if _, ok := m.roleIndex[roleKey]; !ok {
				return nil, errors.NewMalformedMetadataError(fmt.Sprintf("transition %q -> %q references undefined role %q", td.From, td.To, roleKey))
			}
		}
		seen := make(map[string]bool)
		for _, name := range td.Required {
			if _, ok := m.fieldIndex[name]; !ok {
				return nil, errors.NewMalformedMetadataError(fmt.Sprintf("transition %q -> %q requires undefined field %q", td.From, td.To, name))
			}
			if seen[name] {
				return nil, errors.NewMalformedMetadataError(fmt.Sprintf("transition %q -> %q requires field %q twice", td.From, td.To, name))
			}
			seen[name] = true
		}
		m.transitions[from] = append(m.transitions[from], Transition{
			from:     from,
			to:       to,
			roles:    append([]string(nil), td.Roles...),
			required: m.orderFieldNames(td.Required),
		})
	}

	return m, nil
}

// orderFieldNames normalizes a set of field names into schema declaration
// order so missing-field errors are reported deterministically.
func (m *Metadata) orderFieldNames(names []string) []string {
	requested := make(map[string]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}
	ordered := make([]string, 0, len(names))
	for _, f := range m.fields {
		if requested[f.name] {
			ordered = append(ordered, f.name)
		}
	}
	return ordered
}

// Serialize renders the schema back into its YAML wire form. Parsing the
// result reproduces an equivalent Metadata.
func (m *Metadata) Serialize() ([]byte, error) {
	def := definition{}

	for _, f := range m.fields {
		def.Fields = append(def.Fields, fieldDef{
			Name:    f.name,
			Label:   f.label,
			Type:    f.fieldType.String(),
			Options: f.Options(),
		})
	}
	for _, r := range m.roles {
		def.Roles = append(def.Roles, roleDef{Key: r.key, Label: r.label})
	}
	for _, s := range m.states {
		fields := m.stateFields[s]
		if (s.IsNew() || s.IsClosed()) && len(fields) == 0 {
			continue
		}
		def.States = append(def.States, stateDef{Name: s.String(), Fields: append([]string(nil), fields...)})
	}
	for _, s := range m.states {
		for _, t := range m.transitions[s] {
			def.Transitions = append(def.Transitions, transitionDef{
				From:     t.from.String(),
				To:       t.to.String(),
				Roles:    t.Roles(),
				Required: t.Required(),
			})
		}
	}

	out, err := yaml.Marshal(&def)
	if err != nil {
		return nil, errors.NewInternalError("failed to serialize metadata", err.Error())
	}
	return out, nil
}
