package selection

import "fmt"

// Kind describes how a logical field resolves into the storage projection.
type Kind int

const (
	// KindColumn projects to a plain storage column.
	KindColumn Kind = iota

	// KindRelation projects to a nested projection selecting the relation's
	// child columns.
	KindRelation

	// KindRelationCount projects to an aggregate-count selection under the
	// CountKey sub-projection.
	KindRelationCount
)

// CountKey is the projection key that groups aggregate-count selections.
// It mirrors the shape the storage layer expects for relation counts.
const CountKey = "_count"

// Field declares one logical field of an entity schema.
type Field struct {
	// Name is the logical, caller-facing field name (camelCase).
	Name string

	// Column is the storage name. When empty it defaults to SnakeCase(Name).
	Column string

	// Kind selects the projection strategy for this field.
	Kind Kind

	// Children lists the storage columns fetched for KindRelation fields.
	Children []string

	// CountOf names the relation counted for KindRelationCount fields.
	CountOf string

	// Identifier marks identifier-like fields: always true in the output
	// projection regardless of caller input, and ignored when deciding
	// whether a request is empty.
	Identifier bool

	// WriteOnly marks fields that must never be caller-toggleable and must
	// never leak into the output projection (e.g. password hashes).
	WriteOnly bool
}

// Schema is the declarative, per-entity field registry. It is immutable
// after construction; Project and ValidateRequest are safe for concurrent
// use.
type Schema struct {
	entity   string
	fields   []Field
	index    map[string]Field
	defaults Request
}

// New builds a Schema for the named entity. The defaults slice lists the
// logical names substituted when a request carries no meaningful field; every
// default must reference a declared, readable field.
func New(entity string, fields []Field, defaults ...string) (*Schema, error) {
	if entity == "" {
		return nil, fmt.Errorf("selection: schema entity name is required")
	}

	s := &Schema{
		entity: entity,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]Field, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("selection: %s: field with empty name", entity)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("selection: %s: duplicate field %q", entity, f.Name)
		}
		if f.Column == "" {
			f.Column = SnakeCase(f.Name)
		}
		if f.Kind == KindRelation && len(f.Children) == 0 {
			return nil, fmt.Errorf("selection: %s: relation field %q declares no child columns", entity, f.Name)
		}
		if f.Kind == KindRelationCount && f.CountOf == "" {
			return nil, fmt.Errorf("selection: %s: count field %q declares no relation", entity, f.Name)
		}
		if f.WriteOnly && f.Identifier {
			return nil, fmt.Errorf("selection: %s: field %q cannot be both write-only and identifier", entity, f.Name)
		}
		s.fields = append(s.fields, f)
		s.index[f.Name] = f
	}

	s.defaults = make(Request, len(defaults))
	for _, name := range defaults {
		f, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("selection: %s: default field %q is not declared", entity, name)
		}
		if f.WriteOnly {
			return nil, fmt.Errorf("selection: %s: default field %q is write-only", entity, name)
		}
		s.defaults[name] = true
	}

	return s, nil
}

// MustNew is New, panicking on definition errors. Entity schemas are static
// package-level declarations, so a bad definition is a programming error.
func MustNew(entity string, fields []Field, defaults ...string) *Schema {
	s, err := New(entity, fields, defaults...)
	if err != nil {
		panic(err)
	}
	return s
}

// Entity returns the schema's entity name.
func (s *Schema) Entity() string {
	return s.entity
}

// Field looks up a declared field by its logical name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.index[name]
	return f, ok
}
