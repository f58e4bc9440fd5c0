package domain

import "fmt"

// SnapshotType identifies one bucket of the closed, schema-defined taxonomy
// a file's extracted data can be classified into.
type SnapshotType string

// Canonical snapshot types. The authoritative set is whatever the loaded
// master schema declares; these constants name the types the built-in
// schema ships with.
const (
	TypeFileMetadata SnapshotType = "file_metadata"
	TypeImports      SnapshotType = "imports"
	TypeExports      SnapshotType = "exports"
	TypeFunctions    SnapshotType = "functions"
	TypeClasses      SnapshotType = "classes"
	TypeConnections  SnapshotType = "connections"
	TypeRepoMetadata SnapshotType = "repo_metadata"
	TypeSecurity     SnapshotType = "security"
	TypeQuality      SnapshotType = "quality"
	TypeDocMetadata  SnapshotType = "doc_metadata"
	TypeDocContent   SnapshotType = "doc_content"
	TypeDocAnalysis  SnapshotType = "doc_analysis"
)

// FieldDef declares one recognized field of a snapshot type.
type FieldDef struct {
	// Name is the dotted field identifier (e.g. "code.imports.modules").
	Name string

	// ValueType is the semantic type: "string", "int", "bool",
	// "string_list" or "object".
	ValueType string

	// Multi marks fields whose value accumulates as a list.
	Multi bool

	// Required marks fields counted against coverage when absent.
	Required bool
}

// TypeDef declares a snapshot type and its recognized fields.
type TypeDef struct {
	Type   SnapshotType
	Fields []FieldDef
}

// Schema is the validated, immutable taxonomy loaded at startup.
type Schema struct {
	id    string
	order []SnapshotType
	types map[SnapshotType]TypeDef
}

// NewSchema builds a Schema from an ordered list of type definitions.
// The definition order is preserved; mapping output follows it.
func NewSchema(id string, defs []TypeDef) (*Schema, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing schema id", ErrSchemaInvalid)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no snapshot types declared", ErrSchemaInvalid)
	}

	s := &Schema{
		id:    id,
		order: make([]SnapshotType, 0, len(defs)),
		types: make(map[SnapshotType]TypeDef, len(defs)),
	}

	for _, def := range defs {
		if def.Type == "" {
			return nil, fmt.Errorf("%w: snapshot type with empty name", ErrSchemaInvalid)
		}
		if _, dup := s.types[def.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate snapshot type %q", ErrSchemaInvalid, def.Type)
		}
		if len(def.Fields) == 0 {
			return nil, fmt.Errorf("%w: snapshot type %q declares no fields", ErrSchemaInvalid, def.Type)
		}
		seen := make(map[string]bool, len(def.Fields))
		for _, f := range def.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("%w: empty field name in type %q", ErrSchemaInvalid, def.Type)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("%w: duplicate field %q in type %q", ErrSchemaInvalid, f.Name, def.Type)
			}
			seen[f.Name] = true
		}
		s.order = append(s.order, def.Type)
		s.types[def.Type] = def
	}

	return s, nil
}

// ID returns the schema identifier (e.g. "master_notebook_v2").
func (s *Schema) ID() string {
	return s.id
}

// Types returns the snapshot types in declaration order.
func (s *Schema) Types() []SnapshotType {
	out := make([]SnapshotType, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether t is part of the taxonomy.
func (s *Schema) Has(t SnapshotType) bool {
	_, ok := s.types[t]
	return ok
}

// TypeDef returns the definition for t.
func (s *Schema) TypeDef(t SnapshotType) (TypeDef, bool) {
	def, ok := s.types[t]
	return def, ok
}

// RecognizedFields returns the declared field names for t, in order.
func (s *Schema) RecognizedFields(t SnapshotType) []string {
	def, ok := s.types[t]
	if !ok {
		return nil
	}
	names := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldDef returns the definition of a single field of t.
func (s *Schema) FieldDef(t SnapshotType, name string) (FieldDef, bool) {
	def, ok := s.types[t]
	if !ok {
		return FieldDef{}, false
	}
	for _, f := range def.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}
