package schema

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v2"
)

//go:embed oparl-1.0.yaml
var oparl10 []byte

type Kind int

const (
	KindUnknown Kind = iota
	KindScalar
	KindScalarList
	KindObject
	KindObjectList
	KindReference
	KindReferenceList
	KindExternalList
)

var kindNames = map[string]Kind{
	"scalar":        KindScalar,
	"scalarList":    KindScalarList,
	"object":        KindObject,
	"objectList":    KindObjectList,
	"reference":     KindReference,
	"referenceList": KindReferenceList,
	"externalList":  KindExternalList,
}

//Field declares how the raw JSON value at a key is to be interpreted
type Field struct {
	Kind Kind
	// Scalar holds the OParl type name for scalar kinds (date, date-time, ...)
	Scalar string
	// Target holds the type URI of the referenced object for reference kinds
	Target string
}

//Type is the field table for one OParl object type
type Type struct {
	Name     string
	URI      string
	required map[string]struct{}
	fields   map[string]Field
}

func (t *Type) Field(name string) (Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

func (t *Type) IsRequired(name string) bool {
	_, ok := t.required[name]
	return ok
}

//RequiredFields returns the names of the fields this type may not omit
func (t *Type) RequiredFields() []string {
	names := make([]string, 0, len(t.required))
	for name := range t.required {
		names = append(names, name)
	}
	return names
}

//Registry holds the field tables for all known OParl types
type Registry struct {
	schemaURI string
	byURI     map[string]*Type
	byName    map[string]*Type
}

func (r *Registry) URI() string {
	return r.schemaURI
}

func (r *Registry) ByURI(uri string) (*Type, bool) {
	t, ok := r.byURI[uri]
	return t, ok
}

func (r *Registry) ByName(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

//TypeURI returns the full type URI for a type name within this schema
func (r *Registry) TypeURI(name string) string {
	return r.schemaURI + "/" + name
}

type fieldDef struct {
	Kind   string `yaml:"kind"`
	Scalar string `yaml:"scalar"`
	Target string `yaml:"target"`
}

type typeDef struct {
	Required []string            `yaml:"required"`
	Fields   map[string]fieldDef `yaml:"fields"`
}

type schemaDef struct {
	SchemaURI string              `yaml:"schemaURI"`
	Common    map[string]fieldDef `yaml:"common"`
	Types     map[string]typeDef  `yaml:"types"`
}

//Load reads a YAML schema definition and builds a registry from it
func Load(data io.Reader) (*Registry, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	def := &schemaDef{}
	err = yaml.Unmarshal(buf, def)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	if def.SchemaURI == "" {
		return nil, fmt.Errorf("schema definition lacks a schemaURI")
	}

	reg := &Registry{
		schemaURI: def.SchemaURI,
		byURI:     map[string]*Type{},
		byName:    map[string]*Type{},
	}

	for name, td := range def.Types {
		t := &Type{
			Name:     name,
			URI:      reg.TypeURI(name),
			required: map[string]struct{}{},
			fields:   map[string]Field{},
		}

		for fieldName, fd := range def.Common {
			f, err := fieldFromDef(reg, fd)
			if err != nil {
				return nil, fmt.Errorf("common field %q: %w", fieldName, err)
			}
			t.fields[fieldName] = f
		}

		for fieldName, fd := range td.Fields {
			f, err := fieldFromDef(reg, fd)
			if err != nil {
				return nil, fmt.Errorf("type %q, field %q: %w", name, fieldName, err)
			}
			t.fields[fieldName] = f
		}

		for _, fieldName := range td.Required {
			t.required[fieldName] = struct{}{}
		}

		reg.byURI[t.URI] = t
		reg.byName[t.Name] = t
	}

	return reg, nil
}

func fieldFromDef(reg *Registry, fd fieldDef) (Field, error) {
	kind, ok := kindNames[fd.Kind]
	if !ok {
		return Field{}, fmt.Errorf("unknown field kind %q", fd.Kind)
	}

	f := Field{Kind: kind, Scalar: fd.Scalar}

	switch kind {
	case KindScalar, KindScalarList:
		if fd.Scalar == "" {
			return Field{}, fmt.Errorf("scalar fields must declare a scalar type")
		}
	case KindReference, KindReferenceList:
		if fd.Target == "" {
			return Field{}, fmt.Errorf("reference fields must declare a target type")
		}
		f.Target = reg.TypeURI(fd.Target)
	}

	return f, nil
}

var defaultRegistry *Registry
var defaultOnce sync.Once

//Default returns the registry for the official OParl 1.0 schema
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Load(strings.NewReader(string(oparl10)))
		if err != nil {
			// the embedded schema is part of the build, failing to parse
			// it is a programming error
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}
