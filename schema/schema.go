// Package schema holds the declared data model a contract template binds
// against: named types, their properties, and validation of concrete data
// values against those declarations.
package schema

// Primitive type names understood by the grammar compiler.
const (
	TypeString         = "String"
	TypeInteger        = "Integer"
	TypeLong           = "Long"
	TypeDouble         = "Double"
	TypeBoolean        = "Boolean"
	TypeDateTime       = "DateTime"
	TypeMonetaryAmount = "MonetaryAmount"
)

// IsPrimitive reports whether a type name is one of the built-in primitives.
func IsPrimitive(name string) bool {
	switch name {
	case TypeString, TypeInteger, TypeLong, TypeDouble, TypeBoolean,
		TypeDateTime, TypeMonetaryAmount:
		return true
	}
	return false
}

// Kind distinguishes the declared type forms.
type Kind int

const (
	// KindConcept is a record type with named properties.
	KindConcept Kind = iota
	// KindEnum is a closed set of literal values.
	KindEnum
)

// Property declares a single field of a concept type.
type Property struct {
	Name string `json:"name"`
	// Type is a primitive name or the fully-qualified name of another
	// declared type.
	Type           string `json:"type"`
	IsArray        bool   `json:"isArray,omitempty"`
	IsOptional     bool   `json:"isOptional,omitempty"`
	IsIdentifier   bool   `json:"isIdentifier,omitempty"`
	IsRelationship bool   `json:"isRelationship,omitempty"`
}

// TypeDecl declares a named type in the model.
type TypeDecl struct {
	FQN        string     `json:"fqn"`
	Kind       Kind       `json:"kind"`
	Extends    string     `json:"extends,omitempty"`
	Properties []Property `json:"properties,omitempty"`
	EnumValues []string   `json:"enumValues,omitempty"`
}

// Identifier returns the identifier property of a concept, if declared.
func (d *TypeDecl) Identifier() (Property, bool) {
	for _, p := range d.Properties {
		if p.IsIdentifier {
			return p, true
		}
	}
	return Property{}, false
}

// Property looks up a declared property by name.
func (d *TypeDecl) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}
