package schema

import (
	"fmt"
	"math"
	"time"
)

// ValidationError describes a data value that does not conform to its
// declared type. Value carries the offending snapshot so callers can render
// a useful diagnostic.
type ValidationError struct {
	Type    string
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s.%s: %s (got %v)", e.Type, e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation failed for %s: %s (got %v)", e.Type, e.Message, e.Value)
}

// Validate checks a data value against a declared or primitive type.
// Parsed and drafted data both pass through here before crossing the
// pipeline boundary.
func (r *Registry) Validate(value any, typeName string) error {
	if IsPrimitive(typeName) {
		return validatePrimitive(value, typeName, "")
	}
	decl, err := r.LookupType(typeName)
	if err != nil {
		return err
	}
	if decl.Kind == KindEnum {
		s, ok := value.(string)
		if !ok {
			return &ValidationError{Type: typeName, Message: "enum value must be a string", Value: value}
		}
		for _, v := range decl.EnumValues {
			if v == s {
				return nil
			}
		}
		return &ValidationError{Type: typeName, Message: "not a declared enum value", Value: value}
	}

	m, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Type: typeName, Message: "concept value must be an object", Value: value}
	}
	for _, p := range decl.Properties {
		v, present := m[p.Name]
		if !present || v == nil {
			if p.IsOptional || p.IsIdentifier {
				continue
			}
			return &ValidationError{Type: typeName, Field: p.Name, Message: "missing required property", Value: m}
		}
		if err := r.validateProperty(v, p, typeName); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) validateProperty(value any, p Property, owner string) error {
	if p.IsArray {
		items, ok := value.([]any)
		if !ok {
			return &ValidationError{Type: owner, Field: p.Name, Message: "expected an array", Value: value}
		}
		for _, item := range items {
			if err := r.validateElement(item, p, owner); err != nil {
				return err
			}
		}
		return nil
	}
	return r.validateElement(value, p, owner)
}

func (r *Registry) validateElement(value any, p Property, owner string) error {
	// A relationship holds only the target's identifier token.
	if p.IsRelationship {
		if _, ok := value.(string); !ok {
			return &ValidationError{Type: owner, Field: p.Name, Message: "relationship must be an identifier string", Value: value}
		}
		return nil
	}
	if IsPrimitive(p.Type) {
		if err := validatePrimitive(value, p.Type, p.Name); err != nil {
			ve := err.(*ValidationError)
			ve.Type = owner
			return ve
		}
		return nil
	}
	return r.Validate(value, p.Type)
}

func validatePrimitive(value any, typeName, field string) error {
	fail := func(msg string) error {
		return &ValidationError{Type: typeName, Field: field, Message: msg, Value: value}
	}
	switch typeName {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fail("expected a string")
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fail("expected a boolean")
		}
	case TypeInteger, TypeLong:
		switch v := value.(type) {
		case int, int32, int64:
		case float64:
			if v != math.Trunc(v) {
				return fail("expected an integral number")
			}
		default:
			return fail("expected an integer")
		}
	case TypeDouble:
		switch value.(type) {
		case float64, int, int64:
		default:
			return fail("expected a number")
		}
	case TypeMonetaryAmount:
		// Either a bare number or an object carrying the currency code.
		switch v := value.(type) {
		case float64, int, int64:
		case map[string]any:
			if _, ok := v["doubleValue"].(float64); !ok {
				return fail("expected a numeric doubleValue")
			}
			if _, ok := v["currencyCode"].(string); !ok {
				return fail("expected a currencyCode string")
			}
		default:
			return fail("expected a number or a monetary object")
		}
	case TypeDateTime:
		switch v := value.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return fail("expected an RFC 3339 timestamp")
			}
		default:
			return fail("expected a timestamp")
		}
	default:
		return fail("unknown primitive type")
	}
	return nil
}
