package grammar

import (
	"fmt"
	"strings"

	"github.com/templet-xyz/go-templet/cfg"
	"github.com/templet-xyz/go-templet/markup"
	"github.com/templet-xyz/go-templet/schema"
)

// valueSymbol resolves the grammar symbol matching one occurrence of a
// property's value in text, emitting supporting fragment rules as needed.
// Relationships always read as a quoted identifier token, whatever the
// target type declares.
func (c *Compiler) valueSymbol(rs *cfg.RuleSet, prop schema.Property, line, col int) (string, error) {
	if prop.IsRelationship {
		return "QuotedString", nil
	}
	switch prop.Type {
	case schema.TypeString:
		return "QuotedString", nil
	case schema.TypeBoolean:
		return "Boolean", nil
	case schema.TypeInteger, schema.TypeLong:
		return "Integer", nil
	case schema.TypeDouble, schema.TypeMonetaryAmount:
		return "Double", nil
	case schema.TypeDateTime:
		return c.dateFragment(rs, markup.DefaultDateFormat, line, col)
	}
	decl, err := c.Schema.LookupType(prop.Type)
	if err != nil {
		return "", structural(line, col, "field %s: %v", prop.Name, err)
	}
	if decl.Kind == schema.KindEnum {
		return c.enumFragment(rs, decl)
	}
	return "", structural(line, col, "field %s has complex type %s, bind it with a clause or with block", prop.Name, prop.Type)
}

// enumFragment emits one rule per enum type: a choice of the literal values
// whose action yields the matched value. Fragments are deduplicated by name
// so repeated bindings share one rule.
func (c *Compiler) enumFragment(rs *cfg.RuleSet, decl *schema.TypeDecl) (string, error) {
	name := "enum" + sanitizeName(decl.FQN)
	if rs.Has(name) {
		return name, nil
	}
	if len(decl.EnumValues) == 0 {
		return "", fmt.Errorf("enum %s declares no values", decl.FQN)
	}
	alts := make([][]string, len(decl.EnumValues))
	for i, v := range decl.EnumValues {
		alts[i] = []string{cfg.QuoteLiteral(v)}
	}
	values := decl.EnumValues
	err := rs.Add(&cfg.Rule{
		Name:    name,
		Alts:    alts,
		Comment: "enum: " + decl.FQN,
		Action: func(alt int, children []any) (any, error) {
			return values[alt], nil
		},
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// sanitizeName maps a fully-qualified type name onto a rule-name-safe
// identifier fragment.
func sanitizeName(fqn string) string {
	var b strings.Builder
	for i := 0; i < len(fqn); i++ {
		c := fqn[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
