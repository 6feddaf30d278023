package grammar

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/templet-xyz/go-templet/cfg"
	"github.com/templet-xyz/go-templet/markup"
	"github.com/templet-xyz/go-templet/schema"
)

// GoalRule is the name of the top-level container rule every compiled
// template grammar exposes.
const GoalRule = "root"

// Compiler turns an annotated template AST into a context-free rule set
// whose actions reconstruct schema-shaped data during parsing.
//
// NewID generates the token injected for identifier properties, which never
// appear in the contract text itself. It defaults to a random UUID; supply
// a deterministic generator when reproducible parses are needed.
type Compiler struct {
	Schema *schema.Registry
	NewID  func() string
}

// Result carries compilation facts callers act on.
type Result struct {
	// HasExpressions is set when the template embeds free-form expressions,
	// which constrains the logic engine the contract can run on.
	HasExpressions bool
}

// NewCompiler creates a compiler over a schema registry.
func NewCompiler(reg *schema.Registry) *Compiler {
	return &Compiler{Schema: reg, NewID: uuid.NewString}
}

// Compile builds the rule set for a template bound to the given type. The
// returned rule set's goal rule is GoalRule.
func (c *Compiler) Compile(ast []markup.Node, fqn string) (*cfg.RuleSet, *Result, error) {
	rs := cfg.NewRuleSet()
	res := &Result{}
	if err := c.compileLevel(rs, res, ast, fqn, "rule", GoalRule); err != nil {
		return nil, nil, err
	}
	return rs, res, nil
}

// compileLevel emits rules for one nesting level of the template: one rule
// per node, then a container rule sequencing them and assembling the level's
// data value. prefix keeps rule names unique across nesting levels.
func (c *Compiler) compileLevel(rs *cfg.RuleSet, res *Result, ast []markup.Node, fqn, prefix, containerName string) error {
	decl, err := c.Schema.LookupType(fqn)
	if err != nil {
		return err
	}
	if decl.Kind != schema.KindConcept {
		return structuralAt(ast, "template binds to %s, which is not a concept type", fqn)
	}

	kept := keepNodes(ast)
	symbols := make([]string, len(kept))
	for i, node := range kept {
		ruleName := prefix + strconv.Itoa(i)
		if err := c.compileNode(rs, res, node, decl, prefix, ruleName); err != nil {
			return err
		}
		symbols[i] = ruleName
	}

	// Bind each non-identifier property to the first node referencing it,
	// in document order. Properties with no matching binding stay unbound.
	type bindingRef struct {
		name  string
		index int
	}
	var bindings []bindingRef
	for _, p := range decl.Properties {
		if p.IsIdentifier {
			continue
		}
		for i, node := range kept {
			if field, ok := nodeField(node); ok && field == p.Name {
				bindings = append(bindings, bindingRef{name: p.Name, index: i})
				break
			}
		}
	}
	idProp, hasID := decl.Identifier()

	action := func(alt int, children []any) (any, error) {
		m := map[string]any{"$class": fqn}
		if hasID {
			m[idProp.Name] = c.NewID()
		}
		for _, b := range bindings {
			if v := children[b.index]; v != nil {
				m[b.name] = v
			}
		}
		return m, nil
	}
	return rs.Add(&cfg.Rule{
		Name:    containerName,
		Alts:    [][]string{symbols},
		Action:  action,
		Comment: "type: " + fqn,
	})
}

// keepNodes drops empty static text and contentless trailing chunks.
func keepNodes(ast []markup.Node) []markup.Node {
	var kept []markup.Node
	for _, n := range ast {
		switch v := n.(type) {
		case markup.StaticChunk:
			if markup.NormalizeText(v.Text) == "" {
				continue
			}
		case markup.LastChunk:
			if markup.NormalizeText(v.Text) == "" {
				continue
			}
		}
		kept = append(kept, n)
	}
	return kept
}

// nodeField extracts the bound field name of a node, when it has one.
func nodeField(n markup.Node) (string, bool) {
	switch v := n.(type) {
	case markup.Binding:
		return v.Field, true
	case markup.FormattedBinding:
		return v.Field, true
	case markup.IfBinding:
		return v.Field, true
	case markup.IfElseBinding:
		return v.Field, true
	case markup.ClauseBinding:
		return v.Field, true
	case markup.WithBinding:
		return v.Field, true
	case markup.UListBinding:
		return v.Field, true
	case markup.OListBinding:
		return v.Field, true
	case markup.JoinBinding:
		return v.Field, true
	}
	return "", false
}

func (c *Compiler) compileNode(rs *cfg.RuleSet, res *Result, n markup.Node, decl *schema.TypeDecl, prefix, ruleName string) error {
	switch v := n.(type) {
	case markup.StaticChunk:
		return addChunkRule(rs, ruleName, v.Text)
	case markup.LastChunk:
		return addChunkRule(rs, ruleName, v.Text)

	case markup.IfBinding:
		if _, err := c.booleanProp(decl, v.Field, v.Line, v.Column); err != nil {
			return err
		}
		lit := markup.NormalizeText(v.LiteralTrue)
		if lit == "" {
			return structural(v.Line, v.Column, "conditional on %s has no text", v.Field)
		}
		return rs.Add(&cfg.Rule{
			Name:    ruleName,
			Alts:    [][]string{{cfg.QuoteLiteral(lit)}, {}},
			Comment: "field: " + v.Field,
			Action: func(alt int, children []any) (any, error) {
				return alt == 0, nil
			},
		})

	case markup.IfElseBinding:
		if _, err := c.booleanProp(decl, v.Field, v.Line, v.Column); err != nil {
			return err
		}
		litTrue := markup.NormalizeText(v.LiteralTrue)
		litFalse := markup.NormalizeText(v.LiteralFalse)
		if litTrue == litFalse {
			return structural(v.Line, v.Column, "conditional on %s has identical branches", v.Field)
		}
		return rs.Add(&cfg.Rule{
			Name:    ruleName,
			Alts:    [][]string{altFor(litTrue), altFor(litFalse)},
			Comment: "field: " + v.Field,
			Action: func(alt int, children []any) (any, error) {
				return alt == 0, nil
			},
		})

	case markup.Binding:
		prop, err := c.declaredProp(decl, v.Field, v.Line, v.Column)
		if err != nil {
			return err
		}
		sym, err := c.valueSymbol(rs, prop, v.Line, v.Column)
		if err != nil {
			return err
		}
		sym, err = c.applyCardinality(rs, sym, ruleName, prop)
		if err != nil {
			return err
		}
		return rs.Add(&cfg.Rule{Name: ruleName, Alts: [][]string{{sym}}, Comment: "field: " + v.Field})

	case markup.FormattedBinding:
		prop, err := c.declaredProp(decl, v.Field, v.Line, v.Column)
		if err != nil {
			return err
		}
		var sym string
		switch prop.Type {
		case schema.TypeDateTime:
			sym, err = c.dateFragment(rs, v.Format, v.Line, v.Column)
		case schema.TypeDouble, schema.TypeMonetaryAmount, schema.TypeInteger, schema.TypeLong:
			if p, perr := markup.ParseAmountPattern(v.Format); perr == nil &&
				p.Currency != markup.CurrencyNone && prop.Type != schema.TypeMonetaryAmount {
				err = structural(v.Line, v.Column, "currency pattern %q requires a monetary amount, field %s is %s", v.Format, v.Field, prop.Type)
				break
			}
			sym, err = c.amountFragment(rs, v.Format, v.Line, v.Column)
		default:
			err = structural(v.Line, v.Column, "format %q not supported for field %s of type %s", v.Format, v.Field, prop.Type)
		}
		if err != nil {
			return err
		}
		sym, err = c.applyCardinality(rs, sym, ruleName, prop)
		if err != nil {
			return err
		}
		return rs.Add(&cfg.Rule{Name: ruleName, Alts: [][]string{{sym}}, Comment: "field: " + v.Field})

	case markup.ClauseBinding:
		return c.compileNested(rs, res, v.Field, v.Nested, decl, prefix, ruleName, v.Position)
	case markup.WithBinding:
		return c.compileNested(rs, res, v.Field, v.Nested, decl, prefix, ruleName, v.Position)

	case markup.UListBinding:
		return c.compileList(rs, res, v.Field, v.Nested, decl, prefix, ruleName, v.Position, "- ", "\n- ")
	case markup.OListBinding:
		return c.compileList(rs, res, v.Field, v.Nested, decl, prefix, ruleName, v.Position, "1. ", "\n1. ")
	case markup.JoinBinding:
		if v.Separator == "" {
			return structural(v.Line, v.Column, "join on %s has an empty separator", v.Field)
		}
		return c.compileList(rs, res, v.Field, v.Nested, decl, prefix, ruleName, v.Position, "", v.Separator)

	case markup.Expr:
		res.HasExpressions = true
		return rs.Add(&cfg.Rule{Name: ruleName, Alts: [][]string{{"QuotedString"}}, Comment: "expression"})

	default:
		line, col := n.Pos()
		return structural(line, col, "Unrecognized node type %T", n)
	}
}

func addChunkRule(rs *cfg.RuleSet, ruleName, text string) error {
	return rs.Add(&cfg.Rule{
		Name: ruleName,
		Alts: [][]string{{cfg.QuoteLiteral(markup.NormalizeText(text))}},
	})
}

// altFor renders a conditional branch: empty text becomes an empty
// alternative rather than an empty literal.
func altFor(lit string) []string {
	if lit == "" {
		return nil
	}
	return []string{cfg.QuoteLiteral(lit)}
}

func (c *Compiler) declaredProp(decl *schema.TypeDecl, field string, line, col int) (schema.Property, error) {
	prop, ok := decl.Property(field)
	if !ok {
		return schema.Property{}, structural(line, col, "field %s is not declared on %s", field, decl.FQN)
	}
	return prop, nil
}

func (c *Compiler) booleanProp(decl *schema.TypeDecl, field string, line, col int) (schema.Property, error) {
	prop, err := c.declaredProp(decl, field, line, col)
	if err != nil {
		return schema.Property{}, err
	}
	if prop.Type != schema.TypeBoolean || prop.IsArray || prop.IsRelationship {
		return schema.Property{}, structural(line, col, "conditional field %s on %s must be Boolean", field, decl.FQN)
	}
	return prop, nil
}

// compileNested handles clause and with bindings: the nested AST compiles
// recursively against the field's type, under a prefix derived from the
// field name, and the node's rule references the nested container.
func (c *Compiler) compileNested(rs *cfg.RuleSet, res *Result, field string, nested []markup.Node, decl *schema.TypeDecl, prefix, ruleName string, pos markup.Position) error {
	prop, err := c.declaredProp(decl, field, pos.Line, pos.Column)
	if err != nil {
		return err
	}
	if prop.IsRelationship || schema.IsPrimitive(prop.Type) {
		return structural(pos.Line, pos.Column, "field %s of type %s cannot nest a sub-template", field, prop.Type)
	}
	nestedName := uniqueName(rs, field, prefix+field)
	if err := c.compileLevel(rs, res, nested, prop.Type, nestedName+"_", nestedName); err != nil {
		return err
	}
	sym, err := c.applyCardinality(rs, nestedName, ruleName, prop)
	if err != nil {
		return err
	}
	return rs.Add(&cfg.Rule{Name: ruleName, Alts: [][]string{{sym}}, Comment: "field: " + field})
}

// compileList handles the three list bindings. Lists are asymmetric: the
// first element carries firstSep on its leading chunk while every later
// element is introduced by restSep. Two grammars are compiled from the same
// nested template, then stitched so the semantic value is one flat ordered
// slice.
func (c *Compiler) compileList(rs *cfg.RuleSet, res *Result, field string, nested []markup.Node, decl *schema.TypeDecl, prefix, ruleName string, pos markup.Position, firstSep, restSep string) error {
	prop, err := c.declaredProp(decl, field, pos.Line, pos.Column)
	if err != nil {
		return err
	}
	if !prop.IsArray {
		return structural(pos.Line, pos.Column, "list binding on %s requires an array field", field)
	}
	if prop.IsRelationship || schema.IsPrimitive(prop.Type) {
		return structural(pos.Line, pos.Column, "list field %s must have a concept element type, got %s", field, prop.Type)
	}

	firstName := uniqueName(rs, field+"First", prefix+field+"First")
	if err := c.compileLevel(rs, res, prependSeparator(nested, firstSep, pos), prop.Type, firstName+"_", firstName); err != nil {
		return err
	}

	restName := uniqueName(rs, field, prefix+field)
	itemName := restName + "Item"
	if err := c.compileLevel(rs, res, nested, prop.Type, itemName+"_", itemName); err != nil {
		return err
	}
	err = rs.Add(&cfg.Rule{
		Name:    restName,
		Alts:    [][]string{{}, {restName, cfg.QuoteLiteral(markup.NormalizeText(restSep)), itemName}},
		Comment: "field: " + field + " (rest)",
		Action: func(alt int, children []any) (any, error) {
			if alt == 0 {
				return []any{}, nil
			}
			return append(children[0].([]any), children[2]), nil
		},
	})
	if err != nil {
		return err
	}

	return rs.Add(&cfg.Rule{
		Name:    ruleName,
		Alts:    [][]string{{firstName, restName}, {}},
		Comment: "field: " + field,
		Action: func(alt int, children []any) (any, error) {
			if alt == 1 {
				return []any{}, nil
			}
			out := []any{children[0]}
			return append(out, children[1].([]any)...), nil
		},
	})
}

// prependSeparator builds the first-item variant of a list template by
// prefixing sep onto the leading textual chunk.
func prependSeparator(nested []markup.Node, sep string, pos markup.Position) []markup.Node {
	if sep == "" {
		return nested
	}
	out := make([]markup.Node, 0, len(nested)+1)
	if len(nested) > 0 {
		switch v := nested[0].(type) {
		case markup.StaticChunk:
			v.Text = sep + v.Text
			return append(append(out, v), nested[1:]...)
		case markup.LastChunk:
			v.Text = sep + v.Text
			return append(append(out, v), nested[1:]...)
		}
	}
	out = append(out, markup.StaticChunk{Position: pos, Text: sep})
	return append(out, nested...)
}

// applyCardinality wraps a symbol per the property's array and optional
// flags: arrays repeat, optionals may be absent, and both together behave
// as zero-or-more.
func (c *Compiler) applyCardinality(rs *cfg.RuleSet, sym, base string, prop schema.Property) (string, error) {
	if prop.IsArray {
		name := base + "List"
		err := rs.Add(&cfg.Rule{
			Name: name,
			Alts: [][]string{{}, {name, sym}},
			Action: func(alt int, children []any) (any, error) {
				if alt == 0 {
					return []any{}, nil
				}
				return append(children[0].([]any), children[1]), nil
			},
		})
		if err != nil {
			return "", err
		}
		return name, nil
	}
	if prop.IsOptional {
		name := base + "Opt"
		err := rs.Add(&cfg.Rule{
			Name: name,
			Alts: [][]string{{}, {sym}},
			Action: func(alt int, children []any) (any, error) {
				if alt == 0 {
					return nil, nil
				}
				return children[0], nil
			},
		})
		if err != nil {
			return "", err
		}
		return name, nil
	}
	return sym, nil
}

func uniqueName(rs *cfg.RuleSet, preferred, fallback string) string {
	if !rs.Has(preferred) {
		return preferred
	}
	return fallback
}

// structuralAt anchors a level-wide error to the level's first node.
func structuralAt(ast []markup.Node, format string, args ...any) *StructuralError {
	line, col := 1, 1
	if len(ast) > 0 {
		line, col = ast[0].Pos()
	}
	return structural(line, col, format, args...)
}
