package cfg

import (
	"fmt"
)

type symKind int

const (
	symNonterm symKind = iota
	symLiteral
	symLexical
)

// symbolRef is a resolved symbol occurrence inside one alternative.
type symbolRef struct {
	name  string
	kind  symKind
	lit   string // unescaped text for symLiteral
	match Matcher
}

// altRule is one (rule, alternative) pair with resolved symbols.
type altRule struct {
	rule *Rule
	alt  int
	syms []symbolRef
}

// Grammar is the compiled, immutable form of a RuleSet. A Grammar may be
// shared freely; per-parse state lives in Parser instances.
type Grammar struct {
	goal     string
	byName   map[string][]*altRule
	nullable map[string]bool
	emptyVal map[string]any
}

// Compile validates a rule set and produces an executable grammar with the
// given goal rule. Every non-terminal referenced by an alternative must be
// defined exactly once, either as a rule or as a built-in lexical terminal.
func Compile(rs *RuleSet, goal string) (*Grammar, error) {
	g := &Grammar{
		goal:     goal,
		byName:   make(map[string][]*altRule),
		nullable: make(map[string]bool),
		emptyVal: make(map[string]any),
	}

	for _, r := range rs.Rules() {
		for alt, seq := range r.Alts {
			ar := &altRule{rule: r, alt: alt, syms: make([]symbolRef, len(seq))}
			for i, sym := range seq {
				ref, err := resolveSymbol(rs, sym)
				if err != nil {
					return nil, fmt.Errorf("rule %s: %w", r.Name, err)
				}
				ar.syms[i] = ref
			}
			g.byName[r.Name] = append(g.byName[r.Name], ar)
		}
	}

	if _, ok := g.byName[goal]; !ok {
		return nil, fmt.Errorf("goal rule %s is not defined", goal)
	}

	g.computeNullable(rs)
	if err := g.computeEmptyValues(rs); err != nil {
		return nil, err
	}
	return g, nil
}

func resolveSymbol(rs *RuleSet, sym string) (symbolRef, error) {
	if sym == "" {
		return symbolRef{}, fmt.Errorf("empty symbol")
	}
	if sym[0] == '"' {
		lit, err := unquoteLiteral(sym)
		if err != nil {
			return symbolRef{}, err
		}
		if lit == "" {
			return symbolRef{}, fmt.Errorf("empty literal symbol")
		}
		return symbolRef{name: sym, kind: symLiteral, lit: lit}, nil
	}
	if rs.Has(sym) {
		return symbolRef{name: sym, kind: symNonterm}, nil
	}
	if m, ok := terminals[sym]; ok {
		return symbolRef{name: sym, kind: symLexical, match: m}, nil
	}
	return symbolRef{}, fmt.Errorf("undefined symbol %s", sym)
}

// computeNullable finds rules that can derive the empty string. Terminals
// are never nullable, so a rule is nullable iff some alternative is empty
// or made entirely of nullable non-terminals.
func (g *Grammar) computeNullable(rs *RuleSet) {
	for changed := true; changed; {
		changed = false
		for name, alts := range g.byName {
			if g.nullable[name] {
				continue
			}
			for _, ar := range alts {
				allNullable := true
				for _, s := range ar.syms {
					if s.kind != symNonterm || !g.nullable[s.name] {
						allNullable = false
						break
					}
				}
				if allNullable {
					g.nullable[name] = true
					changed = true
					break
				}
			}
		}
	}
}

// computeEmptyValues precomputes the semantic value of each nullable rule's
// empty derivation, so the parser can advance past nullable symbols during
// prediction without a zero-length completion pass.
func (g *Grammar) computeEmptyValues(rs *RuleSet) error {
	for name := range g.nullable {
		if _, err := g.emptyValue(name, nil); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grammar) emptyValue(name string, seen []string) (any, error) {
	if v, ok := g.emptyVal[name]; ok {
		return v, nil
	}
	for _, s := range seen {
		if s == name {
			return nil, fmt.Errorf("cyclic nullable rule %s", name)
		}
	}
	seen = append(seen, name)
	for _, ar := range g.byName[name] {
		ok := true
		for _, s := range ar.syms {
			if s.kind != symNonterm || !g.nullable[s.name] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		children := make([]any, len(ar.syms))
		for i, s := range ar.syms {
			v, err := g.emptyValue(s.name, seen)
			if err != nil {
				return nil, err
			}
			children[i] = v
		}
		v, err := apply(ar, children)
		if err != nil {
			return nil, err
		}
		g.emptyVal[name] = v
		return v, nil
	}
	return nil, fmt.Errorf("rule %s marked nullable but has no nullable alternative", name)
}

// apply runs a rule's action, or the default action when none is set: a
// single child passes through, multiple children collect into a slice.
func apply(ar *altRule, children []any) (any, error) {
	if ar.rule.Action != nil {
		return ar.rule.Action(ar.alt, children)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	out := make([]any, len(children))
	copy(out, children)
	return out, nil
}

// Goal returns the grammar's goal rule name.
func (g *Grammar) Goal() string {
	return g.goal
}
