// Package cfg is a small context-free grammar engine. Grammars are plain
// in-memory rule tables with semantic actions; parsing is Earley-style and
// reports zero, one, or multiple candidate interpretations so callers can
// distinguish "no parse" from "ambiguous grammar".
package cfg

import (
	"fmt"
	"strings"
)

// ActionFunc computes the semantic value of a rule from the values of the
// matched alternative's symbols. alt is the index of the alternative that
// matched.
type ActionFunc func(alt int, children []any) (any, error)

// Rule is one named production: a list of alternative symbol sequences and
// an optional action. A symbol that starts with a double quote is an inline
// literal terminal; otherwise it names another rule or a built-in lexical
// terminal (see terminals.go).
type Rule struct {
	Name    string
	Alts    [][]string
	Action  ActionFunc
	Comment string
}

// RuleSet is an ordered collection of uniquely named rules.
type RuleSet struct {
	rules []*Rule
	index map[string]*Rule
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{index: make(map[string]*Rule)}
}

// Add appends a rule, rejecting duplicate names.
func (rs *RuleSet) Add(r *Rule) error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if strings.HasPrefix(r.Name, `"`) {
		return fmt.Errorf("rule name %s may not be a literal", r.Name)
	}
	if _, exists := rs.index[r.Name]; exists {
		return fmt.Errorf("duplicate rule name: %s", r.Name)
	}
	if len(r.Alts) == 0 {
		return fmt.Errorf("rule %s has no alternatives", r.Name)
	}
	rs.index[r.Name] = r
	rs.rules = append(rs.rules, r)
	return nil
}

// Has reports whether a rule with the given name is already defined.
func (rs *RuleSet) Has(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Get returns a rule by name.
func (rs *RuleSet) Get(name string) (*Rule, bool) {
	r, ok := rs.index[name]
	return r, ok
}

// Rules returns the rules in insertion order.
func (rs *RuleSet) Rules() []*Rule {
	return rs.rules
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}
