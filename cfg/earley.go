package cfg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParserUsed is returned when a Parser is asked to parse twice. Parsers
// carry chart state from a parse in progress and are strictly one-shot.
var ErrParserUsed = errors.New("parser already used, construct a fresh one")

// NoParseError reports input that the grammar cannot derive. Pos is the
// byte offset beyond which no progress was possible.
type NoParseError struct {
	Pos    int
	Line   int
	Column int
}

func (e *NoParseError) Error() string {
	return fmt.Sprintf("no parse: input not recognized past line %d column %d", e.Line, e.Column)
}

// AmbiguousParseError reports input with more than one successful
// interpretation. It is distinct from NoParseError because the remediation
// differs: ambiguity is a grammar defect, not an input defect.
type AmbiguousParseError struct {
	Candidates int
}

func (e *AmbiguousParseError) Error() string {
	return fmt.Sprintf("ambiguous parse: %d candidate interpretations, expected exactly one", e.Candidates)
}

// Parser executes one Earley parse over a compiled grammar.
type Parser struct {
	g    *Grammar
	used bool
}

// NewParser constructs a parser bound to this grammar. Each parse attempt
// needs its own instance.
func (g *Grammar) NewParser() *Parser {
	return &Parser{g: g}
}

// item is an Earley chart entry: an alternative with a dot position and the
// offset where its match began. prev/child link the derivation; prev2/child2
// record a second distinct derivation of the same entry, which is how
// ambiguity is detected.
type item struct {
	ar          *altRule
	dot, origin int
	prev        *item
	child       *childNode
	prev2       *item
	child2      *childNode
}

// childNode is the value consumed by advancing an item's dot: either a
// terminal's value (or a nullable rule's precomputed empty value), or a
// completed non-terminal item.
type childNode struct {
	val  any
	item *item
}

type itemKey struct {
	ar          *altRule
	dot, origin int
}

type stateSet struct {
	items []*item
	index map[itemKey]*item
}

type chart struct {
	sets []*stateSet
}

func newChart(n int) *chart {
	c := &chart{sets: make([]*stateSet, n+1)}
	for i := range c.sets {
		c.sets[i] = &stateSet{index: make(map[itemKey]*item)}
	}
	return c
}

// add inserts an item, or records a second derivation when an equivalent
// item already exists with different back pointers.
func (c *chart) add(pos int, ar *altRule, dot, origin int, prev *item, child *childNode) {
	set := c.sets[pos]
	key := itemKey{ar, dot, origin}
	if existing, ok := set.index[key]; ok {
		if prev != existing.prev || !sameChild(child, existing.child) {
			if existing.prev2 == nil && existing.child2 == nil {
				existing.prev2 = prev
				existing.child2 = child
			}
		}
		return
	}
	it := &item{ar: ar, dot: dot, origin: origin, prev: prev, child: child}
	set.index[key] = it
	set.items = append(set.items, it)
}

// sameChild compares derivation children. Two value nodes reached through
// the same predecessor always carry the same scanned value, so only the
// completed-item pointers need comparing.
func sameChild(a, b *childNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.item != nil || b.item != nil {
		return a.item == b.item
	}
	return true
}

// Parse runs the grammar over text and returns the candidate semantic
// values of the goal rule, enumerated up to two. Zero candidates yields a
// *NoParseError; callers that require unambiguous input treat two as an
// ambiguity failure.
func (p *Parser) Parse(text string) ([]any, error) {
	if p.used {
		return nil, ErrParserUsed
	}
	p.used = true

	g := p.g
	c := newChart(len(text))
	for _, ar := range g.byName[g.goal] {
		c.add(0, ar, 0, 0, nil, nil)
	}

	furthest := 0
	for pos := 0; pos <= len(text); pos++ {
		set := c.sets[pos]
		if len(set.items) > 0 && pos > furthest {
			furthest = pos
		}
		for k := 0; k < len(set.items); k++ {
			it := set.items[k]
			if it.dot < len(it.ar.syms) {
				sym := it.ar.syms[it.dot]
				switch sym.kind {
				case symNonterm:
					for _, ar := range g.byName[sym.name] {
						c.add(pos, ar, 0, pos, nil, nil)
					}
					// Nullable symbols advance at prediction time, so the
					// completer can skip zero-length matches entirely.
					if g.nullable[sym.name] {
						c.add(pos, it.ar, it.dot+1, it.origin, it, &childNode{val: g.emptyVal[sym.name]})
					}
				case symLiteral:
					if strings.HasPrefix(text[pos:], sym.lit) {
						c.add(pos+len(sym.lit), it.ar, it.dot+1, it.origin, it, &childNode{val: sym.lit})
					}
				case symLexical:
					if n, v, ok := sym.match(text, pos); ok && n > 0 {
						c.add(pos+n, it.ar, it.dot+1, it.origin, it, &childNode{val: v})
					}
				}
				continue
			}
			// Completed item. Zero-length completions are handled by the
			// nullable advance above; running them here would double-count
			// derivations and report spurious ambiguity.
			if pos == it.origin {
				continue
			}
			name := it.ar.rule.Name
			for _, parent := range c.sets[it.origin].items {
				if parent.dot < len(parent.ar.syms) {
					s := parent.ar.syms[parent.dot]
					if s.kind == symNonterm && s.name == name {
						c.add(pos, parent.ar, parent.dot+1, parent.origin, parent, &childNode{item: it})
					}
				}
			}
		}
	}

	var results []any
	for _, it := range c.sets[len(text)].items {
		if it.origin == 0 && it.dot == len(it.ar.syms) && it.ar.rule.Name == g.goal {
			vals, err := itemValues(it, 2-len(results))
			if err != nil {
				return nil, err
			}
			results = append(results, vals...)
			if len(results) >= 2 {
				return results[:2], nil
			}
		}
	}
	if len(results) == 0 {
		line, col := lineCol(text, furthest)
		return nil, &NoParseError{Pos: furthest, Line: line, Column: col}
	}
	return results, nil
}

// itemValues enumerates up to limit semantic values of a completed item by
// walking its derivation back pointers and applying the rule action to each
// distinct children sequence.
func itemValues(it *item, limit int) ([]any, error) {
	if limit <= 0 {
		return nil, nil
	}
	lists, err := childrenLists(it, limit)
	if err != nil {
		return nil, err
	}
	var out []any
	for _, children := range lists {
		v, err := apply(it.ar, children)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// childrenLists enumerates the distinct children-value sequences deriving
// an item, capped at limit.
func childrenLists(it *item, limit int) ([][]any, error) {
	if it.dot == 0 {
		return [][]any{{}}, nil
	}
	type deriv struct {
		prev  *item
		child *childNode
	}
	derivs := []deriv{{it.prev, it.child}}
	if it.prev2 != nil || it.child2 != nil {
		derivs = append(derivs, deriv{it.prev2, it.child2})
	}

	var out [][]any
	for _, d := range derivs {
		prefixes, err := childrenLists(d.prev, limit)
		if err != nil {
			return nil, err
		}
		var childVals []any
		if d.child.item != nil {
			childVals, err = itemValues(d.child.item, limit)
			if err != nil {
				return nil, err
			}
		} else {
			childVals = []any{d.child.val}
		}
		for _, prefix := range prefixes {
			for _, cv := range childVals {
				children := make([]any, len(prefix)+1)
				copy(children, prefix)
				children[len(prefix)] = cv
				out = append(out, children)
				if len(out) >= limit {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

// lineCol converts a byte offset to 1-based line and column numbers.
func lineCol(text string, pos int) (int, int) {
	if pos > len(text) {
		pos = len(text)
	}
	line, col := 1, 1
	for i := 0; i < pos; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
