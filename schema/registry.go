package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Registry holds the declared types of one template model, keyed by
// fully-qualified name.
type Registry struct {
	types map[string]*TypeDecl
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*TypeDecl)}
}

// Register adds a type declaration. It rejects duplicate names, unknown
// kinds, and concepts declaring more than one identifier property.
func (r *Registry) Register(decl *TypeDecl) error {
	if decl.FQN == "" {
		return fmt.Errorf("type declaration has no fully-qualified name")
	}
	if _, exists := r.types[decl.FQN]; exists {
		return fmt.Errorf("duplicate type declaration: %s", decl.FQN)
	}
	ids := 0
	for _, p := range decl.Properties {
		if p.IsIdentifier {
			ids++
		}
	}
	if ids > 1 {
		return fmt.Errorf("type %s declares %d identifier properties, at most one allowed", decl.FQN, ids)
	}
	r.types[decl.FQN] = decl
	return nil
}

// LookupType resolves a fully-qualified type name.
// It fails explicitly when the name is not declared.
func (r *Registry) LookupType(fqn string) (*TypeDecl, error) {
	decl, ok := r.types[fqn]
	if !ok {
		return nil, fmt.Errorf("type not found: %s", fqn)
	}
	return decl, nil
}

// LookupConforming finds the single declared type extending base.
// Zero matches and multiple matches are both explicit failures, so callers
// never silently pick an arbitrary model root.
func (r *Registry) LookupConforming(base string) (*TypeDecl, error) {
	var matches []*TypeDecl
	for _, decl := range r.types {
		if decl.Extends == base {
			matches = append(matches, decl)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no type extends %s", base)
	case 1:
		return matches[0], nil
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].FQN < matches[j].FQN })
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.FQN
		}
		return nil, fmt.Errorf("ambiguous base type %s: %d candidates %v", base, len(matches), names)
	}
}

// FQNs returns all declared type names in sorted order.
func (r *Registry) FQNs() []string {
	out := make([]string, 0, len(r.types))
	for fqn := range r.types {
		out = append(out, fqn)
	}
	sort.Strings(out)
	return out
}

// Decls returns all declarations sorted by fully-qualified name.
// The ordering is stable so serialized forms hash deterministically.
func (r *Registry) Decls() []*TypeDecl {
	out := make([]*TypeDecl, 0, len(r.types))
	for _, fqn := range r.FQNs() {
		out = append(out, r.types[fqn])
	}
	return out
}

// FromJSON builds a registry from a JSON array of type declarations.
func FromJSON(data []byte) (*Registry, error) {
	var decls []*TypeDecl
	if err := json.Unmarshal(data, &decls); err != nil {
		return nil, fmt.Errorf("invalid model JSON: %w", err)
	}
	r := NewRegistry()
	for _, d := range decls {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ToJSON serializes all declarations in sorted order.
func (r *Registry) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r.Decls(), "", "  ")
}
