// Package samples provides ready-made contract templates used by tests,
// examples and benchmarks.
package samples

import (
	"fmt"

	"github.com/templet-xyz/go-templet/schema"
	"github.com/templet-xyz/go-templet/template"
)

// Sample defines one canned contract template.
type Sample interface {
	Name() string
	Description() string
	Model() (*schema.Registry, error)
	Markup() string
	// Text is a contract instance the compiled grammar parses.
	Text() string
}

// Registry holds all available samples.
var Registry = map[string]Sample{
	"late-delivery": &LateDeliverySample{},
	"fragile-goods": &FragileGoodsSample{},
}

// Get returns a sample by name.
func Get(name string) (Sample, error) {
	s, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample: %s", name)
	}
	return s, nil
}

// List returns all available sample names.
func List() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}

// Build assembles a ready-to-use template from a sample, with its grammar
// compiled.
func Build(name string) (*template.Template, error) {
	s, err := Get(name)
	if err != nil {
		return nil, err
	}
	model, err := s.Model()
	if err != nil {
		return nil, err
	}
	t, err := template.New(s.Name(), "0.1.0", model, s.Markup(), "")
	if err != nil {
		return nil, err
	}
	t.SetDescription(s.Description())
	t.SetSample("default", s.Text())
	if err := t.BuildGrammar(); err != nil {
		return nil, err
	}
	return t, nil
}
