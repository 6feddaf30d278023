// Package template ties the pieces together: a Template owns a schema
// registry, an annotated markup AST, a compiled-grammar slot, and a cached
// identity hash. It offers the two pipeline directions: parsing contract
// text into data and drafting text from data.
package template

import (
	"fmt"

	"github.com/templet-xyz/go-templet/grammar"
	"github.com/templet-xyz/go-templet/markup"
	"github.com/templet-xyz/go-templet/schema"
)

// ClauseBase is the base type a template's root concept extends when no
// explicit type is configured.
const ClauseBase = "Clause"

// Template is one contract template: metadata, model, annotated markup and
// the grammar compiled from them. A Template instance is single-writer;
// concurrent mutation or compilation must be serialized by the caller.
type Template struct {
	name        string
	version     string
	description string
	readme      string
	keywords    []string

	requestSample   map[string]any
	responseSample  map[string]any
	samplesByLocale map[string]string

	logic        string
	logicOmitted bool

	model *schema.Registry
	fqn   string
	ast   []markup.Node

	registry *Registry
	data     map[string]any

	// hash caches the identity digest; "" means stale.
	hash string
}

// New assembles a template from its parts. markupText is annotated template
// source; fqn is the root concept the template binds, or "" to resolve the
// single type extending ClauseBase.
func New(name, version string, model *schema.Registry, markupText, fqn string) (*Template, error) {
	if fqn == "" {
		decl, err := model.LookupConforming(ClauseBase)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		fqn = decl.FQN
	} else if _, err := model.LookupType(fqn); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	ast, err := markup.Parse(markupText)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	t := &Template{
		name:         name,
		version:      version,
		model:        model,
		fqn:          fqn,
		ast:          ast,
		logicOmitted: true,
	}
	t.registry = NewRegistry(t)
	return t, nil
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Version returns the template version.
func (t *Template) Version() string { return t.version }

// Description returns the template description.
func (t *Template) Description() string { return t.description }

// Readme returns the template README text.
func (t *Template) Readme() string { return t.readme }

// Keywords returns the template keywords.
func (t *Template) Keywords() []string { return t.keywords }

// Model returns the template's type registry.
func (t *Template) Model() *schema.Registry { return t.model }

// TypeName returns the fully-qualified root concept name.
func (t *Template) TypeName() string { return t.fqn }

// AST returns the annotated markup tree.
func (t *Template) AST() []markup.Node { return t.ast }

// Logic returns the template's logic source and whether it was omitted.
func (t *Template) Logic() (string, bool) { return t.logic, t.logicOmitted }

// Grammar returns the compiled-grammar registry.
func (t *Template) Grammar() *Registry { return t.registry }

// MarkupSource returns the normalized annotated markup source.
func (t *Template) MarkupSource() string {
	out, _ := markup.Render(t.ast, markup.RenderOptions{Format: markup.FormatMarkup})
	return out
}

// SetDescription replaces the description and invalidates the identity hash.
func (t *Template) SetDescription(description string) {
	t.description = description
	t.hash = ""
}

// SetReadme replaces the README and invalidates the identity hash.
func (t *Template) SetReadme(readme string) {
	t.readme = readme
	t.hash = ""
}

// SetKeywords replaces the keywords and invalidates the identity hash.
func (t *Template) SetKeywords(keywords []string) {
	t.keywords = append([]string(nil), keywords...)
	t.hash = ""
}

// SetRequestSample replaces the request shape sample and invalidates the
// identity hash.
func (t *Template) SetRequestSample(sample map[string]any) {
	t.requestSample = sample
	t.hash = ""
}

// SetResponseSample replaces the response shape sample and invalidates the
// identity hash.
func (t *Template) SetResponseSample(sample map[string]any) {
	t.responseSample = sample
	t.hash = ""
}

// SetSample records a sample contract text for a locale and invalidates the
// identity hash.
func (t *Template) SetSample(locale, text string) {
	if t.samplesByLocale == nil {
		t.samplesByLocale = make(map[string]string)
	}
	t.samplesByLocale[locale] = text
	t.hash = ""
}

// SetLogic attaches logic source. Passing "" marks the logic as omitted,
// which is a distinct, reproducible identity from carrying logic.
func (t *Template) SetLogic(logic string) {
	t.logic = logic
	t.logicOmitted = logic == ""
	t.hash = ""
}

// Compiler returns a grammar compiler bound to this template's model.
func (t *Template) Compiler() *grammar.Compiler {
	return grammar.NewCompiler(t.model)
}

// BuildGrammar compiles the template's annotated markup into an executable
// grammar via the registry.
func (t *Template) BuildGrammar() error {
	return t.registry.BuildGrammar(t.MarkupSource())
}
