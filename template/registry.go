package template

import (
	"errors"
	"fmt"

	"github.com/templet-xyz/go-templet/cache"
	"github.com/templet-xyz/go-templet/cfg"
	"github.com/templet-xyz/go-templet/grammar"
	"github.com/templet-xyz/go-templet/markup"
)

// ErrGrammarNotBuilt is returned when a parser is requested before any
// grammar has been set or built.
var ErrGrammarNotBuilt = errors.New("no grammar has been set or built for this template")

// GrammarSyntaxError wraps CFG engine diagnostics for malformed grammar
// source, generated or hand-edited.
type GrammarSyntaxError struct {
	Err error
}

func (e *GrammarSyntaxError) Error() string {
	return fmt.Sprintf("invalid grammar source: %v", e.Err)
}

func (e *GrammarSyntaxError) Unwrap() error {
	return e.Err
}

// Registry holds a template's compiled grammar. Its state machine is
// uninitialized until the first successful SetGrammar or BuildGrammar, and
// built from then on; setting again replaces the compiled form idempotently.
// There is no teardown: the registry lives as long as its template.
type Registry struct {
	t              *Template
	compiled       *cfg.Grammar
	source         string
	hasExpressions bool
}

// NewRegistry creates the uninitialized grammar slot for a template.
func NewRegistry(t *Template) *Registry {
	return &Registry{t: t}
}

// Built reports whether a grammar is available.
func (r *Registry) Built() bool {
	return r.compiled != nil
}

// Source returns the grammar source of the current compiled form, "" when
// nothing has been built.
func (r *Registry) Source() string {
	return r.source
}

// HasExpressions reports whether the compiled template embeds free-form
// expressions, which constrains logic engine selection downstream.
func (r *Registry) HasExpressions() bool {
	return r.hasExpressions
}

// SetGrammar compiles grammar source text immediately and replaces any
// previous compiled form. Rules parsed from raw source carry default
// actions only; templates normally go through BuildGrammar, which keeps the
// compiler's semantic actions attached.
func (r *Registry) SetGrammar(source string) error {
	rs, err := cfg.ParseSource(source)
	if err != nil {
		return &GrammarSyntaxError{Err: err}
	}
	compiled, err := cfg.Compile(rs, grammar.GoalRule)
	if err != nil {
		return &GrammarSyntaxError{Err: err}
	}
	r.compiled = compiled
	r.source = source
	return nil
}

// BuildGrammar is the convenience path from annotated markup to an
// executable grammar: normalize the markup by round-tripping it through the
// markup transformer, compile it against the template's model, render the
// rule set to deterministic grammar source for archival, and install the
// compiled form. The engine executes the in-memory rule table directly; the
// rendered source is data, never code.
func (r *Registry) BuildGrammar(markupText string) error {
	ast, err := markup.Parse(markupText)
	if err != nil {
		return err
	}
	normalized, err := markup.Render(ast, markup.RenderOptions{Format: markup.FormatMarkup})
	if err != nil {
		return err
	}
	ast, err = markup.Parse(normalized)
	if err != nil {
		return err
	}

	rs, result, err := r.t.Compiler().Compile(ast, r.t.TypeName())
	if err != nil {
		return err
	}
	compiled, err := cfg.Compile(rs, grammar.GoalRule)
	if err != nil {
		return &GrammarSyntaxError{Err: err}
	}
	r.compiled = compiled
	r.source = cfg.RenderSource(rs)
	r.hasExpressions = result.HasExpressions
	return nil
}

// install places an already-compiled grammar in the slot, used when a
// cached compiled form is available for this template's identity hash.
func (r *Registry) install(cached *cache.Compiled) {
	r.compiled = cached.Grammar
	r.source = cached.Source
	r.hasExpressions = cached.HasExpressions
}

// Compiled returns the executable grammar, or ErrGrammarNotBuilt.
func (r *Registry) Compiled() (*cfg.Grammar, error) {
	if r.compiled == nil {
		return nil, ErrGrammarNotBuilt
	}
	return r.compiled, nil
}

// Parser returns a fresh parser instance over the compiled grammar. Every
// parse attempt needs its own instance; parsers carry in-progress state.
func (r *Registry) Parser() (*cfg.Parser, error) {
	compiled, err := r.Compiled()
	if err != nil {
		return nil, err
	}
	return compiled.NewParser(), nil
}
