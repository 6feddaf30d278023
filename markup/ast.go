// Package markup converts between annotated template text and its
// structured AST, drafts concrete markup from data, and extracts data from
// contract text using a compiled grammar.
//
// The markup syntax interleaves plain text with binding tags:
//
//	{{field}}                  variable binding
//	{{field as "D/M/YYYY"}}    formatted binding
//	{{#if f}}yes{{/if}}        boolean presence
//	{{#if f}}y{{else}}n{{/if}} boolean choice
//	{{#clause f}}…{{/clause}}  nested sub-clause
//	{{#with f}}…{{/with}}      nested sub-document
//	{{#ulist f}}…{{/ulist}}    unordered list
//	{{#olist f}}…{{/olist}}    ordered list
//	{{#join f ", "}}…{{/join}} list with explicit separator
//	{{% expr %}}               embedded expression
package markup

// Position locates a node in the original template source.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Pos returns the node's 1-based source line and column.
func (p Position) Pos() (int, int) {
	return p.Line, p.Column
}

// Node is one element of an annotated template AST. The concrete types
// below form a closed set; consumers dispatch with a type switch and must
// treat unknown types as an error.
type Node interface {
	Pos() (line, col int)
	node()
}

// StaticChunk is literal text between bindings.
type StaticChunk struct {
	Position
	Text string `json:"text"`
}

// LastChunk is the trailing literal text of a nesting level. It is distinct
// from StaticChunk so the compiler can drop empty trailing text.
type LastChunk struct {
	Position
	Text string `json:"text"`
}

// Binding ties a span of text to a schema property.
type Binding struct {
	Position
	Field string `json:"field"`
}

// FormattedBinding is a binding with an explicit format pattern, used for
// dates and monetary amounts.
type FormattedBinding struct {
	Position
	Field  string `json:"field"`
	Format string `json:"format"`
}

// IfBinding marks optional literal text whose presence drives a boolean.
type IfBinding struct {
	Position
	Field       string `json:"field"`
	LiteralTrue string `json:"literalTrue"`
}

// IfElseBinding chooses between two literal texts on a boolean.
type IfElseBinding struct {
	Position
	Field        string `json:"field"`
	LiteralTrue  string `json:"literalTrue"`
	LiteralFalse string `json:"literalFalse"`
}

// ClauseBinding nests a sub-clause template under a complex field.
type ClauseBinding struct {
	Position
	Field  string `json:"field"`
	Nested []Node `json:"nested"`
}

// WithBinding nests a sub-document template under a complex field.
type WithBinding struct {
	Position
	Field  string `json:"field"`
	Nested []Node `json:"nested"`
}

// UListBinding repeats a nested template per element, bulleted.
type UListBinding struct {
	Position
	Field  string `json:"field"`
	Nested []Node `json:"nested"`
}

// OListBinding repeats a nested template per element, numbered.
type OListBinding struct {
	Position
	Field  string `json:"field"`
	Nested []Node `json:"nested"`
}

// JoinBinding repeats a nested template per element with a caller-chosen
// separator.
type JoinBinding struct {
	Position
	Field     string `json:"field"`
	Separator string `json:"separator"`
	Nested    []Node `json:"nested"`
}

// Expr is a free-form embedded expression, passed through to the logic
// engine untouched.
type Expr struct {
	Position
	Source string `json:"source"`
}

func (StaticChunk) node()      {}
func (LastChunk) node()        {}
func (Binding) node()          {}
func (FormattedBinding) node() {}
func (IfBinding) node()        {}
func (IfElseBinding) node()    {}
func (ClauseBinding) node()    {}
func (WithBinding) node()      {}
func (UListBinding) node()     {}
func (OListBinding) node()     {}
func (JoinBinding) node()      {}
func (Expr) node()             {}
