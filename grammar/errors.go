// Package grammar compiles an annotated template AST against a declared
// schema into a context-free rule set with semantic actions. The rule set
// both drives parsing of concrete contract text and serializes to grammar
// source for archival.
package grammar

import "fmt"

// StructuralError reports a template that cannot be compiled: a binding to
// an undeclared field, a conditional on a non-boolean, or a format on an
// unsupported type. Line and Column point at the offending binding in the
// original template source.
type StructuralError struct {
	Message string
	Line    int
	Column  int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("template error at line %d column %d: %s", e.Line, e.Column, e.Message)
}

func structural(line, col int, format string, args ...any) *StructuralError {
	return &StructuralError{Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}
