package markup

import (
	"fmt"
	"strings"
)

// MarkupError reports malformed template markup with its source position.
type MarkupError struct {
	Message string
	Line    int
	Column  int
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("markup error at line %d column %d: %s", e.Line, e.Column, e.Message)
}

// Parse converts annotated template text into its AST. Every nesting level
// ends with a LastChunk, which may be empty.
func Parse(text string) ([]Node, error) {
	s := &scanner{src: text, line: 1, col: 1}
	nodes, closed, err := s.parseLevel("")
	if err != nil {
		return nil, err
	}
	if closed != "" {
		return nil, s.errorf("unexpected closing tag {{/%s}}", closed)
	}
	return nodes, nil
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func (s *scanner) errorf(format string, args ...any) error {
	return &MarkupError{Message: fmt.Sprintf(format, args...), Line: s.line, Column: s.col}
}

func (s *scanner) errorAt(p Position, format string, args ...any) error {
	return &MarkupError{Message: fmt.Sprintf(format, args...), Line: p.Line, Column: p.Column}
}

func (s *scanner) position() Position {
	return Position{Line: s.line, Column: s.col}
}

// advance moves the cursor forward n bytes, tracking line and column.
func (s *scanner) advance(n int) {
	for k := 0; k < n; k++ {
		if s.src[s.pos+k] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}
	s.pos += n
}

// parseLevel parses nodes until end of input or a closing tag. It returns
// the closing keyword ("" at end of input) so callers can match blocks.
func (s *scanner) parseLevel(openKeyword string) ([]Node, string, error) {
	var nodes []Node
	for {
		chunkPos := s.position()
		next := strings.Index(s.src[s.pos:], "{{")
		if next < 0 {
			text := s.src[s.pos:]
			s.advance(len(text))
			nodes = append(nodes, LastChunk{Position: chunkPos, Text: text})
			if openKeyword != "" {
				return nil, "", s.errorf("unterminated {{#%s}} block", openKeyword)
			}
			return nodes, "", nil
		}
		if next > 0 {
			nodes = append(nodes, StaticChunk{Position: chunkPos, Text: s.src[s.pos : s.pos+next]})
			s.advance(next)
		}

		tagPos := s.position()
		body, isExpr, err := s.readTag()
		if err != nil {
			return nil, "", err
		}
		if isExpr {
			nodes = append(nodes, Expr{Position: tagPos, Source: strings.TrimSpace(body)})
			continue
		}
		body = strings.TrimSpace(body)
		switch {
		case strings.HasPrefix(body, "/"):
			// Closing tag ends this level; the final chunk before it was
			// emitted as StaticChunk, so demote it to LastChunk.
			nodes = demoteLast(nodes, chunkPos)
			return nodes, strings.TrimPrefix(body, "/"), nil
		case strings.HasPrefix(body, "#"):
			node, err := s.parseBlock(tagPos, strings.TrimPrefix(body, "#"))
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)
		case body == "else":
			return nil, "", s.errorAt(tagPos, "{{else}} outside an {{#if}} block")
		default:
			node, err := s.parseVariable(tagPos, body)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)
		}
	}
}

// demoteLast converts a trailing StaticChunk into a LastChunk, inserting an
// empty one when the level ended directly after a tag.
func demoteLast(nodes []Node, pos Position) []Node {
	if len(nodes) > 0 {
		if sc, ok := nodes[len(nodes)-1].(StaticChunk); ok {
			nodes[len(nodes)-1] = LastChunk{Position: sc.Position, Text: sc.Text}
			return nodes
		}
	}
	return append(nodes, LastChunk{Position: pos})
}

// readTag consumes one {{...}} or {{% ... %}} tag and returns its body.
func (s *scanner) readTag() (string, bool, error) {
	start := s.position()
	s.advance(2) // {{
	if s.pos < len(s.src) && s.src[s.pos] == '%' {
		end := strings.Index(s.src[s.pos:], "%}}")
		if end < 0 {
			return "", false, s.errorAt(start, "unterminated expression tag")
		}
		body := s.src[s.pos+1 : s.pos+end]
		s.advance(end + 3)
		return body, true, nil
	}
	end := strings.Index(s.src[s.pos:], "}}")
	if end < 0 {
		return "", false, s.errorAt(start, "unterminated tag")
	}
	body := s.src[s.pos : s.pos+end]
	s.advance(end + 2)
	return body, false, nil
}

// parseVariable handles {{field}} and {{field as "FORMAT"}}.
func (s *scanner) parseVariable(pos Position, body string) (Node, error) {
	field, rest, hasRest := strings.Cut(body, " ")
	if !validFieldName(field) {
		return nil, s.errorAt(pos, "invalid field name %q", field)
	}
	if !hasRest {
		return Binding{Position: pos, Field: field}, nil
	}
	rest = strings.TrimSpace(rest)
	format, ok := strings.CutPrefix(rest, "as ")
	if !ok {
		return nil, s.errorAt(pos, "malformed binding tag %q", body)
	}
	format = strings.TrimSpace(format)
	if len(format) < 2 || format[0] != '"' || format[len(format)-1] != '"' {
		return nil, s.errorAt(pos, "format must be a quoted string in %q", body)
	}
	return FormattedBinding{Position: pos, Field: field, Format: format[1 : len(format)-1]}, nil
}

// parseBlock handles {{#keyword field ...}} ... {{/keyword}}.
func (s *scanner) parseBlock(pos Position, body string) (Node, error) {
	keyword, rest, _ := strings.Cut(body, " ")
	rest = strings.TrimSpace(rest)

	if keyword == "if" {
		if !validFieldName(rest) {
			return nil, s.errorAt(pos, "invalid field name %q in {{#if}}", rest)
		}
		return s.parseIf(pos, rest)
	}

	var field, separator string
	switch keyword {
	case "clause", "with", "ulist", "olist":
		field = rest
	case "join":
		var sep string
		var ok bool
		field, sep, ok = strings.Cut(rest, " ")
		sep = strings.TrimSpace(sep)
		if !ok || len(sep) < 2 || sep[0] != '"' || sep[len(sep)-1] != '"' {
			return nil, s.errorAt(pos, "{{#join}} needs a quoted separator")
		}
		separator = sep[1 : len(sep)-1]
	default:
		return nil, s.errorAt(pos, "unknown block keyword %q", keyword)
	}
	if !validFieldName(field) {
		return nil, s.errorAt(pos, "invalid field name %q in {{#%s}}", field, keyword)
	}

	nested, closed, err := s.parseLevel(keyword)
	if err != nil {
		return nil, err
	}
	if closed != keyword {
		return nil, s.errorAt(pos, "{{#%s}} closed by {{/%s}}", keyword, closed)
	}

	switch keyword {
	case "clause":
		return ClauseBinding{Position: pos, Field: field, Nested: nested}, nil
	case "with":
		return WithBinding{Position: pos, Field: field, Nested: nested}, nil
	case "ulist":
		return UListBinding{Position: pos, Field: field, Nested: nested}, nil
	case "olist":
		return OListBinding{Position: pos, Field: field, Nested: nested}, nil
	default:
		return JoinBinding{Position: pos, Field: field, Separator: separator, Nested: nested}, nil
	}
}

// parseIf reads the literal body of an {{#if}} block. The body is plain
// text, optionally split by {{else}}.
func (s *scanner) parseIf(pos Position, field string) (Node, error) {
	var parts []string
	var current strings.Builder
	for {
		next := strings.Index(s.src[s.pos:], "{{")
		if next < 0 {
			return nil, s.errorAt(pos, "unterminated {{#if}} block")
		}
		current.WriteString(s.src[s.pos : s.pos+next])
		s.advance(next)
		tagPos := s.position()
		body, isExpr, err := s.readTag()
		if err != nil {
			return nil, err
		}
		if isExpr {
			return nil, s.errorAt(tagPos, "expression not allowed inside {{#if}}")
		}
		switch strings.TrimSpace(body) {
		case "else":
			parts = append(parts, current.String())
			current.Reset()
		case "/if":
			parts = append(parts, current.String())
			if len(parts) == 1 {
				return IfBinding{Position: pos, Field: field, LiteralTrue: parts[0]}, nil
			}
			if len(parts) == 2 {
				return IfElseBinding{Position: pos, Field: field, LiteralTrue: parts[0], LiteralFalse: parts[1]}, nil
			}
			return nil, s.errorAt(pos, "{{#if}} block has more than one {{else}}")
		default:
			return nil, s.errorAt(tagPos, "only literal text allowed inside {{#if}}")
		}
	}
}

func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || i > 0 && c >= '0' && c <= '9'
		if !ok {
			return false
		}
	}
	return true
}
