package cfg

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed grammar source with the offending position.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("grammar syntax error at line %d column %d: %s", e.Line, e.Column, e.Message)
}

// QuoteLiteral renders text as a literal terminal symbol, escaping
// backslashes, double quotes and newlines so the result is safe inside
// grammar source.
func QuoteLiteral(text string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unquoteLiteral inverts QuoteLiteral.
func unquoteLiteral(sym string) (string, error) {
	if len(sym) < 2 || sym[0] != '"' || sym[len(sym)-1] != '"' {
		return "", fmt.Errorf("malformed literal symbol %s", sym)
	}
	var b strings.Builder
	body := sym[1 : len(sym)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in literal %s", sym)
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case '"', '\\':
			b.WriteByte(body[i])
		default:
			return "", fmt.Errorf("unknown escape \\%c in literal %s", body[i], sym)
		}
	}
	return b.String(), nil
}

// RenderSource serializes a rule set to grammar source text. The output is
// deterministic: rules appear in insertion order, one per line, preceded by
// their provenance comment when present.
func RenderSource(rs *RuleSet) string {
	var b strings.Builder
	for _, r := range rs.Rules() {
		if r.Comment != "" {
			fmt.Fprintf(&b, "// %s\n", r.Comment)
		}
		b.WriteString(r.Name)
		b.WriteString(" :")
		for alt, seq := range r.Alts {
			if alt > 0 {
				b.WriteString(" |")
			}
			if len(seq) == 0 {
				b.WriteString(` ()`)
			}
			for _, sym := range seq {
				b.WriteByte(' ')
				b.WriteString(sym)
			}
		}
		b.WriteString(" ;\n")
	}
	return b.String()
}

type srcToken struct {
	kind string // "ident", "literal", ":", "|", ";", "()", "eof"
	text string
	line int
	col  int
}

// ParseSource parses grammar source text back into a rule set. Rules parsed
// from source carry no actions; the default action applies.
func ParseSource(text string) (*RuleSet, error) {
	tokens, err := lexSource(text)
	if err != nil {
		return nil, err
	}
	rs := NewRuleSet()
	i := 0
	for tokens[i].kind != "eof" {
		name := tokens[i]
		if name.kind != "ident" {
			return nil, &SyntaxError{Message: fmt.Sprintf("expected rule name, got %q", name.text), Line: name.line, Column: name.col}
		}
		i++
		if tokens[i].kind != ":" {
			return nil, &SyntaxError{Message: "expected ':' after rule name", Line: tokens[i].line, Column: tokens[i].col}
		}
		i++
		var alts [][]string
		seq := []string{}
		for {
			tok := tokens[i]
			switch tok.kind {
			case "ident", "literal":
				seq = append(seq, tok.text)
				i++
			case "()":
				i++
			case "|":
				alts = append(alts, seq)
				seq = []string{}
				i++
			case ";":
				alts = append(alts, seq)
				i++
				goto done
			default:
				return nil, &SyntaxError{Message: fmt.Sprintf("unexpected %q in rule body", tok.text), Line: tok.line, Column: tok.col}
			}
		}
	done:
		if err := rs.Add(&Rule{Name: name.text, Alts: alts}); err != nil {
			return nil, &SyntaxError{Message: err.Error(), Line: name.line, Column: name.col}
		}
	}
	return rs, nil
}

func lexSource(text string) ([]srcToken, error) {
	var toks []srcToken
	line, col := 1, 1
	i := 0
	advance := func(n int) {
		for k := 0; k < n; k++ {
			if text[i+k] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			advance(1)
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			n := strings.IndexByte(text[i:], '\n')
			if n < 0 {
				n = len(text) - i
			}
			advance(n)
		case c == ':' || c == '|' || c == ';':
			toks = append(toks, srcToken{kind: string(c), text: string(c), line: line, col: col})
			advance(1)
		case c == '(' && i+1 < len(text) && text[i+1] == ')':
			toks = append(toks, srcToken{kind: "()", text: "()", line: line, col: col})
			advance(2)
		case c == '"':
			end := -1
			for j := i + 1; j < len(text); j++ {
				if text[j] == '\\' {
					j++
					continue
				}
				if text[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, &SyntaxError{Message: "unterminated literal", Line: line, Column: col}
			}
			lit := text[i : end+1]
			if _, err := unquoteLiteral(lit); err != nil {
				return nil, &SyntaxError{Message: err.Error(), Line: line, Column: col}
			}
			toks = append(toks, srcToken{kind: "literal", text: lit, line: line, col: col})
			advance(end + 1 - i)
		case isIdentByte(c, true):
			n := 1
			for i+n < len(text) && isIdentByte(text[i+n], false) {
				n++
			}
			toks = append(toks, srcToken{kind: "ident", text: text[i : i+n], line: line, col: col})
			advance(n)
		default:
			return nil, &SyntaxError{Message: fmt.Sprintf("unexpected character %q", c), Line: line, Column: col}
		}
	}
	toks = append(toks, srcToken{kind: "eof", line: line, col: col})
	return toks, nil
}

func isIdentByte(c byte, first bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' {
		return true
	}
	return !first && (c >= '0' && c <= '9' || c == '$')
}
