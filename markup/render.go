package markup

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Format selects the output form of Render.
type Format string

const (
	// FormatMarkup is normalized template markup source, the default.
	FormatMarkup Format = "markup"
	// FormatTree is the parsed AST as JSON, a passthrough for tooling.
	FormatTree Format = "tree"
	// FormatHTML renders chunks and binding spans as HTML.
	FormatHTML Format = "html"
	// FormatSlate renders the block structure used by the rich editor.
	FormatSlate Format = "slate"
)

// UnsupportedFormatError reports a Render format outside the known set.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported render format %q", e.Format)
}

// RenderOptions control Render output.
type RenderOptions struct {
	Format Format
	// UnquoteVariables drops the quotes around variable spans. It applies
	// identically on the HTML and slate paths.
	UnquoteVariables bool
}

// Render serializes an AST to the requested format.
func Render(nodes []Node, opts RenderOptions) (string, error) {
	switch opts.Format {
	case FormatMarkup, "":
		return renderMarkup(nodes), nil
	case FormatTree:
		data, err := json.MarshalIndent(nodesToTree(nodes), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatHTML:
		var b strings.Builder
		b.WriteString(`<div class="contract">`)
		renderHTML(&b, nodes, opts.UnquoteVariables)
		b.WriteString("</div>")
		return b.String(), nil
	case FormatSlate:
		data, err := json.MarshalIndent(map[string]any{
			"object": "value",
			"document": map[string]any{
				"object": "document",
				"nodes":  nodesToSlate(nodes, opts.UnquoteVariables),
			},
		}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", &UnsupportedFormatError{Format: string(opts.Format)}
	}
}

// NormalizeText canonicalizes chunk whitespace: CRLF becomes LF and runs of
// spaces and tabs collapse to a single space. Grammar literals and parse
// input pass through the same normalization so they line up byte for byte.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	inRun := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteByte(c)
	}
	return b.String()
}

// NormalizeAST applies NormalizeText to every chunk, recursively.
func NormalizeAST(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		switch v := n.(type) {
		case StaticChunk:
			v.Text = NormalizeText(v.Text)
			out[i] = v
		case LastChunk:
			v.Text = NormalizeText(v.Text)
			out[i] = v
		case ClauseBinding:
			v.Nested = NormalizeAST(v.Nested)
			out[i] = v
		case WithBinding:
			v.Nested = NormalizeAST(v.Nested)
			out[i] = v
		case UListBinding:
			v.Nested = NormalizeAST(v.Nested)
			out[i] = v
		case OListBinding:
			v.Nested = NormalizeAST(v.Nested)
			out[i] = v
		case JoinBinding:
			v.Nested = NormalizeAST(v.Nested)
			out[i] = v
		default:
			out[i] = n
		}
	}
	return out
}

func renderMarkup(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch v := n.(type) {
		case StaticChunk:
			b.WriteString(NormalizeText(v.Text))
		case LastChunk:
			b.WriteString(NormalizeText(v.Text))
		case Binding:
			fmt.Fprintf(&b, "{{%s}}", v.Field)
		case FormattedBinding:
			fmt.Fprintf(&b, "{{%s as %q}}", v.Field, v.Format)
		case IfBinding:
			fmt.Fprintf(&b, "{{#if %s}}%s{{/if}}", v.Field, v.LiteralTrue)
		case IfElseBinding:
			fmt.Fprintf(&b, "{{#if %s}}%s{{else}}%s{{/if}}", v.Field, v.LiteralTrue, v.LiteralFalse)
		case ClauseBinding:
			fmt.Fprintf(&b, "{{#clause %s}}%s{{/clause}}", v.Field, renderMarkup(v.Nested))
		case WithBinding:
			fmt.Fprintf(&b, "{{#with %s}}%s{{/with}}", v.Field, renderMarkup(v.Nested))
		case UListBinding:
			fmt.Fprintf(&b, "{{#ulist %s}}%s{{/ulist}}", v.Field, renderMarkup(v.Nested))
		case OListBinding:
			fmt.Fprintf(&b, "{{#olist %s}}%s{{/olist}}", v.Field, renderMarkup(v.Nested))
		case JoinBinding:
			fmt.Fprintf(&b, "{{#join %s %q}}%s{{/join}}", v.Field, v.Separator, renderMarkup(v.Nested))
		case Expr:
			fmt.Fprintf(&b, "{{%% %s %%}}", v.Source)
		}
	}
	return b.String()
}

func nodesToTree(nodes []Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		line, col := n.Pos()
		m := map[string]any{"line": line, "column": col}
		switch v := n.(type) {
		case StaticChunk:
			m["type"] = "chunk"
			m["text"] = v.Text
		case LastChunk:
			m["type"] = "lastChunk"
			m["text"] = v.Text
		case Binding:
			m["type"] = "variable"
			m["field"] = v.Field
		case FormattedBinding:
			m["type"] = "formattedVariable"
			m["field"] = v.Field
			m["format"] = v.Format
		case IfBinding:
			m["type"] = "if"
			m["field"] = v.Field
			m["whenTrue"] = v.LiteralTrue
		case IfElseBinding:
			m["type"] = "ifElse"
			m["field"] = v.Field
			m["whenTrue"] = v.LiteralTrue
			m["whenFalse"] = v.LiteralFalse
		case ClauseBinding:
			m["type"] = "clause"
			m["field"] = v.Field
			m["nodes"] = nodesToTree(v.Nested)
		case WithBinding:
			m["type"] = "with"
			m["field"] = v.Field
			m["nodes"] = nodesToTree(v.Nested)
		case UListBinding:
			m["type"] = "ulist"
			m["field"] = v.Field
			m["nodes"] = nodesToTree(v.Nested)
		case OListBinding:
			m["type"] = "olist"
			m["field"] = v.Field
			m["nodes"] = nodesToTree(v.Nested)
		case JoinBinding:
			m["type"] = "join"
			m["field"] = v.Field
			m["separator"] = v.Separator
			m["nodes"] = nodesToTree(v.Nested)
		case Expr:
			m["type"] = "expr"
			m["source"] = v.Source
		}
		out = append(out, m)
	}
	return out
}

func variableSpan(b *strings.Builder, class, text string, unquote bool) {
	b.WriteString(`<span class="` + class + `">`)
	if !unquote {
		b.WriteByte('"')
	}
	b.WriteString(html.EscapeString(text))
	if !unquote {
		b.WriteByte('"')
	}
	b.WriteString("</span>")
}

func renderHTML(b *strings.Builder, nodes []Node, unquote bool) {
	for _, n := range nodes {
		switch v := n.(type) {
		case StaticChunk:
			b.WriteString(strings.ReplaceAll(html.EscapeString(NormalizeText(v.Text)), "\n", "<br/>"))
		case LastChunk:
			b.WriteString(strings.ReplaceAll(html.EscapeString(NormalizeText(v.Text)), "\n", "<br/>"))
		case Binding:
			variableSpan(b, "variable", v.Field, unquote)
		case FormattedBinding:
			variableSpan(b, "variable", v.Field, unquote)
		case IfBinding:
			variableSpan(b, "conditional", v.LiteralTrue, unquote)
		case IfElseBinding:
			variableSpan(b, "conditional", v.LiteralTrue, unquote)
		case ClauseBinding:
			b.WriteString(`<div class="clause">`)
			renderHTML(b, v.Nested, unquote)
			b.WriteString("</div>")
		case WithBinding:
			renderHTML(b, v.Nested, unquote)
		case UListBinding:
			b.WriteString("<ul><li>")
			renderHTML(b, v.Nested, unquote)
			b.WriteString("</li></ul>")
		case OListBinding:
			b.WriteString("<ol><li>")
			renderHTML(b, v.Nested, unquote)
			b.WriteString("</li></ol>")
		case JoinBinding:
			renderHTML(b, v.Nested, unquote)
		case Expr:
			b.WriteString(`<span class="expr">` + html.EscapeString(v.Source) + "</span>")
		}
	}
}

func nodesToSlate(nodes []Node, unquote bool) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	text := func(t string) map[string]any {
		return map[string]any{"object": "text", "text": t}
	}
	for _, n := range nodes {
		switch v := n.(type) {
		case StaticChunk:
			out = append(out, text(NormalizeText(v.Text)))
		case LastChunk:
			out = append(out, text(NormalizeText(v.Text)))
		case Binding:
			t := v.Field
			if !unquote {
				t = `"` + t + `"`
			}
			out = append(out, map[string]any{"object": "inline", "type": "variable", "text": t})
		case FormattedBinding:
			t := v.Field
			if !unquote {
				t = `"` + t + `"`
			}
			out = append(out, map[string]any{"object": "inline", "type": "variable", "format": v.Format, "text": t})
		case IfBinding:
			out = append(out, map[string]any{"object": "inline", "type": "conditional", "text": v.LiteralTrue})
		case IfElseBinding:
			out = append(out, map[string]any{"object": "inline", "type": "conditional", "text": v.LiteralTrue, "else": v.LiteralFalse})
		case ClauseBinding:
			out = append(out, map[string]any{"object": "block", "type": "clause", "nodes": nodesToSlate(v.Nested, unquote)})
		case WithBinding:
			out = append(out, map[string]any{"object": "block", "type": "with", "nodes": nodesToSlate(v.Nested, unquote)})
		case UListBinding:
			out = append(out, map[string]any{"object": "block", "type": "ul_list", "nodes": nodesToSlate(v.Nested, unquote)})
		case OListBinding:
			out = append(out, map[string]any{"object": "block", "type": "ol_list", "nodes": nodesToSlate(v.Nested, unquote)})
		case JoinBinding:
			out = append(out, map[string]any{"object": "block", "type": "join", "nodes": nodesToSlate(v.Nested, unquote)})
		case Expr:
			out = append(out, map[string]any{"object": "inline", "type": "expr", "text": v.Source})
		}
	}
	return out
}
