package markup

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultDateFormat is used when an unformatted binding drafts a DateTime
// value; the grammar compiler emits the matching fragment on the parse side.
const DefaultDateFormat = "DD/MM/YYYY"

// DraftOptions control data-to-markup drafting.
type DraftOptions struct {
	// UnquoteVariables drops the quotes around drafted string values.
	UnquoteVariables bool
}

// RawString drafts without surrounding quotes regardless of options. Enum
// values use it: their text form is the bare literal the grammar reads back.
type RawString string

// DraftAST walks a template AST together with data and produces a concrete
// markup AST containing only text chunks. It is the inverse of data
// extraction: rendering the result with FormatMarkup yields text the
// template's compiled grammar parses back to the same data.
func DraftAST(nodes []Node, data map[string]any, opts DraftOptions) ([]Node, error) {
	var out []Node
	for _, n := range nodes {
		switch v := n.(type) {
		case StaticChunk:
			out = append(out, v)
		case LastChunk:
			out = append(out, v)
		case Binding:
			val, ok := data[v.Field]
			if !ok || val == nil {
				continue
			}
			text, err := draftValue(val, opts)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", v.Field, err)
			}
			out = append(out, StaticChunk{Position: v.Position, Text: text})
		case FormattedBinding:
			val, ok := data[v.Field]
			if !ok || val == nil {
				continue
			}
			text, err := draftFormatted(val, v.Format)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", v.Field, err)
			}
			out = append(out, StaticChunk{Position: v.Position, Text: text})
		case IfBinding:
			if truthy(data[v.Field]) {
				out = append(out, StaticChunk{Position: v.Position, Text: v.LiteralTrue})
			}
		case IfElseBinding:
			text := v.LiteralFalse
			if truthy(data[v.Field]) {
				text = v.LiteralTrue
			}
			out = append(out, StaticChunk{Position: v.Position, Text: text})
		case ClauseBinding:
			nested, err := draftNested(v.Field, v.Nested, data, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case WithBinding:
			nested, err := draftNested(v.Field, v.Nested, data, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case UListBinding:
			items, err := draftList(v.Field, v.Nested, data, "- ", "\n- ", opts)
			if err != nil {
				return nil, err
			}
			out = append(out, StaticChunk{Position: v.Position, Text: items})
		case OListBinding:
			items, err := draftList(v.Field, v.Nested, data, "1. ", "\n1. ", opts)
			if err != nil {
				return nil, err
			}
			out = append(out, StaticChunk{Position: v.Position, Text: items})
		case JoinBinding:
			items, err := draftList(v.Field, v.Nested, data, "", v.Separator, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, StaticChunk{Position: v.Position, Text: items})
		case Expr:
			out = append(out, StaticChunk{Position: v.Position, Text: quoteValue(v.Source)})
		default:
			return nil, fmt.Errorf("unrecognized node type %T", n)
		}
	}
	return out, nil
}

func draftNested(field string, nested []Node, data map[string]any, opts DraftOptions) ([]Node, error) {
	val, ok := data[field]
	if !ok || val == nil {
		return nil, nil
	}
	child, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %s: expected an object, got %T", field, val)
	}
	return DraftAST(nested, child, opts)
}

// draftList expands a list binding: firstSep precedes the first element and
// restSep precedes every subsequent one.
func draftList(field string, nested []Node, data map[string]any, firstSep, restSep string, opts DraftOptions) (string, error) {
	val, ok := data[field]
	if !ok || val == nil {
		return "", nil
	}
	items, ok := val.([]any)
	if !ok {
		return "", fmt.Errorf("field %s: expected an array, got %T", field, val)
	}
	var b []byte
	for i, item := range items {
		child, ok := item.(map[string]any)
		if !ok {
			return "", fmt.Errorf("field %s[%d]: expected an object, got %T", field, i, item)
		}
		nodes, err := DraftAST(nested, child, opts)
		if err != nil {
			return "", err
		}
		text := renderMarkup(nodes)
		if i == 0 {
			b = append(b, firstSep...)
		} else {
			b = append(b, restSep...)
		}
		b = append(b, text...)
	}
	return string(b), nil
}

func draftValue(val any, opts DraftOptions) (string, error) {
	switch v := val.(type) {
	case RawString:
		return string(v), nil
	case string:
		if opts.UnquoteVariables {
			return v, nil
		}
		return quoteValue(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return FormatDate(v, DefaultDateFormat)
	default:
		return "", fmt.Errorf("cannot draft value of type %T", val)
	}
}

func draftFormatted(val any, format string) (string, error) {
	switch v := val.(type) {
	case time.Time:
		return FormatDate(v, format)
	case float64:
		return FormatAmount(v, format)
	case int:
		return FormatAmount(float64(v), format)
	case int64:
		return FormatAmount(float64(v), format)
	case map[string]any:
		amount, ok := v["doubleValue"].(float64)
		if !ok {
			return "", fmt.Errorf("monetary value needs a numeric doubleValue")
		}
		code, ok := v["currencyCode"].(string)
		if !ok {
			return "", fmt.Errorf("monetary value needs a currencyCode string")
		}
		return FormatMonetary(amount, code, format)
	default:
		return "", fmt.Errorf("format %q not applicable to value of type %T", format, val)
	}
}

// quoteValue wraps a drafted string the way the QuotedString terminal
// reads it back: double quotes with backslash escapes for quotes,
// backslashes and newlines.
func quoteValue(s string) string {
	var b []byte
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b = append(b, '\\', c)
		case '\n':
			b = append(b, '\\', 'n')
		default:
			b = append(b, c)
		}
	}
	return string(append(b, '"'))
}

func truthy(val any) bool {
	b, ok := val.(bool)
	return ok && b
}
