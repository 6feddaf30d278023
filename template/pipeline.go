package template

import (
	"errors"
	"fmt"
	"time"

	"github.com/templet-xyz/go-templet/markup"
	"github.com/templet-xyz/go-templet/schema"
)

// ErrNoData is returned when Draft is called before any data has been
// parsed or set on the template.
var ErrNoData = errors.New("no contract data: parse text or set data first")

// ParseOptions control text-to-data parsing.
type ParseOptions struct {
	// CurrentTime is passed through to the logic engine; the structural
	// pipeline does not consume it.
	CurrentTime time.Time
	// SourceName labels the input in diagnostics.
	SourceName string
}

// DraftOptions control data-to-text drafting.
type DraftOptions struct {
	Format           markup.Format
	UnquoteVariables bool
	CurrentTime      time.Time
}

// ParseText parses concrete contract text into schema-validated data using
// the compiled grammar. The parsed data is retained on the template for
// subsequent drafting.
func (t *Template) ParseText(text string, opts ParseOptions) (map[string]any, error) {
	compiled, err := t.registry.Compiled()
	if err != nil {
		return nil, err
	}
	value, err := markup.ExtractData(text, compiled)
	if err != nil {
		if opts.SourceName != "" {
			return nil, fmt.Errorf("%s: %w", opts.SourceName, err)
		}
		return nil, err
	}
	data, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse produced %T, expected an object", value)
	}
	if err := t.model.Validate(data, t.fqn); err != nil {
		return nil, err
	}
	t.data = data
	return data, nil
}

// SetData validates and installs contract data for drafting.
func (t *Template) SetData(data map[string]any) error {
	if err := t.model.Validate(data, t.fqn); err != nil {
		return err
	}
	t.data = data
	return nil
}

// Data returns the current contract data, nil when none is set.
func (t *Template) Data() map[string]any {
	return t.data
}

// Draft renders contract data through the template into the requested
// format. Passing nil data drafts the template's retained data.
func (t *Template) Draft(data map[string]any, opts DraftOptions) (string, error) {
	if data == nil {
		if t.data == nil {
			return "", ErrNoData
		}
		data = t.data
	} else {
		if err := t.model.Validate(data, t.fqn); err != nil {
			return "", err
		}
	}
	shaped, err := t.draftShape(data, t.fqn)
	if err != nil {
		return "", err
	}
	drafted, err := markup.DraftAST(t.ast, shaped, markup.DraftOptions{UnquoteVariables: opts.UnquoteVariables})
	if err != nil {
		return "", err
	}
	return markup.Render(drafted, markup.RenderOptions{
		Format:           opts.Format,
		UnquoteVariables: opts.UnquoteVariables,
	})
}

// draftShape returns a copy of data adjusted for drafting: enum values draft
// as bare literals and RFC 3339 date strings become timestamps, so the
// drafted text matches what the compiled grammar reads back.
func (t *Template) draftShape(data map[string]any, fqn string) (map[string]any, error) {
	decl, err := t.model.LookupType(fqn)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, p := range decl.Properties {
		v, ok := out[p.Name]
		if !ok || v == nil {
			continue
		}
		if p.IsArray {
			items, ok := v.([]any)
			if !ok {
				continue
			}
			shaped := make([]any, len(items))
			for i, item := range items {
				sv, err := t.draftElement(item, p)
				if err != nil {
					return nil, err
				}
				shaped[i] = sv
			}
			out[p.Name] = shaped
			continue
		}
		sv, err := t.draftElement(v, p)
		if err != nil {
			return nil, err
		}
		out[p.Name] = sv
	}
	return out, nil
}

func (t *Template) draftElement(v any, p schema.Property) (any, error) {
	if p.IsRelationship {
		return v, nil
	}
	if p.Type == schema.TypeDateTime {
		if s, ok := v.(string); ok {
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", p.Name, err)
			}
			return ts, nil
		}
		return v, nil
	}
	if schema.IsPrimitive(p.Type) {
		return v, nil
	}
	decl, err := t.model.LookupType(p.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", p.Name, err)
	}
	if decl.Kind == schema.KindEnum {
		if s, ok := v.(string); ok {
			return markup.RawString(s), nil
		}
		return v, nil
	}
	if m, ok := v.(map[string]any); ok {
		return t.draftShape(m, p.Type)
	}
	return v, nil
}
