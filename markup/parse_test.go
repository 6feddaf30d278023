package markup

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, text string) []Node {
	t.Helper()
	nodes, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return nodes
}

func TestParseVariables(t *testing.T) {
	nodes := mustParse(t, `pay {{amount}} by {{due as "DD/MM/YYYY"}}.`)
	if len(nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(nodes))
	}
	if c, ok := nodes[0].(StaticChunk); !ok || c.Text != "pay " {
		t.Errorf("node 0: expected chunk \"pay \", got %#v", nodes[0])
	}
	if b, ok := nodes[1].(Binding); !ok || b.Field != "amount" {
		t.Errorf("node 1: expected binding amount, got %#v", nodes[1])
	}
	fb, ok := nodes[3].(FormattedBinding)
	if !ok || fb.Field != "due" || fb.Format != "DD/MM/YYYY" {
		t.Errorf("node 3: expected formatted binding, got %#v", nodes[3])
	}
	if c, ok := nodes[4].(LastChunk); !ok || c.Text != "." {
		t.Errorf("node 4: expected last chunk \".\", got %#v", nodes[4])
	}
}

func TestParseConditionals(t *testing.T) {
	nodes := mustParse(t, "a{{#if flag}}yes{{/if}}b{{#if other}}y{{else}}n{{/if}}")
	ifb, ok := nodes[1].(IfBinding)
	if !ok || ifb.Field != "flag" || ifb.LiteralTrue != "yes" {
		t.Fatalf("expected if binding, got %#v", nodes[1])
	}
	ife, ok := nodes[3].(IfElseBinding)
	if !ok || ife.LiteralTrue != "y" || ife.LiteralFalse != "n" {
		t.Fatalf("expected if-else binding, got %#v", nodes[3])
	}
	if _, ok := nodes[4].(LastChunk); !ok {
		t.Errorf("expected trailing empty last chunk, got %#v", nodes[4])
	}
}

func TestParseBlocks(t *testing.T) {
	nodes := mustParse(t, `{{#clause sub}}inner {{x}}{{/clause}}{{#ulist items}}{{y}} each{{/ulist}}{{#join names ", "}}{{n}}{{/join}}`)
	cb, ok := nodes[0].(ClauseBinding)
	if !ok || cb.Field != "sub" {
		t.Fatalf("expected clause binding, got %#v", nodes[0])
	}
	if len(cb.Nested) != 3 {
		t.Fatalf("expected 3 nested nodes, got %d", len(cb.Nested))
	}
	if _, ok := cb.Nested[2].(LastChunk); !ok {
		t.Errorf("nested level should end with a last chunk, got %#v", cb.Nested[2])
	}
	ul, ok := nodes[1].(UListBinding)
	if !ok || ul.Field != "items" {
		t.Fatalf("expected ulist binding, got %#v", nodes[1])
	}
	jb, ok := nodes[2].(JoinBinding)
	if !ok || jb.Field != "names" || jb.Separator != ", " {
		t.Fatalf("expected join binding, got %#v", nodes[2])
	}
}

func TestParseExpression(t *testing.T) {
	nodes := mustParse(t, "value {{% penalty * 2 %}} end")
	e, ok := nodes[1].(Expr)
	if !ok || e.Source != "penalty * 2" {
		t.Fatalf("expected expression, got %#v", nodes[1])
	}
}

func TestParsePositions(t *testing.T) {
	nodes := mustParse(t, "line one\nand {{field}}")
	line, col := nodes[1].Pos()
	if line != 2 || col != 5 {
		t.Errorf("expected line 2 col 5, got line %d col %d", line, col)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unterminated tag", "a {{field"},
		{"unterminated expression", "a {{% expr"},
		{"unterminated block", "{{#clause x}}body"},
		{"unterminated if", "{{#if x}}body"},
		{"mismatched close", "{{#clause x}}body{{/with}}"},
		{"stray close", "text{{/clause}}"},
		{"stray else", "text{{else}}more"},
		{"double else", "{{#if x}}a{{else}}b{{else}}c{{/if}}"},
		{"tag inside if", "{{#if x}}a {{y}} b{{/if}}"},
		{"unknown keyword", "{{#loop x}}body{{/loop}}"},
		{"bad field name", "{{9lives}}"},
		{"bad format", "{{x as DD/MM}}"},
		{"join without separator", "{{#join xs}}{{y}}{{/join}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			if err == nil {
				t.Fatal("expected a markup error")
			}
			var me *MarkupError
			if !errors.As(err, &me) {
				t.Errorf("expected *MarkupError, got %T", err)
			}
			if me.Line < 1 || me.Column < 1 {
				t.Errorf("error position should be 1-based, got %d:%d", me.Line, me.Column)
			}
		})
	}
}
