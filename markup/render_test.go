package markup

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a  b", "a b"},
		{"a\t b", "a b"},
		{"a\r\nb", "a\nb"},
		{"a \n b", "a \n b"},
		{"already fine", "already fine"},
	}
	for _, tc := range cases {
		if got := NormalizeText(tc.in); got != tc.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderMarkupRoundTrip(t *testing.T) {
	source := `Late delivery{{#if forceMajeure}} except force majeure{{/if}} costs {{penalty as "0,0.00"}}% per {{unit}}.
{{#ulist items}}{{label}} at {{weight}} kg{{/ulist}}
{{#clause sub}}inner {{x}}{{/clause}} done {{% total * 2 %}}`
	nodes := mustParse(t, source)
	out, err := Render(nodes, RenderOptions{Format: FormatMarkup})
	if err != nil {
		t.Fatal(err)
	}
	if out != source {
		t.Errorf("markup round trip changed source:\n%q\n%q", source, out)
	}

	// Rendering is idempotent over a reparse.
	again, err := Render(mustParse(t, out), RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if again != out {
		t.Error("second round trip changed the source")
	}
}

func TestRenderMarkupNormalizesChunks(t *testing.T) {
	nodes := mustParse(t, "pay  {{amount}}\tnow")
	out, err := Render(nodes, RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "pay {{amount}} now" {
		t.Errorf("expected normalized chunks, got %q", out)
	}
}

func TestRenderTree(t *testing.T) {
	nodes := mustParse(t, "pay {{amount}}{{#if late}} late{{/if}}")
	out, err := Render(nodes, RenderOptions{Format: FormatTree})
	if err != nil {
		t.Fatal(err)
	}
	var tree []map[string]any
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("tree output is not JSON: %v", err)
	}
	if len(tree) != 4 {
		t.Fatalf("expected 4 tree nodes, got %d", len(tree))
	}
	if tree[1]["type"] != "variable" || tree[1]["field"] != "amount" {
		t.Errorf("unexpected variable node: %v", tree[1])
	}
	if tree[2]["type"] != "if" || tree[2]["whenTrue"] != " late" {
		t.Errorf("unexpected if node: %v", tree[2])
	}
}

func TestRenderHTML(t *testing.T) {
	nodes := mustParse(t, "pay {{amount}} & go")
	out, err := Render(nodes, RenderOptions{Format: FormatHTML})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `<div class="contract">`) {
		t.Errorf("expected contract wrapper, got %q", out)
	}
	if !strings.Contains(out, `<span class="variable">"amount"</span>`) {
		t.Errorf("expected quoted variable span, got %q", out)
	}
	if !strings.Contains(out, "&amp; go") {
		t.Errorf("expected escaped text, got %q", out)
	}

	out, err = Render(nodes, RenderOptions{Format: FormatHTML, UnquoteVariables: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<span class="variable">amount</span>`) {
		t.Errorf("expected unquoted variable span, got %q", out)
	}
}

func TestRenderSlate(t *testing.T) {
	nodes := mustParse(t, "{{#olist items}}{{label}}{{/olist}}")
	out, err := Render(nodes, RenderOptions{Format: FormatSlate})
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("slate output is not JSON: %v", err)
	}
	if doc["object"] != "value" {
		t.Errorf("expected slate value wrapper, got %v", doc["object"])
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(nil, RenderOptions{Format: "pdf"})
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected *UnsupportedFormatError, got %v", err)
	}
	if ufe.Format != "pdf" {
		t.Errorf("expected format pdf, got %q", ufe.Format)
	}
}
