package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/templet-xyz/go-templet/cfg"
	"github.com/templet-xyz/go-templet/schema"
)

const penaltyMarkup = `In case of delay{{#if forceMajeure}} except force majeure{{/if}}, pay {{percentage as "0,0.00"}}% for every {{duration}} {{unit}} of delay.`

const penaltyText = "In case of delay except force majeure, pay 10.50% for every 2 weeks of delay."

func penaltyModel(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	decls := []*schema.TypeDecl{
		{
			FQN:  "org.acme.Unit",
			Kind: schema.KindEnum,
			EnumValues: []string{
				"days", "weeks",
			},
		},
		{
			FQN:     "org.acme.PenaltyClause",
			Kind:    schema.KindConcept,
			Extends: "Clause",
			Properties: []schema.Property{
				{Name: "clauseId", Type: schema.TypeString, IsIdentifier: true},
				{Name: "forceMajeure", Type: schema.TypeBoolean},
				{Name: "duration", Type: schema.TypeInteger},
				{Name: "unit", Type: "org.acme.Unit"},
				{Name: "percentage", Type: schema.TypeDouble},
			},
		},
	}
	for _, d := range decls {
		if err := r.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func penaltyTemplate(t *testing.T) *Template {
	t.Helper()
	tmpl, err := New("penalty", "0.1.0", penaltyModel(t), penaltyMarkup, "")
	if err != nil {
		t.Fatal(err)
	}
	return tmpl
}

func TestNewResolvesConformingType(t *testing.T) {
	tmpl := penaltyTemplate(t)
	if tmpl.TypeName() != "org.acme.PenaltyClause" {
		t.Errorf("expected resolved root type, got %s", tmpl.TypeName())
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New("penalty", "0.1.0", penaltyModel(t), penaltyMarkup, "org.acme.Missing"); err == nil {
		t.Error("expected unknown root type to fail")
	}
}

func TestNewRejectsBadMarkup(t *testing.T) {
	if _, err := New("penalty", "0.1.0", penaltyModel(t), "{{#if x}}open", ""); err == nil {
		t.Error("expected malformed markup to fail")
	}
}

func TestGrammarStateMachine(t *testing.T) {
	tmpl := penaltyTemplate(t)
	reg := tmpl.Grammar()
	if reg.Built() {
		t.Error("fresh template should have no grammar")
	}
	if _, err := reg.Parser(); !errors.Is(err, ErrGrammarNotBuilt) {
		t.Errorf("expected ErrGrammarNotBuilt, got %v", err)
	}
	if _, err := tmpl.ParseText(penaltyText, ParseOptions{}); !errors.Is(err, ErrGrammarNotBuilt) {
		t.Errorf("expected ErrGrammarNotBuilt from ParseText, got %v", err)
	}

	if err := tmpl.BuildGrammar(); err != nil {
		t.Fatal(err)
	}
	if !reg.Built() {
		t.Error("template should have a grammar after building")
	}
	if reg.Source() == "" {
		t.Error("built grammar should carry rendered source")
	}
	if _, err := reg.Parser(); err != nil {
		t.Errorf("parser should be available, got %v", err)
	}

	// Building again replaces the compiled form without error.
	if err := tmpl.BuildGrammar(); err != nil {
		t.Errorf("rebuild failed: %v", err)
	}
}

func TestSetGrammarFromSource(t *testing.T) {
	tmpl := penaltyTemplate(t)
	if err := tmpl.Grammar().SetGrammar(`root : "x" ;`); err != nil {
		t.Fatal(err)
	}
	if !tmpl.Grammar().Built() {
		t.Error("SetGrammar should install a compiled form")
	}

	err := tmpl.Grammar().SetGrammar(`root "x" ;`)
	var gse *GrammarSyntaxError
	if !errors.As(err, &gse) {
		t.Fatalf("expected *GrammarSyntaxError, got %v", err)
	}
	var se *cfg.SyntaxError
	if !errors.As(err, &se) {
		t.Error("expected the engine diagnostic to be wrapped")
	}
}

func TestParseDraftRoundTrip(t *testing.T) {
	tmpl := penaltyTemplate(t)
	if err := tmpl.BuildGrammar(); err != nil {
		t.Fatal(err)
	}

	data, err := tmpl.ParseText(penaltyText, ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if data["$class"] != "org.acme.PenaltyClause" {
		t.Errorf("expected $class, got %v", data["$class"])
	}
	if data["forceMajeure"] != true || data["duration"] != int64(2) ||
		data["unit"] != "weeks" || data["percentage"] != 10.5 {
		t.Errorf("unexpected parsed data: %v", data)
	}
	if id, ok := data["clauseId"].(string); !ok || id == "" {
		t.Errorf("expected injected identifier, got %v", data["clauseId"])
	}

	out, err := tmpl.Draft(nil, DraftOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out != penaltyText {
		t.Errorf("round trip changed text:\n%q\n%q", penaltyText, out)
	}
}

func TestParseTextSourceName(t *testing.T) {
	tmpl := penaltyTemplate(t)
	if err := tmpl.BuildGrammar(); err != nil {
		t.Fatal(err)
	}
	_, err := tmpl.ParseText("nonsense", ParseOptions{SourceName: "contract.md"})
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if !strings.HasPrefix(err.Error(), "contract.md:") {
		t.Errorf("expected source name prefix, got %q", err)
	}
	var npe *cfg.NoParseError
	if !errors.As(err, &npe) {
		t.Errorf("expected wrapped *NoParseError, got %T", err)
	}
}

func TestDraftRequiresData(t *testing.T) {
	tmpl := penaltyTemplate(t)
	if err := tmpl.BuildGrammar(); err != nil {
		t.Fatal(err)
	}
	if _, err := tmpl.Draft(nil, DraftOptions{}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestSetDataValidates(t *testing.T) {
	tmpl := penaltyTemplate(t)
	err := tmpl.SetData(map[string]any{
		"forceMajeure": "nope",
		"duration":     int64(2),
		"unit":         "weeks",
		"percentage":   10.5,
	})
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	good := map[string]any{
		"forceMajeure": false,
		"duration":     int64(3),
		"unit":         "days",
		"percentage":   1.25,
	}
	if err := tmpl.SetData(good); err != nil {
		t.Fatal(err)
	}
	if err := tmpl.BuildGrammar(); err != nil {
		t.Fatal(err)
	}
	out, err := tmpl.Draft(nil, DraftOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := "In case of delay, pay 1.25% for every 3 days of delay."
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestHashDeterministic(t *testing.T) {
	a := penaltyTemplate(t)
	b := penaltyTemplate(t)

	ha, err := a.Hash()
	if err != nil {
		t.Fatal(err)
	}
	hb, err := b.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("equal templates should hash identically")
	}

	// Hashing is cached and stable across repeated calls.
	again, err := a.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if again != ha {
		t.Error("repeated hash changed")
	}

	// Building the grammar does not change identity.
	if err := a.BuildGrammar(); err != nil {
		t.Fatal(err)
	}
	built, err := a.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if built != ha {
		t.Error("grammar compilation should not affect the identity hash")
	}
}

func TestHashSensitivity(t *testing.T) {
	base, err := penaltyTemplate(t).Hash()
	if err != nil {
		t.Fatal(err)
	}

	mutations := []struct {
		name   string
		mutate func(*Template)
	}{
		{"description", func(tm *Template) { tm.SetDescription("changed") }},
		{"readme", func(tm *Template) { tm.SetReadme("# changed") }},
		{"keywords", func(tm *Template) { tm.SetKeywords([]string{"legal"}) }},
		{"logic", func(tm *Template) { tm.SetLogic("define x") }},
		{"sample", func(tm *Template) { tm.SetSample("default", penaltyText) }},
		{"request sample", func(tm *Template) { tm.SetRequestSample(map[string]any{"k": "v"}) }},
	}
	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			tmpl := penaltyTemplate(t)
			m.mutate(tmpl)
			h, err := tmpl.Hash()
			if err != nil {
				t.Fatal(err)
			}
			if h == base {
				t.Error("mutation should change the identity hash")
			}
		})
	}

	// Dropping logic restores the omitted identity.
	tmpl := penaltyTemplate(t)
	tmpl.SetLogic("define x")
	tmpl.SetLogic("")
	h, err := tmpl.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if h != base {
		t.Error("omitted logic should hash like never-set logic")
	}
}
