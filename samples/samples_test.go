package samples

import (
	"testing"
	"time"

	"github.com/templet-xyz/go-templet/template"
)

func TestGetAndList(t *testing.T) {
	if len(List()) != len(Registry) {
		t.Errorf("expected %d names, got %d", len(Registry), len(List()))
	}
	if _, err := Get("late-delivery"); err != nil {
		t.Errorf("late-delivery should exist: %v", err)
	}
	if _, err := Get("nonexistent"); err == nil {
		t.Error("unknown sample should fail")
	}
}

func TestBuildAllSamples(t *testing.T) {
	for name := range Registry {
		t.Run(name, func(t *testing.T) {
			tmpl, err := Build(name)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if !tmpl.Grammar().Built() {
				t.Fatal("expected built grammar")
			}
			if tmpl.Description() == "" {
				t.Error("expected a description")
			}
		})
	}
}

func TestSamplesRoundTrip(t *testing.T) {
	// Each sample's text must parse under its own grammar and draft back to
	// the identical text.
	for name, s := range Registry {
		t.Run(name, func(t *testing.T) {
			tmpl, err := Build(name)
			if err != nil {
				t.Fatal(err)
			}
			data, err := tmpl.ParseText(s.Text(), template.ParseOptions{})
			if err != nil {
				t.Fatalf("parse sample text: %v", err)
			}
			out, err := tmpl.Draft(nil, template.DraftOptions{})
			if err != nil {
				t.Fatalf("draft: %v", err)
			}
			if out != s.Text() {
				t.Errorf("round trip changed text:\n%q\n%q", s.Text(), out)
			}
			if data["$class"] == nil {
				t.Error("parsed data should carry its type")
			}
		})
	}
}

func TestLateDeliveryFields(t *testing.T) {
	tmpl, err := Build("late-delivery")
	if err != nil {
		t.Fatal(err)
	}
	s, _ := Get("late-delivery")
	data, err := tmpl.ParseText(s.Text(), template.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if data["forceMajeure"] != true {
		t.Errorf("expected forceMajeure true, got %v", data["forceMajeure"])
	}
	if data["penaltyDuration"] != int64(9) || data["penaltyUnit"] != "days" {
		t.Errorf("unexpected penalty duration: %v %v", data["penaltyDuration"], data["penaltyUnit"])
	}
	if data["penaltyPercentage"] != 7.0 || data["capPercentage"] != 52.0 {
		t.Errorf("unexpected percentages: %v %v", data["penaltyPercentage"], data["capPercentage"])
	}
	if data["termination"] != int64(2) {
		t.Errorf("unexpected termination: %v", data["termination"])
	}
	if id, ok := data["clauseId"].(string); !ok || id == "" {
		t.Errorf("expected injected clause identifier, got %v", data["clauseId"])
	}
}

func TestFragileGoodsFields(t *testing.T) {
	tmpl, err := Build("fragile-goods")
	if err != nil {
		t.Fatal(err)
	}
	s, _ := Get("fragile-goods")
	data, err := tmpl.ParseText(s.Text(), template.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	date, ok := data["deliveryDate"].(time.Time)
	if !ok || !date.Equal(time.Date(2022, 1, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected delivery date: %v", data["deliveryDate"])
	}
	items, ok := data["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", data["items"])
	}
	first := items[0].(map[string]any)
	if first["description"] != "a porcelain vase" || first["weight"] != 1.5 {
		t.Errorf("unexpected first item: %v", first)
	}
	second := items[1].(map[string]any)
	if second["description"] != "a venetian mirror" || second["weight"] != 12.25 {
		t.Errorf("unexpected second item: %v", second)
	}
}
