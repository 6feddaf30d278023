package markup

import (
	"testing"
	"time"
)

func TestParseDatePattern(t *testing.T) {
	tokens, err := ParseDatePattern("D MMM YYYY")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"D", " ", "MMM", " ", "YYYY"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}

	if _, err := ParseDatePattern("DD/MM"); err == nil {
		t.Error("pattern without a year should fail")
	}
	if _, err := ParseDatePattern("notadate"); err == nil {
		t.Error("pattern without day, month and year should fail")
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2022, time.January, 6, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		pattern, want string
	}{
		{"DD/MM/YYYY", "06/01/2022"},
		{"D MMM YYYY", "6 Jan 2022"},
		{"D.M.YY", "6.1.22"},
		{"YYYY-MM-DD", "2022-01-06"},
	}
	for _, tc := range cases {
		got, err := FormatDate(ts, tc.pattern)
		if err != nil {
			t.Errorf("%s: %v", tc.pattern, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.pattern, tc.want, got)
		}
	}
}

func TestParseAmountPattern(t *testing.T) {
	p, err := ParseAmountPattern("0,0.00")
	if err != nil {
		t.Fatal(err)
	}
	if p.Group != ',' || p.Decimal != '.' || p.Places != 2 {
		t.Errorf("unexpected pattern %+v", p)
	}

	p, err = ParseAmountPattern("0.0,00")
	if err != nil {
		t.Fatal(err)
	}
	if p.Group != '.' || p.Decimal != ',' || p.Places != 2 {
		t.Errorf("unexpected pattern %+v", p)
	}

	p, err = ParseAmountPattern("0")
	if err != nil {
		t.Fatal(err)
	}
	if p.Group != 0 || p.Decimal != 0 {
		t.Errorf("bare pattern should have no separators, got %+v", p)
	}

	// A single separator before trailing zeros is the decimal, not grouping.
	p, err = ParseAmountPattern("0.00")
	if err != nil {
		t.Fatal(err)
	}
	if p.Group != 0 || p.Decimal != '.' || p.Places != 2 {
		t.Errorf("unexpected pattern %+v", p)
	}

	p, err = ParseAmountPattern("0.0")
	if err != nil {
		t.Fatal(err)
	}
	if p.Group != 0 || p.Decimal != '.' || p.Places != 1 {
		t.Errorf("unexpected pattern %+v", p)
	}

	p, err = ParseAmountPattern("0,00")
	if err != nil {
		t.Fatal(err)
	}
	if p.Group != 0 || p.Decimal != ',' || p.Places != 2 {
		t.Errorf("unexpected pattern %+v", p)
	}

	p, err = ParseAmountPattern("0,0.00 CCC")
	if err != nil {
		t.Fatal(err)
	}
	if p.Currency != CurrencyAfter || p.Group != ',' || p.Places != 2 {
		t.Errorf("unexpected pattern %+v", p)
	}

	p, err = ParseAmountPattern("CCC 0,0.00")
	if err != nil {
		t.Fatal(err)
	}
	if p.Currency != CurrencyBefore {
		t.Errorf("unexpected pattern %+v", p)
	}

	for _, bad := range []string{"", "x", "00", "0,", "0,0.", "0,0,00", "CCC0,0.00", "CCC "} {
		if _, err := ParseAmountPattern(bad); err == nil {
			t.Errorf("pattern %q should fail", bad)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		value   float64
		pattern string
		want    string
	}{
		{7, "0,0.00", "7.00"},
		{52, "0,0.00", "52.00"},
		{1234567.891, "0,0.00", "1,234,567.89"},
		{1234.5, "0.0,00", "1.234,50"},
		{-42.5, "0,0.00", "-42.50"},
		{999, "0", "999"},
		{1.5, "0.00", "1.50"},
		{1.5, "0.0", "1.5"},
		// Fraction rounding carries into the whole part.
		{2.999, "0,0.00", "3.00"},
		{1.96, "0.0", "2.0"},
	}
	for _, tc := range cases {
		got, err := FormatAmount(tc.value, tc.pattern)
		if err != nil {
			t.Errorf("%v %s: %v", tc.value, tc.pattern, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%v %s: expected %q, got %q", tc.value, tc.pattern, tc.want, got)
		}
	}

	if _, err := FormatAmount(100, "0,0.00 CCC"); err == nil {
		t.Error("currency pattern without a code should fail")
	}
}

func TestFormatMonetary(t *testing.T) {
	got, err := FormatMonetary(1234.5, "EUR", "0,0.00 CCC")
	if err != nil {
		t.Fatal(err)
	}
	if got != "1,234.50 EUR" {
		t.Errorf("expected %q, got %q", "1,234.50 EUR", got)
	}

	got, err = FormatMonetary(99, "USD", "CCC 0,0.00")
	if err != nil {
		t.Fatal(err)
	}
	if got != "USD 99.00" {
		t.Errorf("expected %q, got %q", "USD 99.00", got)
	}

	got, err = FormatMonetary(7, "GBP", "0,0.00")
	if err != nil {
		t.Fatal(err)
	}
	if got != "7.00" {
		t.Errorf("pattern without CCC should drop the code, got %q", got)
	}
}
