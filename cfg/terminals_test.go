package cfg

import (
	"testing"
)

func TestTerminalMatching(t *testing.T) {
	cases := []struct {
		terminal string
		src      string
		length   int
		value    any
		ok       bool
	}{
		{"Integer", "42 days", 2, int64(42), true},
		{"Integer", "-7", 2, int64(-7), true},
		{"Integer", "days", 0, nil, false},
		{"Double", "1.5 kg", 3, 1.5, true},
		{"Double", "12.25", 5, 12.25, true},
		{"Double", "3,", 1, 3.0, true},
		{"Boolean", "true!", 4, true, true},
		{"Boolean", "false", 5, false, true},
		{"Boolean", "maybe", 0, nil, false},
		{"QuotedString", `"a vase" etc`, 8, "a vase", true},
		{"QuotedString", `"a \"b\" \\ c"`, 14, `a "b" \ c`, true},
		{"QuotedString", `"line\nbreak"`, 13, "line\nbreak", true},
		{"QuotedString", `"unterminated`, 0, nil, false},
		{"Word", "hello world", 5, "hello", true},
		{"Word", " lead", 0, nil, false},
		{"Digits", "007x", 3, "007", true},
		{"Digits1or2", "2022", 2, 20, true},
		{"Digits1or2", "6 Jan", 1, 6, true},
		{"Digits2", "7x", 0, nil, false},
		{"Digits4", "2022-", 4, 2022, true},
		{"Digits4", "202", 0, nil, false},
		{"MonthName", "January 1st", 7, 1, true},
		{"MonthName", "Jan 1st", 3, 1, true},
		{"MonthName", "March", 5, 3, true},
		{"MonthName", "Mar", 3, 3, true},
		{"MonthName", "Janitor", 3, 1, true},
		{"MonthName", "Monday", 0, nil, false},
		{"CurrencyCode", "EUR now", 3, "EUR", true},
		{"CurrencyCode", "USD", 3, "USD", true},
		{"CurrencyCode", "EURO", 0, nil, false},
		{"CurrencyCode", "EUr", 0, nil, false},
		{"CurrencyCode", "EU", 0, nil, false},
	}
	for _, tc := range cases {
		match, ok := terminals[tc.terminal]
		if !ok {
			t.Fatalf("no terminal %s", tc.terminal)
		}
		n, v, ok := match(tc.src, 0)
		if ok != tc.ok {
			t.Errorf("%s on %q: expected ok=%v, got %v", tc.terminal, tc.src, tc.ok, ok)
			continue
		}
		if !tc.ok {
			continue
		}
		if n != tc.length {
			t.Errorf("%s on %q: expected length %d, got %d", tc.terminal, tc.src, tc.length, n)
		}
		if v != tc.value {
			t.Errorf("%s on %q: expected value %v, got %v", tc.terminal, tc.src, tc.value, v)
		}
	}
}

func TestTerminalMatchMidString(t *testing.T) {
	match := terminals["Integer"]
	n, v, ok := match("pay 42 now", 4)
	if !ok || n != 2 || v != int64(42) {
		t.Errorf("expected 42 at offset 4, got n=%d v=%v ok=%v", n, v, ok)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal("QuotedString") {
		t.Error("QuotedString should be a terminal")
	}
	if IsTerminal("root") {
		t.Error("root should not be a terminal")
	}
}
