package markup

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date pattern tokens. A pattern is a sequence of these tokens and literal
// separators, e.g. "DD/MM/YYYY" or "D MMM YYYY".
var dateTokens = []string{"YYYY", "MMM", "YY", "DD", "MM", "D", "M"}

// ParseDatePattern splits a date pattern into tokens. Known tokens come
// back verbatim; everything else is a literal separator run.
func ParseDatePattern(pattern string) ([]string, error) {
	var out []string
	i := 0
	sawDay, sawMonth, sawYear := false, false, false
	for i < len(pattern) {
		matched := ""
		for _, tok := range dateTokens {
			if strings.HasPrefix(pattern[i:], tok) {
				matched = tok
				break
			}
		}
		if matched != "" {
			switch matched {
			case "D", "DD":
				sawDay = true
			case "M", "MM", "MMM":
				sawMonth = true
			case "YY", "YYYY":
				sawYear = true
			}
			out = append(out, matched)
			i += len(matched)
			continue
		}
		j := i
		for j < len(pattern) && !isDateTokenStart(pattern[j]) {
			j++
		}
		if j == i {
			return nil, fmt.Errorf("unsupported date pattern token at %q", pattern[i:])
		}
		out = append(out, pattern[i:j])
		i = j
	}
	if !sawDay || !sawMonth || !sawYear {
		return nil, fmt.Errorf("date pattern %q must include day, month and year", pattern)
	}
	return out, nil
}

func isDateTokenStart(c byte) bool {
	return c == 'D' || c == 'M' || c == 'Y'
}

// FormatDate renders a timestamp with a date pattern.
func FormatDate(t time.Time, pattern string) (string, error) {
	tokens, err := ParseDatePattern(pattern)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, tok := range tokens {
		switch tok {
		case "D":
			b.WriteString(strconv.Itoa(t.Day()))
		case "DD":
			fmt.Fprintf(&b, "%02d", t.Day())
		case "M":
			b.WriteString(strconv.Itoa(int(t.Month())))
		case "MM":
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case "MMM":
			b.WriteString(t.Month().String()[:3])
		case "YY":
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case "YYYY":
			fmt.Fprintf(&b, "%04d", t.Year())
		default:
			b.WriteString(tok)
		}
	}
	return b.String(), nil
}

// Currency code placement inside an amount pattern.
const (
	CurrencyNone = iota
	CurrencyBefore
	CurrencyAfter
)

// AmountPattern describes a numeric format such as "0,0.00": an optional
// grouping separator and a decimal separator with a fixed digit count. A
// "CCC" token before or after the digits marks where a currency code sits.
type AmountPattern struct {
	Group    byte // 0 when the pattern has no grouping
	Decimal  byte // 0 when the pattern has no decimals
	Places   int
	Currency int
}

// ParseAmountPattern parses patterns of the form "0", "0D00…" (decimal
// separator with a fixed digit count), or "0G0D00…" (grouping separator
// before the decimal), where G and D are single non-digit characters,
// optionally wrapped as "CCC <digits>" or "<digits> CCC". A separator
// followed by a run of zeros at the end of the pattern is the decimal; a
// separator is grouping only when another separator follows.
func ParseAmountPattern(pattern string) (AmountPattern, error) {
	var p AmountPattern
	bad := func() (AmountPattern, error) {
		return AmountPattern{}, fmt.Errorf("unsupported amount pattern %q", pattern)
	}
	digits := pattern
	if strings.HasPrefix(digits, "CCC ") {
		p.Currency = CurrencyBefore
		digits = digits[4:]
	} else if strings.HasSuffix(digits, " CCC") {
		p.Currency = CurrencyAfter
		digits = digits[:len(digits)-4]
	}
	if digits == "" || digits[0] != '0' {
		return bad()
	}
	i := 1
	if i == len(digits) {
		return p, nil
	}
	if digits[i] == '0' {
		return bad()
	}
	sep := digits[i]
	i++
	if i+1 < len(digits) && digits[i] == '0' && digits[i+1] != '0' {
		p.Group = sep
		i++
		p.Decimal = digits[i]
		i++
		if p.Group == p.Decimal {
			return bad()
		}
	} else {
		p.Decimal = sep
	}
	if i == len(digits) {
		return bad()
	}
	for ; i < len(digits); i++ {
		if digits[i] != '0' {
			return bad()
		}
		p.Places++
	}
	return p, nil
}

// FormatAmount renders a plain number with an amount pattern. Patterns that
// carry a currency code need FormatMonetary.
func FormatAmount(v float64, pattern string) (string, error) {
	p, err := ParseAmountPattern(pattern)
	if err != nil {
		return "", err
	}
	if p.Currency != CurrencyNone {
		return "", fmt.Errorf("amount pattern %q needs a currency code", pattern)
	}
	return formatNumber(v, p), nil
}

// FormatMonetary renders a monetary amount, placing the currency code where
// the pattern's CCC token sits.
func FormatMonetary(v float64, code, pattern string) (string, error) {
	p, err := ParseAmountPattern(pattern)
	if err != nil {
		return "", err
	}
	n := formatNumber(v, p)
	switch p.Currency {
	case CurrencyBefore:
		return code + " " + n, nil
	case CurrencyAfter:
		return n + " " + code, nil
	default:
		return n, nil
	}
}

func formatNumber(v float64, p AmountPattern) string {
	neg := v < 0
	if neg {
		v = -v
	}
	// Round to the target precision up front so a fraction of .995 and up
	// carries into the whole part instead of overflowing its digit count.
	scale := int64(1)
	for i := 0; i < p.Places; i++ {
		scale *= 10
	}
	units := int64(v*float64(scale) + 0.5)
	whole := units / scale
	frac := units % scale
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	digits := strconv.FormatInt(whole, 10)
	if p.Group == 0 {
		b.WriteString(digits)
	} else {
		lead := len(digits) % 3
		if lead > 0 {
			b.WriteString(digits[:lead])
			if len(digits) > lead {
				b.WriteByte(p.Group)
			}
		}
		for i := lead; i < len(digits); i += 3 {
			b.WriteString(digits[i : i+3])
			if i+3 < len(digits) {
				b.WriteByte(p.Group)
			}
		}
	}
	if p.Decimal != 0 {
		b.WriteByte(p.Decimal)
		fmt.Fprintf(&b, "%0*d", p.Places, frac)
	}
	return b.String()
}
