package grammar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/templet-xyz/go-templet/cfg"
	"github.com/templet-xyz/go-templet/markup"
)

// dateFragment emits the grammar fragment matching one date pattern and
// returns its rule name. Fragments are keyed by the pattern, so templates
// using the same format share one rule.
func (c *Compiler) dateFragment(rs *cfg.RuleSet, format string, line, col int) (string, error) {
	tokens, err := markup.ParseDatePattern(format)
	if err != nil {
		return "", structural(line, col, "%v", err)
	}
	name := "fmtDate" + sanitizeName(format)
	if rs.Has(name) {
		return name, nil
	}

	syms := make([]string, len(tokens))
	for i, tok := range tokens {
		switch tok {
		case "D", "M":
			syms[i] = "Digits1or2"
		case "DD", "MM", "YY":
			syms[i] = "Digits2"
		case "MMM":
			syms[i] = "MonthName"
		case "YYYY":
			syms[i] = "Digits4"
		default:
			syms[i] = cfg.QuoteLiteral(tok)
		}
	}

	action := func(alt int, children []any) (any, error) {
		day, month, year := 0, 0, 0
		for i, tok := range tokens {
			switch tok {
			case "D", "DD":
				day = children[i].(int)
			case "M", "MM", "MMM":
				month = children[i].(int)
			case "YYYY":
				year = children[i].(int)
			case "YY":
				year = 2000 + children[i].(int)
			}
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return nil, fmt.Errorf("invalid date %d-%d-%d", year, month, day)
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
	}

	err = rs.Add(&cfg.Rule{
		Name:    name,
		Alts:    [][]string{syms},
		Action:  action,
		Comment: "date format: " + format,
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// amountFragment emits the grammar fragment matching one numeric pattern
// such as "0,0.00" and returns its rule name.
func (c *Compiler) amountFragment(rs *cfg.RuleSet, format string, line, col int) (string, error) {
	p, err := markup.ParseAmountPattern(format)
	if err != nil {
		return "", structural(line, col, "%v", err)
	}
	name := "fmtAmt" + sanitizeName(format)
	if rs.Has(name) {
		return name, nil
	}

	var syms []string
	currIdx := -1
	if p.Currency == markup.CurrencyBefore {
		currIdx = 0
		syms = append(syms, "CurrencyCode", cfg.QuoteLiteral(" "))
	}
	numIdx := len(syms)
	syms = append(syms, "Digits")
	groupIdx, fracIdx := -1, -1
	if p.Group != 0 {
		groupsName := name + "G"
		groupLit := cfg.QuoteLiteral(string(p.Group))
		err := rs.Add(&cfg.Rule{
			Name: groupsName,
			Alts: [][]string{{}, {groupsName, groupLit, "Digits"}},
			Action: func(alt int, children []any) (any, error) {
				if alt == 0 {
					return "", nil
				}
				return children[0].(string) + children[2].(string), nil
			},
		})
		if err != nil {
			return "", err
		}
		groupIdx = len(syms)
		syms = append(syms, groupsName)
	}
	if p.Decimal != 0 {
		syms = append(syms, cfg.QuoteLiteral(string(p.Decimal)))
		fracIdx = len(syms)
		syms = append(syms, "Digits")
	}
	if p.Currency == markup.CurrencyAfter {
		syms = append(syms, cfg.QuoteLiteral(" "))
		currIdx = len(syms)
		syms = append(syms, "CurrencyCode")
	}

	action := func(alt int, children []any) (any, error) {
		digits := children[numIdx].(string)
		if groupIdx >= 0 {
			digits += children[groupIdx].(string)
		}
		whole, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", digits, err)
		}
		if fracIdx >= 0 {
			frac := children[fracIdx].(string)
			f, err := strconv.ParseFloat(frac, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid amount fraction %q: %w", frac, err)
			}
			scale := 1.0
			for range frac {
				scale *= 10
			}
			whole += f / scale
		}
		if currIdx >= 0 {
			return map[string]any{
				"doubleValue":  whole,
				"currencyCode": children[currIdx].(string),
			}, nil
		}
		return whole, nil
	}

	err = rs.Add(&cfg.Rule{
		Name:    name,
		Alts:    [][]string{syms},
		Action:  action,
		Comment: "amount format: " + format,
	})
	if err != nil {
		return "", err
	}
	return name, nil
}
