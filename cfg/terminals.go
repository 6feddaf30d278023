package cfg

import (
	"strconv"
	"strings"
)

// Matcher recognizes one lexical terminal at a byte offset. It returns the
// number of bytes consumed and the terminal's semantic value.
type Matcher func(src string, pos int) (length int, value any, ok bool)

// Built-in lexical terminals available to any grammar by name.
var terminals = map[string]Matcher{
	"Integer":      matchInteger,
	"Long":         matchInteger,
	"Double":       matchDouble,
	"Boolean":      matchBoolean,
	"QuotedString": matchQuotedString,
	"Word":         matchWord,
	"Digits":       matchDigits,
	"Digits1or2":   digitsN(1, 2),
	"Digits2":      digitsN(2, 2),
	"Digits4":      digitsN(4, 4),
	"MonthName":    matchMonthName,
	"CurrencyCode": matchCurrencyCode,
}

// IsTerminal reports whether name is a built-in lexical terminal.
func IsTerminal(name string) bool {
	_, ok := terminals[name]
	return ok
}

func digitSpan(src string, pos int) int {
	n := 0
	for pos+n < len(src) && src[pos+n] >= '0' && src[pos+n] <= '9' {
		n++
	}
	return n
}

func matchInteger(src string, pos int) (int, any, bool) {
	start := pos
	if pos < len(src) && src[pos] == '-' {
		pos++
	}
	n := digitSpan(src, pos)
	if n == 0 {
		return 0, nil, false
	}
	v, err := strconv.ParseInt(src[start:pos+n], 10, 64)
	if err != nil {
		return 0, nil, false
	}
	return pos + n - start, v, true
}

func matchDouble(src string, pos int) (int, any, bool) {
	start := pos
	if pos < len(src) && src[pos] == '-' {
		pos++
	}
	n := digitSpan(src, pos)
	if n == 0 {
		return 0, nil, false
	}
	pos += n
	if pos < len(src) && src[pos] == '.' {
		frac := digitSpan(src, pos+1)
		if frac > 0 {
			pos += 1 + frac
		}
	}
	v, err := strconv.ParseFloat(src[start:pos], 64)
	if err != nil {
		return 0, nil, false
	}
	return pos - start, v, true
}

func matchBoolean(src string, pos int) (int, any, bool) {
	if strings.HasPrefix(src[pos:], "true") {
		return 4, true, true
	}
	if strings.HasPrefix(src[pos:], "false") {
		return 5, false, true
	}
	return 0, nil, false
}

// matchQuotedString recognizes a double-quoted span with backslash escapes
// for quotes and backslashes. The value is the unescaped inner text.
func matchQuotedString(src string, pos int) (int, any, bool) {
	if pos >= len(src) || src[pos] != '"' {
		return 0, nil, false
	}
	var b strings.Builder
	i := pos + 1
	for i < len(src) {
		c := src[i]
		switch c {
		case '"':
			return i + 1 - pos, b.String(), true
		case '\\':
			if i+1 >= len(src) {
				return 0, nil, false
			}
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(src[i])
			}
		case '\n':
			return 0, nil, false
		default:
			b.WriteByte(c)
		}
		i++
	}
	return 0, nil, false
}

func matchWord(src string, pos int) (int, any, bool) {
	n := 0
	for pos+n < len(src) {
		c := src[pos+n]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		n++
	}
	if n == 0 {
		return 0, nil, false
	}
	return n, src[pos : pos+n], true
}

func matchDigits(src string, pos int) (int, any, bool) {
	n := digitSpan(src, pos)
	if n == 0 {
		return 0, nil, false
	}
	return n, src[pos : pos+n], true
}

func digitsN(min, max int) Matcher {
	return func(src string, pos int) (int, any, bool) {
		n := digitSpan(src, pos)
		if n > max {
			n = max
		}
		if n < min {
			return 0, nil, false
		}
		v, _ := strconv.Atoi(src[pos : pos+n])
		return n, v, true
	}
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// matchCurrencyCode recognizes an ISO 4217 style code: exactly three
// uppercase letters not followed by another letter.
func matchCurrencyCode(src string, pos int) (int, any, bool) {
	if pos+3 > len(src) {
		return 0, nil, false
	}
	for i := pos; i < pos+3; i++ {
		if src[i] < 'A' || src[i] > 'Z' {
			return 0, nil, false
		}
	}
	if pos+3 < len(src) {
		c := src[pos+3]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			return 0, nil, false
		}
	}
	return 3, src[pos : pos+3], true
}

// matchMonthName recognizes a full or three-letter English month name and
// yields the month number. Longer names are tried first so "March" is not
// cut short at "Mar".
func matchMonthName(src string, pos int) (int, any, bool) {
	for i, name := range monthNames {
		if strings.HasPrefix(src[pos:], name) {
			return len(name), i + 1, true
		}
	}
	for i, name := range monthNames {
		if strings.HasPrefix(src[pos:], name[:3]) {
			return 3, i + 1, true
		}
	}
	return 0, nil, false
}
