// Package human provides types that support parsing and formatting
// human-friendly representations of the values found in httpcraft
// configuration files and command line options.
//
// Each type implements flag.Value, encoding.TextUnmarshaler and the yaml
// (un)marshaling interfaces, so the same representation is accepted in every
// place where a value can be given.
package human

import (
	"strconv"
	"strings"
	"unicode"
)

// splitUnit splits s into its numeric head and its trailing unit, both with
// surrounding spaces removed.
func splitUnit(s string) (head, unit string) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return strings.TrimSpace(s[:i+1]), s[i+1:]
}

// nextNumber returns the number at the beginning of s and the remainder.
func nextNumber(s string) (number, rest string) {
	i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// nextToken returns the unit at the beginning of s and the remainder, with
// spaces skipped.
func nextToken(s string) (token, rest string) {
	i := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r)
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

func match(s, pattern string) bool {
	return len(s) <= len(pattern) && strings.EqualFold(s, pattern[:len(s)])
}

// ftoa formats value/scale with at most two decimals, trailing zeros removed.
func ftoa(value, scale float64) string {
	if value == 0 {
		return "0"
	}
	s := strconv.FormatFloat(value/scale, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
