// Package textutils provides text cleanup utilities for imported data.
package textutils

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims a string and collapses internal whitespace runs
// into single spaces. Bank exports pad description columns inconsistently,
// and transaction identity depends on the description being stable.
func NormalizeWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// CleanAmount strips the currency decoration banks put in amount columns:
// currency codes, symbols, thousands separators, and stray spaces. A comma
// with no dot is treated as the decimal separator.
func CleanAmount(s string) string {
	amount := strings.TrimSpace(s)
	for _, junk := range []string{"CHF", "EUR", "USD", "$", "€", "'", " "} {
		amount = strings.ReplaceAll(amount, junk, "")
	}
	if strings.Contains(amount, ",") && !strings.Contains(amount, ".") {
		amount = strings.ReplaceAll(amount, ",", ".")
	} else {
		amount = strings.ReplaceAll(amount, ",", "")
	}
	return amount
}
