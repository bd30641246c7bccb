// Package format renders monetary amounts and numeric form input the way the
// UI displays them: Persian-locale digit grouping with a fixed toman label.
package format

import (
	"strings"
)

const currencyLabel = "تومان"

// Persian thousands and decimal separators (fa-IR locale).
const (
	thousandsSep = "٬" // ٬
	decimalSep   = "٫" // ٫
)

var persianDigits = [10]rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// Toman formats a decimal amount string for display: Persian digits, fa-IR
// grouping and the toman label. The wire sends amounts as decimal strings and
// the client never does arithmetic on them, so this works on the text itself.
// Input that is not a plain decimal number is passed through with the label.
func Toman(value string) string {
	s := strings.ReplaceAll(strings.TrimSpace(value), ",", "")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart, fracPart, ok := splitDecimal(s)
	if !ok {
		return value + " " + currencyLabel
	}

	out := groupedPersian(intPart)
	if frac := strings.TrimRight(fracPart, "0"); frac != "" {
		out += decimalSep + toPersianDigits(frac)
	}
	if neg {
		out = "-" + out
	}
	return out + " " + currencyLabel
}

// OnlyDigits strips every non-ASCII-digit rune from a form input value.
func OnlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupThousands reformats raw amount input with ASCII comma grouping, the
// shape the create forms show while typing. Non-digits are dropped first.
func GroupThousands(value string) string {
	digits := OnlyDigits(value)
	if digits == "" {
		return ""
	}
	return group(digits, ",")
}

func splitDecimal(s string) (intPart, fracPart string, ok bool) {
	if s == "" {
		return "", "", false
	}
	intPart, fracPart, _ = strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) {
		return "", "", false
	}
	if fracPart != "" && !allDigits(fracPart) {
		return "", "", false
	}
	return intPart, fracPart, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func group(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func groupedPersian(digits string) string {
	return toPersianDigits(group(digits, thousandsSep))
}

func toPersianDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(persianDigits[r-'0'])
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
