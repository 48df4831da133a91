// Package core holds the domain model, the nominal formatter/parser and the
// aggregation engine. Everything in this package is pure: no I/O, no clocks,
// no mutation of inputs.
package core

import (
	"strconv"
	"strings"
)

// FormatNominal converts free-form input into a grouped display string.
//
// Every character except digits and a leading minus sign is discarded, then
// the absolute digit run is grouped in threes from the right with "." (the
// Indonesian thousands separator). An empty digit run yields "". The function
// is idempotent over its own output.
//
// Examples:
//
//	FormatNominal("500000")   -> "500.000"
//	FormatNominal("-200000")  -> "-200.000"
//	FormatNominal("abc123")   -> "123"
func FormatNominal(raw string) string {
	digits, neg := stripNominal(raw)
	if digits == "" {
		return ""
	}
	grouped := groupThousands(digits)
	if neg {
		return "-" + grouped
	}
	return grouped
}

// ParseNominal converts a display string back into a signed whole-rupiah
// amount. Grouping separators carry no meaning because stripping removes them
// before conversion, so any FormatNominal output is a valid input. An empty
// digit run, a lone minus sign, or a value outside int64 range fails with
// ErrInvalidAmount.
func ParseNominal(s string) (int64, error) {
	digits, neg := stripNominal(s)
	if digits == "" {
		return 0, ErrInvalidAmount
	}
	if neg {
		digits = "-" + digits
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// FormatRupiah renders a stored amount for display. The sign precedes the
// currency prefix, matching the dashboard rendering: "Rp 500.000",
// "-Rp 200.000". Zero renders as income.
func FormatRupiah(n int64) string {
	if n < 0 {
		return "-Rp " + groupThousands(strconv.FormatInt(-n, 10))
	}
	return "Rp " + groupThousands(strconv.FormatInt(n, 10))
}

// stripNominal reduces s to its digit run and sign. The value is negative iff
// the stripped form starts with a minus sign; any other minus is dropped.
func stripNominal(s string) (digits string, neg bool) {
	var b strings.Builder
	sawRune := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			sawRune = true
		case r == '-':
			if !sawRune {
				neg = true
			}
			sawRune = true
		}
	}
	return b.String(), neg
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + n/3)
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
