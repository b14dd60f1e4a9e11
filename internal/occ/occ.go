// Package occ decodes compact OCC-style option identifiers into
// structured contract descriptors.
package occ

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"tickflash/internal/domain"
)

// ErrNoMatch is returned when an identifier does not conform to the
// ROOT + YYMMDD + C/P + 8-digit-strike grammar. Callers must treat such
// identifiers as opaque keys rather than failing.
var ErrNoMatch = errors.New("identifier does not match option symbol grammar")

// symbolPattern: 1-6 letter root, 6-digit year-month-day, call/put flag,
// 8-digit fixed-point strike with three implied decimals.
var symbolPattern = regexp.MustCompile(`(?i)^([A-Z]{1,6})(\d{6})([CP])(\d{8})$`)

// strikeScale shifts the 8-digit strike integer by the three implied
// decimal places.
const strikeScale = -3

// ParseSymbol decodes an option identifier, or returns ErrNoMatch if the
// input does not exactly match the grammar. No partial parses.
//
// The two-digit year is windowed as 2000+YY unconditionally; contracts
// expiring in or after 2100 mis-decode. Known limitation, kept as-is.
func ParseSymbol(symbol string) (domain.Contract, error) {
	m := symbolPattern.FindStringSubmatch(symbol)
	if m == nil {
		return domain.Contract{}, ErrNoMatch
	}

	root, ymd, right, strike8 := upper(m[1]), m[2], upper(m[3]), m[4]

	n, err := strconv.ParseInt(strike8, 10, 64)
	if err != nil {
		// Unreachable given the pattern, but never partially parse.
		return domain.Contract{}, ErrNoMatch
	}

	return domain.Contract{
		Root:   root,
		Expiry: fmt.Sprintf("20%s-%s-%s", ymd[0:2], ymd[2:4], ymd[4:6]),
		Right:  domain.Right(right),
		Strike: decimal.New(n, strikeScale),
	}, nil
}

// IsSymbol reports whether s matches the option identifier grammar.
func IsSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// Root returns the underlying root for an option identifier, or s itself
// when s is not an option identifier.
func Root(s string) string {
	m := symbolPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return upper(m[1])
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
