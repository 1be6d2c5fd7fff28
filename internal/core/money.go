// Package core provides the MoneyLog domain types.
//
// This file contains parsing and formatting of whole-yen amounts as they are
// typed into the entry form and shown in summaries.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseYen converts user input into a positive whole-yen amount.
//
// Leading "¥" or "￥" and thousands separators (",") are accepted; separators
// must group digits in threes, so "1,2,3" is rejected. Signs,
// decimals and zero are rejected with ErrInvalidAmount.
//
// Examples:
//   ParseYen("580")     -> 580, nil
//   ParseYen("¥1,200")  -> 1200, nil
//   ParseYen("0")       -> 0, ErrInvalidAmount
func ParseYen(s string) (Yen, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	if strings.Contains(s, ",") {
		if !validGrouping(s) {
			return 0, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return Yen(v), nil
}

// validGrouping reports whether the commas in s split it into a leading group
// of one to three characters followed by groups of exactly three.
func validGrouping(s string) bool {
	groups := strings.Split(s, ",")
	if n := len(groups[0]); n < 1 || n > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// String formats the amount as "¥1,234" with a leading minus for negatives.
func (y Yen) String() string {
	neg := y < 0
	v := int64(y)
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("¥")
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
