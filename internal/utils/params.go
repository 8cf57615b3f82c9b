// Package utils provides small, generic helpers shared by the HTTP layer.
// They carry no domain or business logic.
package utils

import "strings"

// IntPrefix parses the leading integer of s, the way lenient query-string
// parsers do: surrounding whitespace is ignored, an optional sign is
// accepted, and parsing stops at the first non-digit. It returns def when s
// has no leading digits or the value does not fit in an int.
//
// Example:
//
//	utils.IntPrefix("42", 1)    // 42
//	utils.IntPrefix(" 7abc", 1) // 7
//	utils.IntPrefix("abc", 1)   // 1
//	utils.IntPrefix("", 5)      // 5
func IntPrefix(s string, def int) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const maxInt = int(^uint(0) >> 1)
	n, digits := 0, 0
	for ; digits < len(s); digits++ {
		c := s[digits]
		if c < '0' || c > '9' {
			break
		}
		d := int(c - '0')
		if n > (maxInt-d)/10 {
			return def
		}
		n = n*10 + d
	}
	if digits == 0 {
		return def
	}
	if neg {
		return -n
	}
	return n
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
