// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// ChunkText splits s into pieces of at most max bytes, preserving order.
// Telegram rejects messages over 4096 characters, so long order listings
// are sent in several messages.
//
// The split is byte-oriented but backs off so a multi-byte rune is never
// cut in half; max is kept comfortably under the Telegram limit so that
// backing off cannot push a piece over it.
func ChunkText(s string, max int) []string {
	if max <= 0 || len(s) <= max {
		return []string{s}
	}
	var out []string
	for len(s) > max {
		cut := max
		// Do not split a multi-byte rune.
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		if cut == 0 {
			cut = max
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}

// FormatAmount renders a UZS amount without a decimal tail for whole sums.
//
// Example:
//
//	FormatAmount(2000)    // "2000"
//	FormatAmount(1999.5)  // "1999.50"
func FormatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
