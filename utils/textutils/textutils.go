// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides text normalization helpers shared by the
// matching and persistence layers.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes a string for case-insensitive comparison: accents removed,
// lowercased, surrounding whitespace trimmed. "Libertador Gral." and
// "LIBERTADOR GRAL." fold to the same value.
func Fold(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// ContainsFold reports whether s contains substr under Fold normalization.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// EqualFold reports whether two strings are equal under Fold normalization.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Truncate shortens s to at most max runes, replacing the tail with a single
// ellipsis rune when truncation happens. max must be at least 1.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}

	return string(r[:max-1]) + "…"
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}
