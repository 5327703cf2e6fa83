// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  Spaces  ", "spaces"},
		{"Áéíóú", "aeiou"},
		{"Ñandú", "nandu"},
		{"Bulevar Artigas", "bulevar artigas"},
		{"Crème Brûlée", "creme brulee"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Fold(tc.input))
		})
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{"plain substring", "123 Main St, Springfield", "main", true},
		{"case mismatch", "AVENIDA ITALIA 1234", "avenida", true},
		{"accent mismatch", "José Pedro Varela", "jose", true},
		{"no match", "Bulevar España", "rambla", false},
		{"empty needle matches", "anything", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContainsFold(tc.s, tc.substr))
		})
	}
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Plaza Independencia", "PLAZA INDEPENDENCIA"))
	assert.True(t, EqualFold("  Río Branco ", "rio branco"))
	assert.False(t, EqualFold("Río Branco", "Río Negro"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"shorter than max", "home", 10, "home"},
		{"exactly max", "abcde", 5, "abcde"},
		{"one over max", "abcdef", 5, "abcd…"},
		{"multibyte runes", "Curaçao Avenue south", 8, "Curaçao…"},
		{"max one", "long", 1, "…"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.input, tc.max)
			assert.Equal(t, tc.expected, got)
			assert.LessOrEqual(t, len([]rune(got)), tc.max)
		})
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}
