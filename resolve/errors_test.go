// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{Kind: ErrorKindNetwork, Provider: "google_places", Message: "autocomplete request failed", Err: errors.New("dial tcp: timeout")}

	assert.Equal(t, "google_places: autocomplete request failed: dial tcp: timeout", err.Error())
}

func TestErrorWithoutProviderOrCause(t *testing.T) {
	err := &Error{Kind: ErrorKindPersistence, Message: "saving resolved address"}

	assert.Equal(t, "saving resolved address", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: ErrorKindUnknown, Message: "outer", Err: cause}

	wrapped := fmt.Errorf("context: %w", err)

	var resolveErr *Error
	require.True(t, errors.As(wrapped, &resolveErr))
	assert.Equal(t, ErrorKindUnknown, resolveErr.Kind)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrorKindPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{"network kind", &Error{Kind: ErrorKindNetwork}, IsNetworkError, true},
		{"network sniffed from message", errors.New("context deadline exceeded"), IsNetworkError, true},
		{"network mismatch", &Error{Kind: ErrorKindRateLimit}, IsNetworkError, false},
		{"malformed kind", &Error{Kind: ErrorKindMalformedResponse}, IsMalformedResponseError, true},
		{"unavailable kind", &Error{Kind: ErrorKindUnavailable}, IsUnavailableError, true},
		{"rate limit kind", &Error{Kind: ErrorKindRateLimit}, IsRateLimitError, true},
		{"rate limit sniffed", errors.New("HTTP 429 too many requests"), IsRateLimitError, true},
		{"persistence kind", &Error{Kind: ErrorKindPersistence}, IsPersistenceError, true},
		{"nil", nil, IsNetworkError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.predicate(tt.err))
		})
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusTooManyRequests, ErrorKindRateLimit},
		{http.StatusForbidden, ErrorKindUnavailable},
		{http.StatusUnauthorized, ErrorKindUnavailable},
		{http.StatusServiceUnavailable, ErrorKindUnavailable},
		{http.StatusBadGateway, ErrorKindUnavailable},
		{http.StatusGatewayTimeout, ErrorKindUnavailable},
		{http.StatusInternalServerError, ErrorKindUnavailable},
		{http.StatusTeapot, ErrorKindUnknown},
	}

	for _, tt := range tests {
		err := ClassifyHTTPStatus("nominatim", tt.status)

		var resolveErr *Error
		require.ErrorAs(t, err, &resolveErr, "status %d", tt.status)
		assert.Equal(t, tt.kind, resolveErr.Kind, "status %d", tt.status)
		assert.Equal(t, "nominatim", resolveErr.Provider)
	}
}
