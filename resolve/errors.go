// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a classified failure from a provider or the persistence layer.
// The picker never surfaces these to the user, the router and the persister
// recover from every kind, but logs and tests need the classification.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

// ErrorKind partitions failures by how they were detected.
type ErrorKind int

const (
	// ErrorKindUnknown is an unclassified failure.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindNetwork covers transport failures and timeouts.
	ErrorKindNetwork
	// ErrorKindMalformedResponse covers undecodable provider payloads.
	ErrorKindMalformedResponse
	// ErrorKindUnavailable covers provider-side outages and denied access.
	ErrorKindUnavailable
	// ErrorKindRateLimit means the provider throttled us.
	ErrorKindRateLimit
	// ErrorKindPersistence covers address book write failures.
	ErrorKindPersistence
)

func (e *Error) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func isKind(err error, kind ErrorKind) bool {
	var rErr *Error
	if errors.As(err, &rErr) {
		return rErr.Kind == kind
	}

	return false
}

// IsNetworkError reports whether the error is a transport level failure.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if isKind(err, ErrorKindNetwork) {
		return true
	}

	// Fall back to common transport error messages
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection refused")
}

// IsMalformedResponseError reports whether a provider payload failed to decode.
func IsMalformedResponseError(err error) bool {
	return isKind(err, ErrorKindMalformedResponse)
}

// IsUnavailableError reports whether the provider refused or failed to serve.
func IsUnavailableError(err error) bool {
	return isKind(err, ErrorKindUnavailable)
}

// IsRateLimitError reports whether the provider throttled the request.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if isKind(err, ErrorKindRateLimit) {
		return true
	}

	// Fall back to common throttling messages
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsPersistenceError reports whether an address book write failed.
func IsPersistenceError(err error) bool {
	return isKind(err, ErrorKindPersistence)
}

// ClassifyHTTPStatus maps a non-2xx provider status to a classified error.
func ClassifyHTTPStatus(provider string, statusCode int) *Error {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &Error{
			Kind:     ErrorKindRateLimit,
			Provider: provider,
			Message:  "rate limit reached",
		}
	case http.StatusForbidden, http.StatusUnauthorized: // 403, 401
		return &Error{
			Kind:     ErrorKindUnavailable,
			Provider: provider,
			Message:  "quota exceeded or access denied",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusInternalServerError:
		return &Error{
			Kind:     ErrorKindUnavailable,
			Provider: provider,
			Message:  fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &Error{
			Kind:     ErrorKindUnknown,
			Provider: provider,
			Message:  fmt.Sprintf("HTTP %d", statusCode),
		}
	}
}
