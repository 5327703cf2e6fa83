// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"sync"

	"github.com/google/uuid"
)

// SessionTokens owns the opaque token that groups autocomplete calls into one
// billing session on the credentialed provider. A token is minted when the
// manager is created and replaced after every detail resolution attempt, so
// one session spans exactly one user selection.
type SessionTokens struct {
	mu      sync.Mutex
	current string
}

// NewSessionTokens creates a manager with a fresh token.
func NewSessionTokens() *SessionTokens {
	return &SessionTokens{current: uuid.NewString()}
}

// Current returns the active token.
func (s *SessionTokens) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Rotate replaces the active token and returns the new one.
func (s *SessionTokens) Rotate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = uuid.NewString()

	return s.current
}
