// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jcodagnone/adonde/locations"
)

const (
	// DefaultDebounceInterval is how long typing has to pause before a
	// search fires.
	DefaultDebounceInterval = 300 * time.Millisecond

	// DefaultBlurGrace is how long a focus loss waits before falling back
	// to committing the raw query. Long enough for a click on a
	// suggestion row to land first.
	DefaultBlurGrace = 150 * time.Millisecond
)

// Callbacks notify the owner of a Coordinator about state changes. They run
// on internal goroutines, serialized in state-change order, and should
// return promptly. A nil callback is skipped.
type Callbacks struct {
	// OnResults fires every time the merged list is rebuilt.
	OnResults func(items []Item)

	// OnCommit fires when a value has been committed, after resolution.
	OnCommit func(res *Resolved)

	// OnClose fires when the suggestion surface is dismissed.
	OnClose func()
}

// CoordinatorOptions configures a Coordinator. Router and Store are
// required; everything else has a default.
type CoordinatorOptions struct {
	Router    *Router
	Store     SavedStore
	Persister *Persister
	Tokens    *SessionTokens
	Callbacks Callbacks

	DebounceInterval time.Duration
	BlurGrace        time.Duration
}

// Coordinator owns the state of one address input: the query text, the
// debounced search pipeline, the merged result list and the selection
// cursor. All methods are safe for concurrent use.
type Coordinator struct {
	router    *Router
	store     SavedStore
	persister *Persister
	tokens    *SessionTokens
	resolver  *Resolver
	debounce  *Debouncer
	blurGrace time.Duration
	callbacks Callbacks

	ctx    context.Context
	cancel context.CancelFunc

	// dispatchMu serializes callbacks in the order the guarded state
	// changed. It is always acquired while still holding mu and released
	// after the callback returns.
	dispatchMu sync.Mutex

	mu            sync.Mutex
	query         string
	suggestions   []Suggestion
	items         []Item
	cursor        *Cursor
	generation    uint64
	lastCommitted string
	blurTimer     *time.Timer
	disposed      bool
}

// NewCoordinator creates a coordinator. A fresh session token is minted
// unless one is injected through the options.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	interval := opts.DebounceInterval
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	grace := opts.BlurGrace
	if grace <= 0 {
		grace = DefaultBlurGrace
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewSessionTokens()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		router:    opts.Router,
		store:     opts.Store,
		persister: opts.Persister,
		tokens:    tokens,
		resolver:  NewResolver(opts.Router, tokens),
		debounce:  NewDebouncer(interval),
		blurGrace: grace,
		callbacks: opts.Callbacks,
		ctx:       ctx,
		cancel:    cancel,
		cursor:    NewCursor(),
	}
}

// SetQuery reacts to an edit of the input text. The merged list is rebuilt
// immediately so saved-location filtering tracks every keystroke; provider
// searches only fire once typing pauses and the query is long enough.
//
// Clearing the input or shrinking it below the minimum drops the current
// suggestions and invalidates any search still in flight, so nothing stale
// can flash back in.
func (c *Coordinator) SetQuery(query string) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	c.query = query
	length := utf8.RuneCountInString(strings.TrimSpace(query))

	if length < c.router.MinQueryLength() {
		c.debounce.Stop()
		c.invalidateLocked()
	} else {
		c.debounce.Trigger(c.searchNow)
	}

	items := c.rebuildLocked()
	c.dispatchResultsLocked(items)
}

// Query returns the current input text.
func (c *Coordinator) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.query
}

// Items returns the current merged list. The slice is replaced, never
// mutated, on rebuild, so callers may hold on to it.
func (c *Coordinator) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items
}

// SelectedIndex returns the cursor position, -1 when nothing is selected.
func (c *Coordinator) SelectedIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cursor.Index()
}

// Next moves the selection down and returns the new index.
func (c *Coordinator) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cursor.Next()
}

// Previous moves the selection up and returns the new index.
func (c *Coordinator) Previous() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cursor.Previous()
}

// Commit resolves the selected row, or the raw query when nothing is
// selected, and reports the final value through OnCommit. Resolution and
// auto-save run in the background; navigation never waits for them.
func (c *Coordinator) Commit() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	idx := c.cursor.Index()
	if idx < 0 || idx >= len(c.items) {
		query := strings.TrimSpace(c.query)
		c.mu.Unlock()

		go c.finishCommit(&Resolved{Address: query, Provider: ProviderManual}, nil)

		return
	}

	it := c.items[idx]
	c.mu.Unlock()

	go func() {
		res := c.resolver.Resolve(c.ctx, it)
		c.finishCommit(res, it.Suggestion)
	}()
}

// Cancel dismisses the suggestion surface. The query and any committed
// value stay as they are.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	c.cursor.Reset(len(c.items))
	cb := c.callbacks.OnClose

	c.dispatchMu.Lock()
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
	c.dispatchMu.Unlock()
}

// Blur schedules the focus-loss fallback: after a short grace period, if
// the query differs from the last committed value, the raw query is
// committed. Focus cancels it.
func (c *Coordinator) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}

	if c.blurTimer != nil {
		c.blurTimer.Stop()
	}
	c.blurTimer = time.AfterFunc(c.blurGrace, c.blurCommit)
}

// Focus cancels a pending focus-loss fallback.
func (c *Coordinator) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blurTimer != nil {
		c.blurTimer.Stop()
		c.blurTimer = nil
	}
}

// Sync adopts an externally supplied value, e.g. a form prefill. No search
// fires and the value counts as already committed, so a following Blur is a
// no-op.
func (c *Coordinator) Sync(value string) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	c.debounce.Stop()
	c.query = value
	c.lastCommitted = strings.TrimSpace(value)
	c.invalidateLocked()

	items := c.rebuildLocked()
	c.dispatchResultsLocked(items)
}

// Close disposes the coordinator. Pending timers are cancelled and results
// of searches still in flight are dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	c.disposed = true
	c.debounce.Stop()
	if c.blurTimer != nil {
		c.blurTimer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
}

// invalidateLocked drops the current suggestions and bumps the generation
// so searches still in flight miss the liveness check when they return.
func (c *Coordinator) invalidateLocked() {
	c.generation++
	c.suggestions = nil
}

// rebuildLocked recomputes the merged list from the current query, the
// saved address book and the live suggestions, and resets the cursor.
func (c *Coordinator) rebuildLocked() []Item {
	var saved []*locations.Location
	if c.store != nil {
		list, err := c.store.List()
		if err != nil {
			// A broken address book degrades to suggestions only.
			zap.L().Warn("listing saved locations", zap.Error(err))
		} else {
			saved = list
		}
	}

	c.items = Merge(c.query, saved, c.suggestions)
	c.cursor.Reset(len(c.items))

	return c.items
}

// dispatchResultsLocked hands the rebuilt list to OnResults. mu must be
// held; it is released once dispatchMu is taken, so callbacks observe
// rebuilds in order without blocking the coordinator.
func (c *Coordinator) dispatchResultsLocked(items []Item) {
	cb := c.callbacks.OnResults

	c.dispatchMu.Lock()
	c.mu.Unlock()
	if cb != nil {
		cb(items)
	}
	c.dispatchMu.Unlock()
}

// searchNow runs on the debounce timer. The query is re-validated under the
// lock because a clearing edit may have raced the timer going off.
func (c *Coordinator) searchNow() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	query := strings.TrimSpace(c.query)
	if utf8.RuneCountInString(query) < c.router.MinQueryLength() {
		c.mu.Unlock()

		return
	}

	c.generation++
	gen := c.generation
	token := c.tokens.Current()
	c.mu.Unlock()

	_, suggestions := c.router.Search(c.ctx, query, token)
	c.applyResults(gen, suggestions)
}

// applyResults installs a search response unless a newer request or an
// invalidation superseded it.
func (c *Coordinator) applyResults(gen uint64, suggestions []Suggestion) {
	c.mu.Lock()
	if c.disposed || gen != c.generation {
		c.mu.Unlock()

		return
	}

	c.suggestions = suggestions
	items := c.rebuildLocked()
	c.dispatchResultsLocked(items)
}

// finishCommit records the committed value, queues the auto-save and
// reports the value. Saved rows are not re-persisted. The save is queued
// before OnCommit fires so a caller reacting to the commit can wait on the
// persister and see the write.
func (c *Coordinator) finishCommit(res *Resolved, sug *Suggestion) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	c.lastCommitted = res.Address
	cb := c.callbacks.OnCommit

	if res.Provider != ProviderSaved && c.persister != nil {
		shortLabel := ""
		if sug != nil {
			shortLabel = sug.ShortLabel
		}
		c.persister.Persist(res, shortLabel)
	}

	c.dispatchMu.Lock()
	c.mu.Unlock()
	if cb != nil {
		cb(res)
	}
	c.dispatchMu.Unlock()
}

// blurCommit runs on the blur grace timer.
func (c *Coordinator) blurCommit() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()

		return
	}

	query := strings.TrimSpace(c.query)
	if query == "" || query == c.lastCommitted {
		c.mu.Unlock()

		return
	}
	c.mu.Unlock()

	c.finishCommit(&Resolved{Address: query, Provider: ProviderManual}, nil)
}
