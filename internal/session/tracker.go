package session

import "sync"

// Tracker holds one Context per session ID, so concurrent conversations
// cannot corrupt each other's state.
//
// Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	contexts map[string]*Context
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{contexts: make(map[string]*Context)}
}

// Get returns the Context for the session, creating it on first use.
func (t *Tracker) Get(sessionID string) *Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx, ok := t.contexts[sessionID]
	if !ok {
		ctx = NewContext()
		t.contexts[sessionID] = ctx
	}
	return ctx
}

// Delete removes a session's Context.
func (t *Tracker) Delete(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.contexts, sessionID)
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.contexts)
}
