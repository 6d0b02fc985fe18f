package recording

import "sync"

// Tracker keeps the microphone-capture flag per session. Sessions are created
// lazily on the first Start and never evicted here; teardown belongs to the
// session layer that owns the identifiers.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]bool)}
}

// Start marks the session as recording. Idempotent.
func (t *Tracker) Start(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[sessionID] = true
}

// Stop marks the session as idle and returns the prior flag value. Idempotent;
// stopping a session that never started is not an error.
func (t *Tracker) Stop(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	prior := t.sessions[sessionID]
	t.sessions[sessionID] = false
	return prior
}

// Status reports the session's flag. Pure read; unseen sessions are idle and
// no entry is created.
func (t *Tracker) Status(sessionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessions[sessionID]
}
