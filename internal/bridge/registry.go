package bridge

import (
	"sort"
	"sync"

	"github.com/opencode-ai/discode/pkg/types"
)

// binding is one registry entry.
type binding struct {
	threadID      string
	chatInitiated bool
}

// Registry holds the bidirectional session/thread mapping.
//
// The forward direction (session to thread) is authoritative: a session is
// bound to at most one thread for its entire lifetime, and Bind never
// replaces an existing entry. The reverse direction (thread to session) is
// retained even after Remove so that a late reply in a dead thread resolves
// to a session ID and fails at the backend with a clear error, rather than
// silently vanishing.
type Registry struct {
	mu      sync.RWMutex
	forward map[string]binding // sessionID -> binding
	reverse map[string]string  // threadID -> sessionID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		forward: make(map[string]binding),
		reverse: make(map[string]string),
	}
}

// Bind registers a session/thread pair. If the session is already bound the
// existing thread wins: Bind returns its ID and false, and the caller is
// expected to discard the thread it created.
func (r *Registry) Bind(sessionID, threadID string, chatInitiated bool) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.forward[sessionID]; ok {
		return existing.threadID, false
	}

	r.forward[sessionID] = binding{threadID: threadID, chatInitiated: chatInitiated}
	r.reverse[threadID] = sessionID
	return threadID, true
}

// ThreadFor returns the thread bound to a session.
func (r *Registry) ThreadFor(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.forward[sessionID]
	return b.threadID, ok
}

// SessionFor returns the session a thread maps to. The mapping survives
// session removal; callers discover deletion from the backend.
func (r *Registry) SessionFor(threadID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.reverse[threadID]
	return sessionID, ok
}

// ChatInitiated reports whether the session was started from the chat side.
func (r *Registry) ChatInitiated(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forward[sessionID].chatInitiated
}

// Remove drops the forward mapping for a session and returns the thread it
// was bound to. The reverse mapping is retained.
func (r *Registry) Remove(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.forward[sessionID]
	if !ok {
		return "", false
	}
	delete(r.forward, sessionID)
	return b.threadID, true
}

// Len returns the number of active bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forward)
}

// Snapshot returns the active bindings sorted by session ID.
func (r *Registry) Snapshot() []types.SessionBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.SessionBinding, 0, len(r.forward))
	for sessionID, b := range r.forward {
		out = append(out, types.SessionBinding{
			SessionID:     sessionID,
			ThreadID:      b.threadID,
			ChatInitiated: b.chatInitiated,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}
