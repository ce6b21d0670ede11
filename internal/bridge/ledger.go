package bridge

import "sync"

// Ledger records which message IDs have already been mirrored into a thread,
// keyed by session. It is the bridge's only defense against double-posting:
// idle events carry no cursor, so every mirror pass re-reads the full
// message list and consults the ledger to find what is new.
type Ledger struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{} // sessionID -> message IDs
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]map[string]struct{})}
}

// Mark records a message as mirrored.
func (l *Ledger) Mark(sessionID, messageID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mark(sessionID, messageID)
}

// MarkAll records a batch of messages as mirrored.
func (l *Ledger) MarkAll(sessionID string, messageIDs []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range messageIDs {
		l.mark(sessionID, id)
	}
}

func (l *Ledger) mark(sessionID, messageID string) {
	ids, ok := l.seen[sessionID]
	if !ok {
		ids = make(map[string]struct{})
		l.seen[sessionID] = ids
	}
	ids[messageID] = struct{}{}
}

// Seen reports whether a message has been mirrored.
func (l *Ledger) Seen(sessionID, messageID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[sessionID][messageID]
	return ok
}

// Forget drops all records for a session.
func (l *Ledger) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seen, sessionID)
}

// Count returns the number of recorded messages for a session.
func (l *Ledger) Count(sessionID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen[sessionID])
}
