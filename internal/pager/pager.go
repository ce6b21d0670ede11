// Package pager implements paginated button menus with expiring selection
// state. Each open menu is keyed by a generated ID that interaction
// callbacks carry back, so a selection always resolves against the exact
// candidate list the menu was rendered from.
package pager

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// PageSize is the number of candidates per page.
	PageSize = 20
	// ButtonsPerRow fills a page in four rows. The chat platform caps a
	// message at five action rows, so the fifth stays free for navigation.
	ButtonsPerRow = 5
	// TTL is how long an open menu stays resolvable.
	TTL = 10 * time.Minute
)

// Candidate is one selectable entry.
type Candidate struct {
	Value string
	Label string
}

// IndexedCandidate pairs a candidate with its global index, the number an
// interaction callback reports back.
type IndexedCandidate struct {
	Candidate
	// Index is page*PageSize+offset, stable across page flips.
	Index int
}

// Menu is one open selection menu.
type Menu struct {
	Key    string
	UserID string

	candidates []Candidate
	page       int
	openedAt   time.Time
}

// Store tracks open menus. Expired menus are swept lazily on access.
type Store struct {
	mu    sync.Mutex
	menus map[string]*Menu
	ttl   time.Duration
	now   func() time.Time
}

// NewStore creates an empty menu store.
func NewStore() *Store {
	return &Store{
		menus: make(map[string]*Menu),
		ttl:   TTL,
		now:   time.Now,
	}
}

// Open creates a menu over the candidate list and returns it. The menu key
// is a fresh ULID.
func (s *Store) Open(userID string, candidates []Candidate) *Menu {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	menu := &Menu{
		Key:        ulid.Make().String(),
		UserID:     userID,
		candidates: candidates,
		openedAt:   s.now(),
	}
	s.menus[menu.Key] = menu
	return menu
}

// Get returns an open menu. Expired or unknown keys return false.
func (s *Store) Get(key string) (*Menu, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	menu, ok := s.menus[key]
	return menu, ok
}

// Advance flips a menu to its next page, wrapping to the first page after
// the last.
func (s *Store) Advance(key string) (*Menu, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	menu, ok := s.menus[key]
	if !ok {
		return nil, false
	}
	menu.page = (menu.page + 1) % menu.PageCount()
	return menu, true
}

// Resolve maps a global index back to its candidate and closes the menu.
func (s *Store) Resolve(key string, globalIndex int) (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	menu, ok := s.menus[key]
	if !ok {
		return Candidate{}, false
	}
	if globalIndex < 0 || globalIndex >= len(menu.candidates) {
		return Candidate{}, false
	}
	delete(s.menus, key)
	return menu.candidates[globalIndex], true
}

// Close discards a menu.
func (s *Store) Close(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.menus, key)
}

// Len returns the number of open menus, after sweeping.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	return len(s.menus)
}

// sweep drops expired menus. Callers hold s.mu.
func (s *Store) sweep() {
	cutoff := s.now().Add(-s.ttl)
	for key, menu := range s.menus {
		if menu.openedAt.Before(cutoff) {
			delete(s.menus, key)
		}
	}
}

// Page returns the current page number, zero-based.
func (m *Menu) Page() int {
	return m.page
}

// PageCount returns the total number of pages.
func (m *Menu) PageCount() int {
	if len(m.candidates) == 0 {
		return 1
	}
	return (len(m.candidates) + PageSize - 1) / PageSize
}

// HasNext reports whether more pages follow the current one.
func (m *Menu) HasNext() bool {
	return m.page < m.PageCount()-1
}

// PageCandidates returns the current page's candidates with their global
// indices.
func (m *Menu) PageCandidates() []IndexedCandidate {
	start := m.page * PageSize
	end := start + PageSize
	if end > len(m.candidates) {
		end = len(m.candidates)
	}
	if start >= end {
		return nil
	}

	out := make([]IndexedCandidate, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, IndexedCandidate{Candidate: m.candidates[i], Index: i})
	}
	return out
}

// Rows groups the current page's candidates into button rows.
func (m *Menu) Rows() [][]IndexedCandidate {
	page := m.PageCandidates()
	var rows [][]IndexedCandidate
	for len(page) > 0 {
		n := ButtonsPerRow
		if n > len(page) {
			n = len(page)
		}
		rows = append(rows, page[:n])
		page = page[n:]
	}
	return rows
}
