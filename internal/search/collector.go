package seek

import "sync"

// MatchSet accumulates matched paths from every concurrently running unit
// of a single search. It is safe for concurrent use.
//
// Snapshot only returns the complete result once the search that owns the
// set has finished; before that the contents are partial.
type MatchSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewMatchSet returns an empty MatchSet.
func NewMatchSet() *MatchSet {
	return &MatchSet{seen: make(map[string]struct{})}
}

// Record adds path to the set and reports whether it was not already present.
// The lock covers the insert only, never any filesystem work.
func (s *MatchSet) Record(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[path]; ok {
		return false
	}
	s.seen[path] = struct{}{}
	s.order = append(s.order, path)
	return true
}

// Snapshot returns a copy of the recorded paths in insertion order.
func (s *MatchSet) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of recorded paths.
func (s *MatchSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
