// Package recordstore is a typed, per-session cache of backend records keyed by id.
//
// Screens read lists and single records through a Store; mutations replace or
// remove the one record the backend returned instead of refetching the collection.
package recordstore

import (
	"sync"
	"time"
)

// DefaultTTL bounds how long a cached record or list snapshot is trusted.
const DefaultTTL = 2 * time.Minute

// Record is anything with a backend identifier.
type Record interface {
	RecordID() string
}

type entry[T Record] struct {
	value    T
	storedAt time.Time
}

// Store caches records of one kind.
// INVARIANT: every id in order has an entry in byID while the list is valid
type Store[T Record] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	byID    map[string]entry[T]
	order   []string
	listAt  time.Time
	hasList bool
}

// New creates an empty store. A non-positive ttl means DefaultTTL.
func New[T Record](ttl time.Duration) *Store[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store[T]{
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[string]entry[T]),
	}
}

// Get returns a fresh cached record.
// PRE: id is non-empty
// POST: ok is false when the record is absent or expired
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok || s.expired(e.storedAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores or replaces one record. If a list snapshot is held and the record is
// new to it, it is appended so the list stays consistent with byID.
// POST: Get(rec.RecordID()) returns rec
func (s *Store[T]) Put(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := rec.RecordID()
	_, existed := s.byID[id]
	s.byID[id] = entry[T]{value: rec, storedAt: s.now()}
	if s.hasList && !existed {
		s.order = append(s.order, id)
	}
}

// PutAll replaces the list snapshot with recs, in backend order.
// POST: List returns recs until the snapshot expires or is invalidated
func (s *Store[T]) PutAll(recs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.byID = make(map[string]entry[T], len(recs))
	s.order = make([]string, 0, len(recs))
	for _, r := range recs {
		id := r.RecordID()
		if _, dup := s.byID[id]; !dup {
			s.order = append(s.order, id)
		}
		s.byID[id] = entry[T]{value: r, storedAt: now}
	}
	s.listAt = now
	s.hasList = true
}

// List returns the cached list snapshot with any Put replacements applied.
// POST: ok is false when there is no snapshot or it has expired
func (s *Store[T]) List() ([]T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasList || s.expired(s.listAt) {
		return nil, false
	}
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.byID[id]; ok {
			out = append(out, e.value)
		}
	}
	return out, true
}

// Remove drops one record from the cache and from the list snapshot.
func (s *Store[T]) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Invalidate forgets one record so the next Get goes to the backend.
// The list snapshot is dropped too, since it would otherwise lose the row.
func (s *Store[T]) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	if s.hasList {
		s.hasList = false
		s.order = nil
	}
}

// InvalidateList drops the list snapshot but keeps individual records.
func (s *Store[T]) InvalidateList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasList = false
	s.order = nil
}

func (s *Store[T]) expired(at time.Time) bool {
	return s.now().Sub(at) > s.ttl
}
