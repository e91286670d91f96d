package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/extman/internal/gateway"
)

// ErrNotFound is returned when an operation names an id the cache does not hold.
// In normal operation the UI only offers actions on rendered entities, so
// seeing it means the UI and the cache have drifted apart.
var ErrNotFound = errors.New("extension not in cache")

// LoadStatus tracks the one-shot initial load.
type LoadStatus int

const (
	LoadPending LoadStatus = iota
	Loaded
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Extensions []gateway.Extension
	Filter     Filter
	Status     LoadStatus
	LoadError  error
	LoadedAt   time.Time
}

// Visible returns the filtered view of the snapshot.
func (s Snapshot) Visible() []gateway.Extension {
	return Visible(s.Extensions, s.Filter)
}

// Removed is what RemoveByID hands back so the removal can be undone.
type Removed struct {
	Extension gateway.Extension
	Index     int
}

// Store owns the session's extensions and the active filter.
// The zero value is an empty, pending store ready for use.
type Store struct {
	mu       sync.RWMutex
	items    []gateway.Extension
	rank     map[gateway.ID]int // position in the last load
	filter   Filter
	status   LoadStatus
	loadErr  error
	loadedAt time.Time
}

// Load replaces the cached sequence and marks the store loaded. Later
// entries that repeat an earlier id are dropped; their ids are returned so
// the caller can report them.
func (s *Store) Load(entities []gateway.Extension) (dropped []gateway.ID) {
	items := make([]gateway.Extension, 0, len(entities))
	rank := make(map[gateway.ID]int, len(entities))
	for _, ext := range entities {
		if _, dup := rank[ext.ID]; dup {
			dropped = append(dropped, ext.ID)
			continue
		}
		rank[ext.ID] = len(items)
		items = append(items, ext)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.rank = rank
	s.status = Loaded
	s.loadErr = nil
	s.loadedAt = time.Now()
	return dropped
}

// MarkLoadFailed records a failed initial load. The cache is left empty.
func (s *Store) MarkLoadFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.rank = nil
	s.status = LoadFailed
	s.loadErr = err
	s.loadedAt = time.Now()
}

// Status reports the load state.
func (s *Store) Status() LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Get returns the cached extension with id.
func (s *Store) Get(id gateway.ID) (gateway.Extension, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return gateway.Extension{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return s.items[i], nil
}

// Len returns the number of cached extensions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// SetActive sets the active flag of id in place and returns the previous value.
func (s *Store) SetActive(id gateway.ID, isActive bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, fmt.Errorf("set active %s: %w", id, ErrNotFound)
	}
	prev := s.items[i].IsActive
	s.items[i].IsActive = isActive
	return prev, nil
}

// RemoveByID deletes id from the sequence and returns it with its position.
func (s *Store) RemoveByID(id gateway.ID) (Removed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Removed{}, fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	removed := Removed{Extension: s.items[i], Index: i}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return removed, nil
}

// Restore puts a removed extension back where the last load placed it
// relative to the extensions still cached, so restores in any order
// rebuild the loaded order. Ids the load never saw go back at their old
// index, clamped to the current length. If the id is already cached the
// entry is overwritten in place instead.
func (s *Store) Restore(r Removed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(r.Extension.ID); i >= 0 {
		s.items[i] = r.Extension
		return
	}
	at := s.restoreIndex(r)
	s.items = append(s.items, gateway.Extension{})
	copy(s.items[at+1:], s.items[at:])
	s.items[at] = r.Extension
}

// SetFilter changes the active filter.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Filter returns the active filter.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Visible returns the cached extensions that pass the active filter.
func (s *Store) Visible() []gateway.Extension {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Visible(s.items, s.filter)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Extensions: cloneExtensions(s.items),
		Filter:     s.filter,
		Status:     s.status,
		LoadError:  s.loadErr,
		LoadedAt:   s.loadedAt,
	}
}

func (s *Store) restoreIndex(r Removed) int {
	want, ok := s.rank[r.Extension.ID]
	if !ok {
		return min(max(r.Index, 0), len(s.items))
	}
	for i := range s.items {
		if got, ok := s.rank[s.items[i].ID]; ok && got > want {
			return i
		}
	}
	return len(s.items)
}

func (s *Store) indexOf(id gateway.ID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneExtensions(items []gateway.Extension) []gateway.Extension {
	if len(items) == 0 {
		return nil
	}
	dup := make([]gateway.Extension, len(items))
	copy(dup, items)
	return dup
}
