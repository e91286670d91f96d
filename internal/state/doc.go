// Package state holds the session's extension cache and the active filter.
//
// # Overview
//
// Store is the single owner of entity state for a running extman session.
// It is empty at startup, filled once by Load after the initial fetch, and
// then changed one entity at a time by the controller. Nothing is persisted.
//
// # Core Types
//
// Store:
//   - Ordered sequence of gateway.Extension values, in store load order
//   - The active Filter
//   - Load status (pending, loaded, failed) and the load error
//   - Guarded by a sync.RWMutex; remote completions arrive on goroutines
//
// Snapshot:
//   - Copy of the store at a point in time, returned by value
//   - Extensions slice is cloned, so callers may keep or modify it
//
// Filter:
//   - FilterAll, FilterActive, FilterInactive
//   - Visible(items, f) derives the visible subsequence; it is pure and
//     recomputed on every call
//
// # Mutation Primitives
//
// The controller builds optimistic updates out of four primitives, each of
// which returns what it needs to be undone:
//
//	prev, err := store.SetActive(id, true)   // undo: store.SetActive(id, prev)
//	removed, err := store.RemoveByID(id)     // undo: store.Restore(removed)
//
// Every primitive looks up by id and never appends blindly, so the cache
// never holds two entries with the same id. Load enforces the same rule on
// incoming data by keeping the first occurrence of each id.
//
// Restore puts an entity back at the index it was removed from, clamped to
// the current length. Other removals may have happened in between, so the
// position is best effort.
//
// # Error Handling
//
// Lookups of an unknown id fail with an error wrapping ErrNotFound.
//
// # Testing Considerations
//
// The zero Store is ready to use:
//
//	var s state.Store
//	s.Load([]gateway.Extension{{ID: 1}})
package state
