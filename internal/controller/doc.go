// Package controller implements optimistic updates of the extension cache.
//
// # Overview
//
// The controller is the only inbound entry point from the UI layer:
//
//   - OnToggle(id, desired): set the active flag
//   - OnRemove(id): remove the extension
//   - OnFilterChange(f): switch the visible subset (local only)
//   - Load(ctx): the one initial fetch
//
// # Mutation Lifecycle
//
// Each toggle or remove becomes a Mutation that moves through
//
//	Idle -> Optimistic -> Confirmed
//	                   -> RolledBack
//
// The forward change is applied to the store before OnToggle/OnRemove
// return, so the next render shows the user's intent. The inverse change is
// captured at the same moment (the previous flag for a toggle, the removed
// entity and its index for a remove) and runs only if the remote call fails.
//
// # Per-ID Lanes
//
// Mutations on the same id are queued in a lane and sent one at a time, in
// the order they were issued. Different ids have independent lanes and may
// resolve in any order.
//
// Queued mutations still apply their optimistic change immediately, which
// means a queued mutation's captured "previous" value is its predecessor's
// optimistic value. When a predecessor fails while a successor is queued,
// its rollback is handed to the successor rather than run at once:
//
//	A: toggle false->true   (undo: set false)
//	B: toggle true->false   (undo: set true)
//	A fails -> store keeps B's value; B inherits A's undo
//	B fails -> run B's undo, then A's undo -> false
//	B succeeds -> inherited undo dropped; the store already matches
//
// A's Outcome carries Deferred because its failure did not change the store.
//
// # Outcomes
//
// Results are delivered three ways: Mutation.Wait/Done/Err for callers that
// hold the handle (the CLI), Options.Notify for the UI, and log lines with
// the mutation's uuid. Notify runs and Pending drops before Done closes, so
// a caller released by Wait never races the controller's own bookkeeping.
//
// # Error Handling
//
// Remote failures roll back and surface via the outcome. An intent for an id
// the cache does not hold is a UI/cache desync: it is logged at error level
// and returned wrapping state.ErrNotFound without any remote call. A failed
// Load marks the store failed and leaves it empty so the UI can render a
// "failed to load" state.
package controller
