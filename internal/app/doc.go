// Package app is the composition root for extman.
//
// # Overview
//
// NewSession wires configuration, logging, preferences, the gateway client,
// the entity store and the controller. Both the TUI (Run) and the CLI
// subcommands build their dependencies through it, so they share one set of
// defaults and one code path to the remote store.
//
// # Architecture
//
//	┌──────────────┐
//	│ NewSession() │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read ~/.config/extman/config.toml
//	       ├─────> logging.New()        File for the TUI, stderr for the CLI
//	       ├─────> prefs.Load()         Theme
//	       ├─────> gateway.NewClient()  HTTP client for the remote store
//	       ├─────> state.Store{}        Entity cache + filter
//	       └─────> controller.New()     Optimistic updates and rollback
//
//	Run():
//	  NewSession ─> ui.Run (blocks) ─> Controller.Wait (bounded drain)
//
// # Data Flow
//
// The list is fetched exactly once, by the UI's first command (or by a CLI
// command). After that the cache only changes through controller intents and
// their rollbacks. There is no background polling.
//
// # Shutdown
//
// When the UI exits, Run waits up to a few seconds for in-flight remote calls
// before cancelling their context. Calls cut off by the cancellation fail and
// are rolled back in the cache, and the pending count is logged.
package app
