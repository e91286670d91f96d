// Package ui provides the terminal user interface for extman.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model (Model) that renders the extension
// list and forwards user intents to the controller. It never talks to the
// remote store and never mutates the cache directly.
//
// # Package Structure
//
//   - app.go: Model, Update loop, intents and the Run entry point
//   - view.go: header, filter tabs, list rows and empty/error states
//   - help.go: help overlay built from the key map
//   - keys.go: key bindings (bubbles/key) and help.KeyMap
//   - theme.go: Dark and Light palettes and their Lipgloss styles
//   - style_helpers.go: BgStyle for gap-free background colours
//
// # Event Flow
//
//  1. Init issues the initial load and starts listening for outcomes
//  2. A key press calls controller.OnToggle/OnRemove/OnFilterChange
//  3. The model re-reads the store; the optimistic change is already there
//  4. When the remote call resolves, an outcomeMsg arrives; on rollback the
//     model re-reads the store and flashes the reason
//
// # Screen States
//
//   - Loading: spinner while the initial fetch runs
//   - Load failed: "Failed to load extensions. Try again later." and r retries
//   - Empty: "No extensions found." when the filter matches nothing
//   - List: one row per visible extension; rows with queued remote calls
//     carry a trailing marker
package ui
