// Package state defines the client-side device model shared by the
// controller and the UI.
//
// # Overview
//
// Two layers describe what the operator sees:
//
//   - Snapshot: the last server-confirmed device state (base layer)
//   - PendingEdit: an unconfirmed set-point the operator is typing (overlay)
//
// The controller merges them into a View. Every type here is a plain value;
// updates replace values wholesale so consumers can compare cheaply and never
// observe a half-written state.
//
// # Architecture
//
//	Producer (control.Runner):      Consumer (UI, tests):
//	┌──────────────────┐            ┌──────────────────┐
//	│ apply intent or  │            │                  │
//	│ push event       │            │                  │
//	│      ↓           │            │                  │
//	│ store.Update(v)  │───────────→│ store.Snapshot() │
//	│      ↓           │  (mutex)   │      ↓           │
//	│ repeat...        │            │ render           │
//	└──────────────────┘            └──────────────────┘
//
// # Fields and Phases
//
// Voltage accepts [0, 42] and current [0, 10] (closed). Each field moves
// Idle → Editing → Committing → Idle; any phase other than Idle holds the
// field's edit lock.
package state
