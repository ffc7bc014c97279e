// Package control implements the reconciliation controller: the per-field
// edit state machines, the toggle and interlock intents, and the single
// reconciliation function that folds device events into the snapshot.
//
// # Edit locks
//
// Focusing a field moves it from Idle to Editing and holds its lock. While a
// lock is held, incoming events leave that field's values alone; every other
// field keeps updating. Blur releases the lock and then dispatches the
// set-point command, so the next push event is adopted as soon as it lands.
//
// # Threading
//
// Controller is plain single-goroutine state. Runner owns one and applies
// every UI intent and transport callback on its own goroutine, publishing a
// fresh state.View after each.
//
// Commands are fire-and-forget. The device's next push event is the only
// confirmation the controller acts on.
package control
