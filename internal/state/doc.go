// Package state provides thread-safe snapshot sharing between the background
// poller and the watch UI.
//
// # Overview
//
// The Store is the coordination point where polling updates meet rendering: a
// single producer (the poller) calls Update, and the UI reads immutable
// Snapshot copies on its own schedule.
//
// # Update Semantics
//
// On success the whole snapshot is replaced and the failure counter resets.
// On error the previous status and log lines are kept so the UI always has
// the most recent good data to show, while LastError and the consecutive
// failure count record the outage:
//
//	store.Update(&status, lines, nil) // replace data, clear error
//	store.Update(nil, nil, err)       // keep data, record failure
//
// Snapshot.IsOffline reports two or more consecutive failures, which the UI
// renders as an offline banner. Snapshot.Done reports a terminal prediction
// state and stops the poller.
//
// # Concurrency
//
// Access is guarded by a sync.RWMutex; snapshots are returned by value with
// log lines cloned, so neither side can mutate the other's view.
package state
