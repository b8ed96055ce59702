// Package app wires together configuration, the scoring client, state, and
// the UI for the watch command.
//
// # Overview
//
// This is the composition root for `somno watch`: it loads configuration and
// preferences, builds the API client, attaches to the watched session, and
// runs the TUI on top of a background poller.
//
// # Components
//
//   - app.go: Run, the initialization sequence
//   - poller.go: background goroutine refreshing the shared state.Store
//
// # Polling Behavior
//
// The poller fetches the prediction status and log at a fixed interval
// (default 2 seconds) and applies them to the store atomically. While the
// service is unreachable the interval backs off exponentially, capped at 30
// seconds, and recovers to the base cadence on the first successful poll.
// Polling stops on its own once the prediction reaches a terminal state; the
// UI keeps showing the final snapshot until the user exits.
//
// The UI reads store snapshots on its own one-second tick, so a slow API
// call never blocks rendering.
package app
