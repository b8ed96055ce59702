// Package ui implements the Bubble Tea interface for the watch command.
//
// # Overview
//
// The watch view shows one session's prediction: a status line with a
// spinner while the job is queued or running, and the prediction log in a
// scrollable viewport underneath. Data comes exclusively from state.Store
// snapshots refreshed on a timer; the UI never talks to the network itself.
//
// # Key Bindings
//
//   - q / esc / ctrl+c: quit
//   - G / end: follow the log tail (default)
//   - g: jump to the top
//   - up / k / pgup: scroll, disabling follow
//
// # Components
//
//   - ui.go: Model, Update loop, rendering
//   - theme.go: color themes and Lipgloss styles
//
// When the store reports consecutive poll failures the status line is
// replaced with an offline banner; the last good log snapshot stays visible.
package ui
