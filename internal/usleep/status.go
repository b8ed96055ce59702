package usleep

import (
	"fmt"
	"strings"
)

// JobStatus is the observed state of a session's prediction. The server owns
// all transitions; the client only maps the reported label onto this enum.
type JobStatus int

const (
	StatusNotStarted JobStatus = iota
	StatusQueued
	StatusRunning
	StatusSuccess
	StatusFailed
)

// Terminal reports whether no further transition can occur.
func (s JobStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

func (s JobStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("JobStatus(%d)", int(s))
}

// ParseJobStatus maps a raw server status label onto the enum. Unrecognized
// labels are rejected rather than defaulted so a future server-side status
// cannot be misread as terminal or non-terminal.
func ParseJobStatus(label string) (JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "not started", "not_started", "none":
		return StatusNotStarted, nil
	case "queued", "pending", "in queue":
		return StatusQueued, nil
	case "running", "started", "in progress":
		return StatusRunning, nil
	case "completed", "success", "succeeded":
		return StatusSuccess, nil
	case "failed", "error":
		return StatusFailed, nil
	}
	return StatusNotStarted, fmt.Errorf("%w: %q", ErrUnknownStatus, label)
}
