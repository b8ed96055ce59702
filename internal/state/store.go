package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/somnolab/somno/internal/usleep"
)

// Snapshot represents the latest prediction data available to the UI.
type Snapshot struct {
	Status              usleep.JobStatus
	HasStatus           bool
	LogLines            []string
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Done reports whether the prediction has reached a terminal state.
func (s Snapshot) Done() bool {
	return s.HasStatus && s.Status.Terminal()
}

// Store coordinates concurrent updates to the snapshot between the
// background poller and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data
// is kept but the error is recorded for visibility.
func (s *Store) Update(status *usleep.JobStatus, logLines []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.LogLines = cloneLines(logLines)
	if status != nil {
		s.snapshot.Status = *status
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.HasStatus = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.LogLines = cloneLines(s.snapshot.LogLines)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]string, len(lines))
	copy(dup, lines)
	return dup
}
