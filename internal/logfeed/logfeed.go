// Package logfeed handles prediction log snapshots: diffing successive
// snapshots into freshly appended lines, bounding lines for display, and
// persisting a snapshot to disk.
package logfeed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tracker remembers how much of an append-only log has been observed and
// yields only the new tail of each successive full snapshot.
type Tracker struct {
	seen int
}

// Advance records the latest snapshot and returns the lines not seen before.
// A snapshot shorter than what was already observed means the server-side
// log was replaced (a new job started); the tracker resets and the whole
// snapshot is treated as fresh.
func (t *Tracker) Advance(lines []string) []string {
	if len(lines) < t.seen {
		t.seen = 0
	}
	if len(lines) == t.seen {
		return nil
	}
	fresh := make([]string, len(lines)-t.seen)
	copy(fresh, lines[t.seen:])
	t.seen = len(lines)
	return fresh
}

// Seen reports how many lines the tracker has observed.
func (t *Tracker) Seen() int { return t.seen }

// Tail returns at most max lines from the end of lines, in order.
func Tail(lines []string, max int) []string {
	if max <= 0 || len(lines) == 0 {
		return nil
	}
	if len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// WriteFile persists a log snapshot to path, one line per row, creating
// parent directories as needed.
func WriteFile(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
