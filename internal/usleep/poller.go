package usleep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/somnolab/somno/internal/logfeed"
)

const (
	// DefaultPollInterval matches the server's coarse job cadence. There
	// is no point polling faster than the scheduler moves.
	DefaultPollInterval = 2 * time.Second

	// defaultTransportRetries bounds how many consecutive transport
	// failures the wait loop absorbs before surfacing the error. A single
	// network blip must not abort a multi-minute job wait.
	defaultTransportRetries = 3
)

// Poller drives a session's prediction to a terminal state by interval
// polling. The zero value waits forever at the default interval.
type Poller struct {
	// Interval between status checks. Defaults to DefaultPollInterval.
	Interval time.Duration

	// Timeout bounds the total wait; zero means unbounded. Exceeding it
	// fails with ErrPollTimeout rather than returning an outcome, since
	// the job may still be running server-side.
	Timeout time.Duration

	// TransportRetries overrides the consecutive transport-failure budget.
	// Zero means the default; negative disables retries.
	TransportRetries int

	// OnLog, when set, receives each newly observed log line once per
	// poll cycle, ahead of the terminal-state check, so the final status
	// line is emitted before Wait returns.
	OnLog func(lines []string)
}

// Wait polls the session until its prediction reaches a terminal state. It
// returns true for SUCCESS and false for FAILED. Transient transport errors
// are retried at the poll interval; every other error aborts the wait.
func (p Poller) Wait(ctx context.Context, session *Session) (bool, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	retries := p.TransportRetries
	if retries == 0 {
		retries = defaultTransportRetries
	}

	var tracker logfeed.Tracker
	start := time.Now()
	failures := 0
	for {
		if p.OnLog != nil {
			if plog, err := session.Log(ctx); err == nil {
				if fresh := tracker.Advance(plog.Lines); len(fresh) > 0 {
					p.OnLog(fresh)
				}
			}
		}

		status, err := session.Status(ctx)
		switch {
		case err == nil:
			failures = 0
			switch status {
			case StatusSuccess:
				return true, nil
			case StatusFailed:
				return false, nil
			}
		case errors.Is(err, ErrTransport):
			failures++
			if failures > retries {
				return false, err
			}
		default:
			return false, err
		}

		sleep := interval
		if p.Timeout > 0 {
			elapsed := time.Since(start)
			if elapsed >= p.Timeout {
				return false, fmt.Errorf("session %q: waited %s: %w",
					session.Name(), elapsed.Round(time.Millisecond), ErrPollTimeout)
			}
			if remaining := p.Timeout - elapsed; remaining < sleep {
				sleep = remaining
			}
		}
		if err := sleepContext(ctx, sleep); err != nil {
			return false, err
		}
	}
}

// sleepContext pauses for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
