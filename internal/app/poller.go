package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/somnolab/somno/internal/state"
	"github.com/somnolab/somno/internal/usleep"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while the API is unreachable. Polling stops on
// its own once the prediction reaches a terminal state; the UI keeps the
// final snapshot. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, session *usleep.Session, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			refresh(ctx, store, session)
			snap := store.Snapshot()
			if snap.Done() {
				return
			}
			timer := time.NewTimer(calculateBackoff(snap.ConsecutiveFailures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, session *usleep.Session) {
	status, err := session.Status(ctx)
	if err != nil {
		store.Update(nil, nil, err)
		slog.Debug("status poll failed", "session", session.Name(), "error", err)
		return
	}
	plog, err := session.Log(ctx)
	if err != nil {
		store.Update(nil, nil, err)
		slog.Debug("log poll failed", "session", session.Name(), "error", err)
		return
	}
	store.Update(&status, plog.Lines, nil)
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff. Zero failures means the plain interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures < 0 {
		failures = 0
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
