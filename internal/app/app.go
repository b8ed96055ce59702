package app

import (
	"context"
	"fmt"
	"time"

	"github.com/somnolab/somno/internal/config"
	"github.com/somnolab/somno/internal/prefs"
	"github.com/somnolab/somno/internal/state"
	"github.com/somnolab/somno/internal/ui"
	"github.com/somnolab/somno/internal/usleep"
)

// Options configure the watch application.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/somno/prefs.toml
	ServerURL   string // overrides the configured service URL when set
	Token       string // resolved API token; required
	SessionName string // empty watches the "default" session
	PollEvery   int    // seconds; zero uses the configured default
}

// Run boots the watch TUI against one session until the context is
// cancelled or the user exits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := usleep.NewClient(opts.Token, usleep.Options{
		BaseURL:     cfg.ServerURL,
		AuthScheme:  cfg.AuthScheme,
		RoutePrefix: cfg.RoutePrefix,
	})
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	session := client.NewSession(opts.SessionName)
	store := &state.Store{}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Populate the store before the UI starts, then keep it fresh.
	refresh(ctx, store, session)
	StartPoller(ctx, store, session, interval)

	return ui.Run(ui.Options{
		Context:     ctx,
		Store:       store,
		SessionName: session.Name(),
		PollTick:    interval,
		ThemeName:   userPrefs.Theme,
	})
}
