// Package cli implements the somno command surface. Token discovery,
// argument parsing, and output formatting live here; everything behind it is
// the usleep client.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/somnolab/somno/internal/config"
	"github.com/somnolab/somno/internal/usleep"
)

var (
	cfgFile      string
	serverFlag   string
	tokenFlag    string
	tokenEnvFlag string
	logLevelFlag string
)

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:   "somno",
		Short: "Sleep stage scoring via the U-Sleep web API",
		Long: "somno scores EDF(+) recordings using the remote U-Sleep service.\n\n" +
			"An API token is required. Create one on the service website and export\n" +
			"it in the environment variable named by --token-env (default\n" +
			"SOMNO_API_TOKEN), or pass it with --token (visible in shell history,\n" +
			"not recommended).",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/somno/config.toml)")
	flags.StringVar(&serverFlag, "server", "", "override the scoring service URL")
	flags.StringVar(&tokenFlag, "token", "", "API token (prefer the token environment variable)")
	flags.StringVar(&tokenEnvFlag, "token-env", "", "environment variable holding the API token")
	flags.StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newScoreCmd(),
		newModelsCmd(),
		newSessionsCmd(),
		newWatchCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "somno: %v\n", err)
		os.Exit(1)
	}
}

func initLogging() error {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(logLevelFlag)) {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", logLevelFlag)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	return cfg, nil
}

// resolveToken finds the API token: explicit flag first, then the configured
// environment variable. The core client never touches the environment.
func resolveToken(cfg config.Config) (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	env := tokenEnvFlag
	if env == "" {
		env = cfg.TokenEnv
	}
	if token := os.Getenv(env); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("no API token: set $%s or pass --token", env)
}

func newClient(cfg config.Config) (*usleep.Client, error) {
	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}
	return usleep.NewClient(token, usleep.Options{
		BaseURL:     cfg.ServerURL,
		AuthScheme:  cfg.AuthScheme,
		RoutePrefix: cfg.RoutePrefix,
	})
}
