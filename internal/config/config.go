package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the CLI needs to reach the scoring service.
// The API token itself is never stored here; only the name of the
// environment variable that carries it.
type Config struct {
	ServerURL         string
	AuthScheme        string
	RoutePrefix       string
	TokenEnv          string
	DefaultModel      string
	DataPerPrediction int
	PollInterval      time.Duration
}

const (
	defaultConfigPath  = "~/.config/somno/config.toml"
	defaultServerURL   = "https://sleep.ai.ku.dk"
	defaultAuthScheme  = "JWT"
	defaultRoutePrefix = "/api/v1"
	defaultTokenEnv    = "SOMNO_API_TOKEN"
	// 128 Hz resampled signal, 30 second epochs.
	defaultDataPerPrediction = 128 * 30
	defaultPollSeconds       = 2
)

func defaults() Config {
	return Config{
		ServerURL:         defaultServerURL,
		AuthScheme:        defaultAuthScheme,
		RoutePrefix:       defaultRoutePrefix,
		TokenEnv:          defaultTokenEnv,
		DataPerPrediction: defaultDataPerPrediction,
		PollInterval:      defaultPollSeconds * time.Second,
	}
}

// Load locates and parses the somno config, falling back to defaults when
// the file is missing. Fields left empty in the file keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL         string `toml:"server_url"`
		AuthScheme        string `toml:"auth_scheme"`
		RoutePrefix       string `toml:"route_prefix"`
		TokenEnv          string `toml:"token_env"`
		DefaultModel      string `toml:"default_model"`
		DataPerPrediction int    `toml:"data_per_prediction"`
		PollSeconds       int    `toml:"poll_interval_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(raw.AuthScheme); v != "" {
		cfg.AuthScheme = v
	}
	if v := strings.TrimSpace(raw.RoutePrefix); v != "" {
		cfg.RoutePrefix = v
	}
	if v := strings.TrimSpace(raw.TokenEnv); v != "" {
		cfg.TokenEnv = v
	}
	cfg.DefaultModel = strings.TrimSpace(raw.DefaultModel)
	if raw.DataPerPrediction > 0 {
		cfg.DataPerPrediction = raw.DataPerPrediction
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}

	return cfg, nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
