// Package config handles loading and parsing the somno configuration file.
//
// # Overview
//
// This package reads the TOML configuration that tells the CLI how to reach
// the scoring service: server URL, auth scheme, route prefix, and default
// scoring parameters. The API token itself never lives here; the file only
// names the environment variable that carries it.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/somno/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
// Example config.toml:
//
//	server_url = "https://sleep.ai.ku.dk"
//	auth_scheme = "JWT"
//	route_prefix = "/api/v1"
//	token_env = "SOMNO_API_TOKEN"
//	default_model = "U-Sleep v2.0"
//	data_per_prediction = 3840
//	poll_interval_seconds = 2
//
// All fields are optional. Tilde expansion is performed on the config path.
//
// # Default Values
//
//   - Server: https://sleep.ai.ku.dk
//   - Auth scheme: JWT, route prefix: /api/v1
//   - Token env var: SOMNO_API_TOKEN
//   - Data per prediction: 3840 (one stage per 30s at 128 Hz)
//   - Poll interval: 2 seconds
package config
