// Package config loads runtime configuration for the tictac CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-t string   request timeout (Go duration, e.g. 10s)
//	-d string   path of the SQLite credential database
//	-l string   log level: debug, info, warn, error
//	-m string   listen address for the Prometheus /metrics endpoint (empty disables it)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds. Missing keys keep the default:
//
//	{
//	  "server_base_url": "http://localhost:3000/api",
//	  "request_timeout": "10s",
//	  "credential_db_path": "credentials.db",
//	  "log_level": "info",
//	  "metrics_addr": ":9102"
//	}
package config
