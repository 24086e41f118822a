package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tictac/internal/flagx"
	"github.com/dmitrijs2005/tictac/internal/timex"
)

// JSONConfig is the on-disk shape of the config file.
type JSONConfig struct {
	ServerBaseURL    string         `json:"server_base_url"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	CredentialDBPath string         `json:"credential_db_path"`
	LogLevel         string         `json:"log_level"`
	MetricsAddr      string         `json:"metrics_addr"`
}

// parseJSON overlays cfg with the non-empty values of the JSON file named in args.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CredentialDBPath != "" {
		cfg.CredentialDBPath = jc.CredentialDBPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.MetricsAddr != "" {
		cfg.MetricsAddr = jc.MetricsAddr
	}
	return nil
}
