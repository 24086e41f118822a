package config

import (
	"time"

	"github.com/dmitrijs2005/tictac/internal/client/client"
)

const (
	DefaultServerBaseURL    = "http://localhost:3000/api"
	DefaultCredentialDBPath = "credentials.db"
	DefaultLogLevel         = "info"
)

// Config holds runtime settings for the tictac CLI.
type Config struct {
	ServerBaseURL    string
	RequestTimeout   time.Duration
	CredentialDBPath string
	LogLevel         string
	// MetricsAddr enables the /metrics listener when non-empty.
	MetricsAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = DefaultServerBaseURL
	c.RequestTimeout = client.DefaultTimeout
	c.CredentialDBPath = DefaultCredentialDBPath
	c.LogLevel = DefaultLogLevel
	c.MetricsAddr = ""
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// flags. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
