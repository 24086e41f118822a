package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	return &Config{
		ServerBaseURL:    "http://localhost:3000/api",
		RequestTimeout:   10 * time.Second,
		CredentialDBPath: "credentials.db",
		LogLevel:         "info",
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()
	assert.Empty(t, cmp.Diff(defaults(), &c))
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"server_base_url": "http://json:1/api",
		"request_timeout": "3s",
		"log_level":       "debug",
	})

	cfg, err := LoadConfig([]string{"-c", path, "-a", "http://flag:2/api", "-x", "ignored"})
	require.NoError(t, err)

	want := defaults()
	want.ServerBaseURL = "http://flag:2/api"
	want.RequestTimeout = 3 * time.Second
	want.LogLevel = "debug"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_NoArgs(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}
