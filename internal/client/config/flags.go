package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tictac/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-d", "-l", "-m"}

// parseFlags overlays cfg with command-line flags. Unknown arguments are
// filtered out with flagx.FilterArgs so other parsers can share args.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("tictac", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend API")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.CredentialDBPath, "d", cfg.CredentialDBPath, "path of the credential database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
