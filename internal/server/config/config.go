// Package config handles configuration for the HTTP server, including
// defaults, JSON overlay, environment secrets and command-line flags.
package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/client/advisor"
	"github.com/dmitrijs2005/unicampus/internal/storage"
)

// Config holds runtime settings for the unicampus HTTP server.
//
// Fields:
//   - Addr: bind address of the HTTP API.
//   - Storage: the shared key/value backend every session connects to.
//   - ShutdownTimeout: how long in-flight requests get on shutdown.
//   - GeminiAPIKey / GeminiModel: AI advisor; an empty key disables it.
type Config struct {
	Addr            string
	Storage         storage.Config
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	GeminiAPIKey    string
	GeminiModel     string
	EnvFile         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.Storage = storage.Defaults()
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 10 * time.Second
	c.GeminiModel = advisor.DefaultModel
	c.EnvFile = ".env"
}

// Load builds a Config from args: defaults, JSON, environment, then flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads from os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
