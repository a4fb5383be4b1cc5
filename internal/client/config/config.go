package config

import (
	"os"

	"github.com/dmitrijs2005/unicampus/internal/client/advisor"
	"github.com/dmitrijs2005/unicampus/internal/client/backup"
	"github.com/dmitrijs2005/unicampus/internal/storage"
)

// Config holds runtime settings for the unicampus CLI.
type Config struct {
	Storage storage.Config

	LogLevel  string
	LogFormat string

	GeminiAPIKey string
	GeminiModel  string

	S3 backup.S3Config

	EnvFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Storage = storage.Defaults()
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.GeminiModel = advisor.DefaultModel
	c.S3 = backup.S3Config{Region: "us-east-1", Prefix: "unicampus/"}
	c.EnvFile = ".env"
}

// BackupEnabled reports whether enough S3 settings are present to upload.
func (c *Config) BackupEnabled() bool {
	return c.S3.Bucket != ""
}

// Load builds a Config from args (without the program name): defaults,
// then JSON, then environment, then flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}

	// The .env location is itself a flag, so resolve it before reading env.
	if envFile, ok := lookupEnvFileFlag(args); ok {
		cfg.EnvFile = envFile
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
