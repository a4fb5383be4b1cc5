package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/unicampus/internal/flagx"
	"github.com/dmitrijs2005/unicampus/internal/storage"
	"github.com/dmitrijs2005/unicampus/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "10s" or
// integer nanoseconds.
type JsonConfig struct {
	Addr            string          `json:"addr"`
	Storage         *storage.Config `json:"storage"`
	LogLevel        string          `json:"log_level"`
	LogFormat       string          `json:"log_format"`
	ShutdownTimeout timex.Duration  `json:"shutdown_timeout"`
	GeminiModel     string          `json:"gemini_model"`
	EnvFile         string          `json:"env_file"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
// Empty fields keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	st := cfg.Storage
	jc := JsonConfig{Storage: &st}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if jc.Storage != nil {
		cfg.Storage = *jc.Storage
	}
	setIf(&cfg.Addr, jc.Addr)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.GeminiModel, jc.GeminiModel)
	setIf(&cfg.EnvFile, jc.EnvFile)
	if jc.ShutdownTimeout.Duration > 0 {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
