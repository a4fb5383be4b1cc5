package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// parseEnv reads secrets and endpoints from the environment, then from
// cfg.EnvFile for anything the environment leaves unset.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var fileVars map[string]string
	if cfg.EnvFile != "" {
		vars, err := godotenv.Read(cfg.EnvFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("failed to read %s: %w", cfg.EnvFile, err)
		}
	}

	get := func(key string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fileVars[key]
	}

	if v := get("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	} else {
		setIf(&cfg.GeminiAPIKey, get("API_KEY"))
	}
	setIf(&cfg.GeminiModel, get("GEMINI_MODEL"))
	setIf(&cfg.Storage.PostgresDSN, get("UNICAMPUS_POSTGRES_DSN"))
	setIf(&cfg.Storage.RedisAddr, get("UNICAMPUS_REDIS_ADDR"))
	setIf(&cfg.Addr, get("UNICAMPUS_ADDR"))
	return nil
}
