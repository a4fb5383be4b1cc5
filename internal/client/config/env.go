package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// parseEnv overlays secrets and endpoints from the environment. Values from
// cfg.EnvFile fill in whatever lookup does not define; a missing file is fine.
func parseEnv(cfg *Config, lookup LookupFunc) error {
	fileVars := map[string]string{}
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

	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v
			}
			if v := fileVars[k]; v != "" {
				return v
			}
		}
		return ""
	}

	setIf(&cfg.GeminiAPIKey, get("GEMINI_API_KEY", "API_KEY"))
	setIf(&cfg.GeminiModel, get("GEMINI_MODEL"))
	setIf(&cfg.S3.Region, get("S3_REGION"))
	setIf(&cfg.S3.BaseEndpoint, get("S3_BASE_ENDPOINT"))
	setIf(&cfg.S3.AccessKey, get("S3_ACCESS_KEY"))
	setIf(&cfg.S3.SecretKey, get("S3_SECRET_KEY"))
	setIf(&cfg.S3.Bucket, get("S3_BUCKET"))
	setIf(&cfg.S3.Passphrase, get("BACKUP_PASSPHRASE"))
	setIf(&cfg.Storage.PostgresDSN, get("UNICAMPUS_POSTGRES_DSN"))
	setIf(&cfg.Storage.RedisAddr, get("UNICAMPUS_REDIS_ADDR"))
	return nil
}
