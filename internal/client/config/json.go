package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/unicampus/internal/flagx"
	"github.com/dmitrijs2005/unicampus/internal/storage"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Only
// non-zero fields override the current Config.
type JsonConfig struct {
	Storage     *storage.Config `json:"storage"`
	LogLevel    string          `json:"log_level"`
	LogFormat   string          `json:"log_format"`
	GeminiModel string          `json:"gemini_model"`
	S3          *jsonS3         `json:"s3"`
}

type jsonS3 struct {
	Region       string `json:"region"`
	BaseEndpoint string `json:"base_endpoint"`
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Start from the current storage settings so partial objects keep defaults.
	jc := JsonConfig{Storage: &storage.Config{}}
	*jc.Storage = cfg.Storage
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if jc.Storage != nil {
		cfg.Storage = *jc.Storage
	}
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.GeminiModel, jc.GeminiModel)
	if jc.S3 != nil {
		setIf(&cfg.S3.Region, jc.S3.Region)
		setIf(&cfg.S3.BaseEndpoint, jc.S3.BaseEndpoint)
		setIf(&cfg.S3.Bucket, jc.S3.Bucket)
		setIf(&cfg.S3.Prefix, jc.S3.Prefix)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
