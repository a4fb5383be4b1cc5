// Package storage opens the kv.Store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/filex"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/kv/memory"
	"github.com/dmitrijs2005/unicampus/internal/kv/redisstore"
	"github.com/dmitrijs2005/unicampus/internal/kv/sqlstore"
	"github.com/dmitrijs2005/unicampus/internal/logging"
	"github.com/dmitrijs2005/unicampus/internal/timex"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	DefaultNamespace = "uc_"
)

// Config selects and tunes the backend.
type Config struct {
	Backend       string         `json:"backend"`
	SQLitePath    string         `json:"sqlite_path"`
	PostgresDSN   string         `json:"postgres_dsn"`
	RedisAddr     string         `json:"redis_addr"`
	RedisPrefix   string         `json:"redis_prefix"`
	Namespace     string         `json:"namespace"`
	WatchInterval timex.Duration `json:"watch_interval"`
}

// Defaults returns the single-machine SQLite configuration.
func Defaults() Config {
	return Config{
		Backend:       BackendSQLite,
		SQLitePath:    "unicampus.db",
		RedisPrefix:   redisstore.DefaultPrefix,
		Namespace:     DefaultNamespace,
		WatchInterval: timex.Duration{Duration: 500 * time.Millisecond},
	}
}

// Open returns the configured store wrapped in the key namespace.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (kv.Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("module", "storage", "backend", cfg.Backend)

	var (
		s   kv.Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = memory.New()
	case BackendSQLite:
		if _, err := filex.EnsureParentDir(cfg.SQLitePath); err != nil {
			return nil, err
		}
		s, err = sqlstore.OpenSQLite(ctx, cfg.SQLitePath, sqlstore.Options{
			PollInterval: cfg.WatchInterval.Duration,
			Logger:       logger,
		})
	case BackendPostgres:
		s, err = sqlstore.OpenPostgres(ctx, cfg.PostgresDSN, sqlstore.Options{
			PollInterval: cfg.WatchInterval.Duration,
			Logger:       logger,
		})
	case BackendRedis:
		s, err = redisstore.Open(ctx, cfg.RedisAddr, redisstore.Options{
			Prefix: cfg.RedisPrefix,
			Logger: logger,
		})
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "storage opened", "namespace", cfg.Namespace)
	return kv.WithNamespace(s, cfg.Namespace), nil
}
