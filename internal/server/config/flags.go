package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   storage backend: memory, sqlite, postgres, redis
//	-f string   SQLite database file
//	-d string   Postgres DSN
//	-r string   Redis address
//	-n string   key namespace
//	-w int      change watch interval (milliseconds)
//	-l string   log level
//	-t int      shutdown timeout (seconds)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-f", "-d", "-r", "-n", "-w", "-l", "-t"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.Storage.Backend, "s", cfg.Storage.Backend, "storage backend")
	fs.StringVar(&cfg.Storage.SQLitePath, "f", cfg.Storage.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.Storage.PostgresDSN, "d", cfg.Storage.PostgresDSN, "Postgres DSN")
	fs.StringVar(&cfg.Storage.RedisAddr, "r", cfg.Storage.RedisAddr, "Redis address")
	fs.StringVar(&cfg.Storage.Namespace, "n", cfg.Storage.Namespace, "key namespace")
	watch := fs.Int("w", int(cfg.Storage.WatchInterval.Milliseconds()), "change watch interval (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	shutdown := fs.Int("t", int(cfg.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Storage.WatchInterval.Duration = time.Duration(*watch) * time.Millisecond
	cfg.ShutdownTimeout = time.Duration(*shutdown) * time.Second
	return nil
}
