package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/flagx"
)

var ownFlags = []string{"-s", "-f", "-d", "-r", "-n", "-w", "-l", "-e"}

// parseFlags populates Config fields from command-line flags. Flags owned by
// other parsers are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("unicampus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Storage.Backend, "s", cfg.Storage.Backend, "storage backend (memory, sqlite, postgres, redis)")
	fs.StringVar(&cfg.Storage.SQLitePath, "f", cfg.Storage.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.Storage.PostgresDSN, "d", cfg.Storage.PostgresDSN, "Postgres DSN")
	fs.StringVar(&cfg.Storage.RedisAddr, "r", cfg.Storage.RedisAddr, "Redis address")
	fs.StringVar(&cfg.Storage.Namespace, "n", cfg.Storage.Namespace, "key namespace")
	watch := fs.Int("w", int(cfg.Storage.WatchInterval.Milliseconds()), "change watch interval (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.EnvFile, "e", cfg.EnvFile, ".env file with secrets")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return err
	}

	cfg.Storage.WatchInterval.Duration = time.Duration(*watch) * time.Millisecond
	return nil
}

func lookupEnvFileFlag(args []string) (string, bool) {
	var path string
	fs := flag.NewFlagSet("env", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "e", "", "")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-e"})); err != nil {
		return "", false
	}
	set := false
	fs.Visit(func(f *flag.Flag) { set = true })
	return path, set
}
