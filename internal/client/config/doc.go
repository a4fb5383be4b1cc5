// Package config loads runtime configuration for the unicampus CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment, optionally seeded from a .env file (-e, default ".env").
//     Real environment variables win over the file.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-s string   storage backend: memory, sqlite, postgres, redis
//	-f string   SQLite database file
//	-d string   Postgres DSN
//	-r string   Redis address
//	-n string   key namespace
//	-w int      change watch interval (milliseconds)
//	-l string   log level
//	-e string   .env file
//
// # JSON schema
//
//	{
//	  "storage": {
//	    "backend": "sqlite",
//	    "sqlite_path": "unicampus.db",
//	    "namespace": "uc_",
//	    "watch_interval": "500ms"
//	  },
//	  "log_level": "info",
//	  "log_format": "text",
//	  "gemini_model": "gemini-3-flash-preview",
//	  "s3": {"region": "us-east-1", "base_endpoint": "http://127.0.0.1:9000", "bucket": "unicampus"}
//	}
//
// Secrets (the Gemini API key and S3 credentials) are read from the
// environment only: GEMINI_API_KEY (or API_KEY), S3_ACCESS_KEY, S3_SECRET_KEY
// and BACKUP_PASSPHRASE, which encrypts uploaded snapshots when set.
package config
