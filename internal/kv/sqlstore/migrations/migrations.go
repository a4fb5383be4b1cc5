// Package migrations embeds the kv table schema applied by goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
