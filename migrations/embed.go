// Package migrations embeds the Postgres schema and applies it in version order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
