// Package migrations embeds the goose SQL migrations for the IEP Hero schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
