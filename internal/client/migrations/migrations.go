// Package migrations embeds the goose migrations of the local credential database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
