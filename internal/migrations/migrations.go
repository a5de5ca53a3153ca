// Package migrations embeds the local schema, applied with goose on every
// open.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
