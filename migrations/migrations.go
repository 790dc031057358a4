// Package migrations embeds the SQL schema for the postgres storage backend.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
