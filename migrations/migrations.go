// Package migrations embeds the SQL schema for the postgres backend.
package migrations

import "embed"

// FS holds every *.sql file of this directory.
//
//go:embed *.sql
var FS embed.FS
