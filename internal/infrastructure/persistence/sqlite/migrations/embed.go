// Package migrations holds the profile cache schema.
package migrations

import "embed"

// FS contains embedded SQLite migrations for the profile cache.
//
//go:embed *.sql
var FS embed.FS
