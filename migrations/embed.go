// Package migrations holds the sqlite schema applied at startup.
package migrations

import "embed"

// FS contains every numbered .sql migration
//
//go:embed *.sql
var FS embed.FS
