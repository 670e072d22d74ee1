// Package migrations embeds the SQL schema migrations so binaries can
// migrate without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.sql migration file
//
//go:embed *.sql
var FS embed.FS
