// Package migrations embeds the SQL schema applied by cmd/migrate and the integration tests.
package migrations

import "embed"

// FS holds the versioned up/down SQL files in golang-migrate naming.
//
//go:embed *.sql
var FS embed.FS
