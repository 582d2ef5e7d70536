package migrations

import "embed"

// FS содержит SQL миграции консоли.
//
//go:embed *.sql
var FS embed.FS
