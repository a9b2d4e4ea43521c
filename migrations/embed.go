// Package migrations bundles the goose SQL migrations of both store dialects.
package migrations

import "embed"

// FS contains versioned SQL migrations bundled into the binary, one directory per dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
