// Package migrations holds the sqlite schema. Postgres deployments are
// migrated with gorm AutoMigrate instead.
package migrations

import "embed"

// SQLite is applied in file-name order; files are never edited once shipped.
//
//go:embed *.sql
var SQLite embed.FS
