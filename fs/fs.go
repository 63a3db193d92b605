// Package appfs embeds the static files the binaries need at runtime.
package appfs

import "embed"

// FS holds the SQL migrations (one directory per DB dialect) & the email templates.
//
//go:embed migrations all:templates
var FS embed.FS

// MigrationsDir returns the migrations directory for the given DB engine.
func MigrationsDir(engine string) string {
	return "migrations/" + engine
}
