package db

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DevMode switches getMigrationsFS to read migrations from the local
// directory instead of the embedded copy, so new migration files can be
// iterated on without rebuilding.
var DevMode = false

// getMigrationsFS returns the migrations filesystem rooted at the directory
// containing the .sql files.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		return os.DirFS("internal/db/migrations"), nil
	}
	return fs.Sub(migrationsFS, "migrations")
}
