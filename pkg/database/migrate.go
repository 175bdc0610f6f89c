package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

var gooseRun = goose.Run

// Migrate runs a goose command (up, down, status, redo, version, ...) against
// the embedded migration set.
func Migrate(db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := gooseRun(command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
