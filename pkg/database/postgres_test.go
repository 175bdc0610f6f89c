package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduvillage-api/pkg/config"
)

func TestDSNPrefersURL(t *testing.T) {
	cfg := config.DatabaseConfig{URL: "postgres://u:p@db:5432/edu?sslmode=disable", Host: "ignored"}
	assert.Equal(t, cfg.URL, DSN(cfg))
}

func TestDSNFromFields(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "edu", Password: "secret", Name: "eduvillage", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=edu password=secret dbname=eduvillage sslmode=disable", DSN(cfg))
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "enrollments_student_course_key"}
	wrapped := fmt.Errorf("create enrollment: %w", dup)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.Equal(t, "enrollments_student_course_key", ConstraintName(wrapped))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23502"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.Empty(t, ConstraintName(errors.New("boom")))
}

func TestMigrateDelegatesToGoose(t *testing.T) {
	original := gooseRun
	defer func() { gooseRun = original }()

	var gotCommand, gotDir string
	var gotArgs []string
	gooseRun = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand, gotDir, gotArgs = command, dir, args
		return nil
	}

	require.NoError(t, Migrate(nil, "up-to", "2"))
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, "migrations", gotDir)
	assert.Equal(t, []string{"2"}, gotArgs)

	gooseRun = func(string, *sql.DB, string, ...string) error { return errors.New("no such command") }
	err := Migrate(nil, "lol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate lol")
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
