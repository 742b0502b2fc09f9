package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

func TestMigrationFilesExist(t *testing.T) {
	for _, filename := range []string{
		"000001_initial_schema.up.sql",
		"000001_initial_schema.down.sql",
	} {
		_, err := os.Stat(filepath.Join(migrationsDir, filename))
		assert.NoError(t, err, "migration file missing: %s", filename)
	}
}

func TestInitialSchema_CreatesAndDropsTables(t *testing.T) {
	up, err := os.ReadFile(filepath.Join(migrationsDir, "000001_initial_schema.up.sql"))
	require.NoError(t, err)
	down, err := os.ReadFile(filepath.Join(migrationsDir, "000001_initial_schema.down.sql"))
	require.NoError(t, err)

	for _, table := range []string{"engagements", "mentorship_requests"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
		assert.Contains(t, string(down), "DROP TABLE IF EXISTS "+table)
	}

	// engagements references mentorship_requests, so it must be dropped first
	assert.Less(t,
		strings.Index(string(down), "engagements"),
		strings.Index(string(down), "mentorship_requests"))
}

func TestConfigureTLS(t *testing.T) {
	t.Run("local url", func(t *testing.T) {
		cfg, err := configureTLS("postgres://localhost/db", "certs/ca.crt")
		assert.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("no ca path", func(t *testing.T) {
		cfg, err := configureTLS("postgres://db/x?sslmode=require", "")
		assert.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("missing ca file", func(t *testing.T) {
		_, err := configureTLS("postgres://db/x?sslmode=verify-full", filepath.Join(t.TempDir(), "missing.crt"))
		assert.Error(t, err)
	})

	t.Run("invalid pem", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.crt")
		require.NoError(t, os.WriteFile(path, []byte("not a cert"), 0o600))
		_, err := configureTLS("postgres://db/x?sslmode=verify-ca", path)
		assert.Error(t, err)
	})
}
