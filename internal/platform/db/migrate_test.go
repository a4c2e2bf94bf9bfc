package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_performance.sql", "README.md", "0001_core.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_core.sql", "0002_performance.sql"}, files)
}

func TestMigrationFilesMissingDir(t *testing.T) {
	_, err := migrationFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	assert.Contains(t, files, "0001_core.sql")
	assert.Contains(t, files, "0002_performance.sql")
}
