package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erp/credit/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add credit lines", "add_credit_lines"},
		{"Add-Credit-Lines", "add_credit_lines"},
		{"ADD_CREDIT_LINES", "add_credit_lines"},
		{"add__credit__lines", "add_credit_lines"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration is 000001", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "create credit schema", "Customers and credit lines")
		require.NoError(t, err)

		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, "000001_create_credit_schema.up.sql", filepath.Base(mf.UpPath))
		assert.Equal(t, "000001_create_credit_schema.down.sql", filepath.Base(mf.DownPath))

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "create credit schema")
		assert.Contains(t, string(up), "Customers and credit lines")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("continues after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init.up.sql", "000001_init.down.sql",
			"000009_aging.up.sql", "000009_aging.down.sql",
			"000010_index.up.sql", "000010_index.down.sql",
		)

		mf, err := CreateMigration(dir, "next", "")
		require.NoError(t, err)
		assert.Equal(t, "000011", mf.Version)
	})

	t.Run("creates the directory", func(t *testing.T) {
		nested := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(nested, "test", "test migration")
		require.NoError(t, err)

		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		require.Error(t, err)
	})

	t.Run("unparseable existing version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "init.up.sql")

		_, err := CreateMigration(dir, "next", "")
		require.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("sorted by numeric version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000010_b.up.sql", "000010_b.down.sql",
			"000002_a.up.sql", "000002_a.down.sql",
			"README.md", ".gitkeep",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

		got, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_a", "000010_b"}, got)
	})

	t.Run("missing directory", func(t *testing.T) {
		got, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		if base, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok {
			ups[base] = true
		}
		if base, ok := strings.CutSuffix(e.Name(), ".down.sql"); ok {
			downs[base] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "every up migration needs a down migration")

	t.Run("unique indexes are tenant scoped", func(t *testing.T) {
		for base := range ups {
			body, err := migrations.FS.ReadFile(base + ".up.sql")
			require.NoError(t, err)
			for _, line := range strings.Split(string(body), "\n") {
				if strings.Contains(line, "CREATE UNIQUE INDEX") {
					assert.Contains(t, line, "(tenant_id,", "in %s", base)
				}
			}
		}
	})
}
