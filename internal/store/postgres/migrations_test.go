package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	t.Run("embedded migrations", func(t *testing.T) {
		migrations, err := loadMigrations(migrationsFS)
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		require.Equal(t, 1, migrations[0].version)
		require.Contains(t, migrations[0].content, "CREATE TABLE IF NOT EXISTS leads")
	})

	t.Run("sorted by version and skips invalid names", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/10_later.sql":  {Data: []byte("SELECT 10")},
			"migrations/2_second.sql":  {Data: []byte("SELECT 2")},
			"migrations/x_invalid.sql": {Data: []byte("SELECT 0")},
			"migrations/noversion.sql": {Data: []byte("SELECT 0")},
			"migrations/README.md":     {Data: []byte("docs")},
			"migrations/1_initial.sql": {Data: []byte("SELECT 1")},
		}

		migrations, err := loadMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, migrations, 3)
		require.Equal(t, []int{1, 2, 10}, []int{migrations[0].version, migrations[1].version, migrations[2].version})
	})

	t.Run("duplicate versions are rejected", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/1_a.sql": {Data: []byte("SELECT 1")},
			"migrations/1_b.sql": {Data: []byte("SELECT 1")},
		}

		_, err := loadMigrations(fsys)
		require.ErrorContains(t, err, "duplicate migration version 1")
	})
}
