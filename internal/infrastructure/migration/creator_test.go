package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("writes an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add payment intents table", "payment intent tracking")
		require.NoError(t, err)

		assert.Len(t, mf.Version, 14)
		assert.Contains(t, mf.UpPath, "_add_payment_intents_table.up.sql")
		assert.Contains(t, mf.DownPath, "_add_payment_intents_table.down.sql")

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "payment intent tracking")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "migrations")

		_, err := CreateMigration(dir, "create invoices", "")
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"add payment intents table", "add_payment_intents_table"},
		{"Create-Invoices!", "create_invoices"},
		{"  spaced  out  ", "spaced_out"},
		{"snapshot_v2", "snapshot_v2"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeName(tc.in), "name %q", tc.in)
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("lists each pair once in version order", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20250812100000_create_owners.up.sql",
			"20250812100000_create_owners.down.sql",
			"20250812100100_create_clients.up.sql",
			"20250812100100_create_clients.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--\n"), 0644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20250812100000_create_owners",
			"20250812100100_create_clients",
		}, migrations)
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
