package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "chisel.db")
	require.NoError(t, Initialize(dbPath))

	store, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestInitializeRefusesExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chisel.db")
	require.NoError(t, Initialize(dbPath))
	require.Error(t, Initialize(dbPath))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
}
