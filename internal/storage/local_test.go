package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocalStore(dir, "http://localhost:8080/api/files/")
	require.NoError(t, err)

	info, err := store.Save(context.Background(), "exports/assessments-2026-08-30.csv",
		strings.NewReader("reference,company_name\nTWN-ABC12345,Falcon\n"), "text/csv")
	require.NoError(t, err)

	assert.Equal(t, "assessments-2026-08-30.csv", info.FileName)
	assert.Equal(t, "text/csv", info.FileType)
	assert.Equal(t, "http://localhost:8080/api/files/exports/assessments-2026-08-30.csv", info.URL)
	assert.Greater(t, info.FileSize, int64(0))

	data, err := os.ReadFile(filepath.Join(dir, "exports", "assessments-2026-08-30.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "TWN-ABC12345")

	require.NoError(t, store.Delete(context.Background(), "exports/assessments-2026-08-30.csv"))
	_, err = os.Stat(filepath.Join(dir, "exports", "assessments-2026-08-30.csv"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing file is not an error
	assert.NoError(t, store.Delete(context.Background(), "exports/missing.csv"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocalStore(dir, "http://localhost:8080/api/files")
	require.NoError(t, err)

	// Path cleaning keeps the file inside the storage dir
	info, err := store.Save(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", info.FileName)

	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}
