package consent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "consent.yaml"))

	granted, err := store.IsGranted("flow-guardian", permissions.NetworkInternet)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestFileStoreRecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luminor", "consent.yaml")
	store := NewFileStore(path)

	require.NoError(t, store.Record("flow-guardian", permissions.NetworkInternet, true))
	require.NoError(t, store.Record("flow-guardian", permissions.ProcessSpawn, false))

	granted, err := store.IsGranted("flow-guardian", permissions.NetworkInternet)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = store.IsGranted("flow-guardian", permissions.ProcessSpawn)
	require.NoError(t, err)
	assert.False(t, granted)

	// Grants do not leak across plugins.
	granted, err = store.IsGranted("other-plugin", permissions.NetworkInternet)
	require.NoError(t, err)
	assert.False(t, granted)

	// A fresh store reading the same file sees the persisted decisions.
	reloaded := NewFileStore(path)
	granted, err = reloaded.IsGranted("flow-guardian", permissions.NetworkInternet)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestFileStoreRecordReplaces(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "consent.yaml"))

	require.NoError(t, store.Record("flow-guardian", permissions.NetworkInternet, true))
	require.NoError(t, store.Record("flow-guardian", permissions.NetworkInternet, false))

	granted, err := store.IsGranted("flow-guardian", permissions.NetworkInternet)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grants: [not a mapping"), 0o600))

	store := NewFileStore(path)
	_, err := store.IsGranted("flow-guardian", permissions.NetworkInternet)
	require.Error(t, err)
}
