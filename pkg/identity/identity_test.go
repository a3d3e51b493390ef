package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_GeneratesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user-id")

	first, err := NewFileStore(path).OwnerID()
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFileStore(path).OwnerID()
	require.NoError(t, err)
	assert.Equal(t, first, second, "a new store reads the persisted id")
}

func TestFileStore_ReusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user-id")
	require.NoError(t, os.WriteFile(path, []byte("  existing-id \n"), 0o600))

	id, err := NewFileStore(path).OwnerID()
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
}

func TestFileStore_RegeneratesBlankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user-id")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	id, err := NewFileStore(path).OwnerID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestStatic(t *testing.T) {
	id, err := Static(" abc ").OwnerID()
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = Static("").OwnerID()
	assert.ErrorIs(t, err, ErrEmptyID)
}
