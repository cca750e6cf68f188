package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "mirrorctl", "tokens.json")}

	_, ok, err := store.Credential()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store("gho_abc123"))
	token, ok, err := store.Credential()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "gho_abc123", token)

	require.NoError(t, store.Clear())
	_, ok, err = store.Credential()
	require.NoError(t, err)
	assert.False(t, ok)
	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileStoreRejectsEmptyToken(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "tokens.json")}
	require.Error(t, store.Store(""))
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := &KeyringStore{Service: "mirrorctl-test", User: "github-token"}

	_, ok, err := store.Credential()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store("gho_secret"))
	token, ok, err := store.Credential()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "gho_secret", token)

	require.NoError(t, store.Clear())
	_, ok, err = store.Credential()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("", "/tmp/tokens.json")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = NewStore(StorageKeychain, "")
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, store)

	_, err = NewStore("vault", "")
	require.Error(t, err)
}
