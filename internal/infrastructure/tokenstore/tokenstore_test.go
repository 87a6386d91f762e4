package tokenstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertchat/expertchat/internal/infrastructure/tokenstore"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := tokenstore.New(path)

	require.NoError(t, store.SaveTokens("acc", "ref"))

	access, refresh, err := store.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "acc", access)
	assert.Equal(t, "ref", refresh)
}

func TestFileUsesStableKeysAndTightPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := tokenstore.New(path)
	require.NoError(t, store.SaveTokens("acc", "ref"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "acc", raw["authToken"])
	assert.Equal(t, "ref", raw["refreshToken"])

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	store := tokenstore.New(filepath.Join(t.TempDir(), "tokens.json"))

	access, refresh, err := store.LoadTokens()
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestLoadCorruptFileReturnsParsingError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := tokenstore.New(path).LoadTokens()
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindParsing))
}

func TestClearRemovesPairAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := tokenstore.New(path)
	require.NoError(t, store.SaveTokens("acc", "ref"))

	require.NoError(t, store.ClearTokens())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.ClearTokens(), "clearing an empty store is a no-op")
}

func TestSaveOverwritesPreviousPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := tokenstore.New(path)
	require.NoError(t, store.SaveTokens("old-acc", "old-ref"))
	require.NoError(t, store.SaveTokens("new-acc", "new-ref"))

	access, refresh, err := store.LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, "new-acc", access)
	assert.Equal(t, "new-ref", refresh)
}
