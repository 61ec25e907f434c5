package prefs

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := DefaultPath(filepath.Join(t.TempDir(), "nested"))
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStoreSetGetDelete(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)

	_, ok := store.Get("aitotype_shortcut")
	assert.False(t, ok)

	require.NoError(t, store.Set("aitotype_shortcut", "Alt+Space"))
	value, ok := store.Get("aitotype_shortcut")
	assert.True(t, ok)
	assert.Equal(t, "Alt+Space", value)

	require.NoError(t, store.Set("aitotype_shortcut", "Cmd+K"))
	value, _ = store.Get("aitotype_shortcut")
	assert.Equal(t, "Cmd+K", value)

	require.NoError(t, store.Delete("aitotype_shortcut"))
	_, ok = store.Get("aitotype_shortcut")
	assert.False(t, ok)

	require.NoError(t, store.Delete("never-set"))
}

func TestStoreEmptyValueIsStored(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	require.NoError(t, store.Set("aitotype_autocopy", ""))

	value, ok := store.Get("aitotype_autocopy")
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	store, path := openTestStore(t)
	require.NoError(t, store.Set("aitotype_api_key_openrouter", "sk-or-1"))
	require.NoError(t, store.Set("aitotype_autocopy", "false"))
	require.NoError(t, store.Close())

	reopened, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Get("aitotype_api_key_openrouter")
	assert.True(t, ok)
	assert.Equal(t, "sk-or-1", value)

	keys, err := reopened.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"aitotype_api_key_openrouter", "aitotype_autocopy"}, keys)
}
