package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hk "golang.design/x/hotkey"

	"aitotype/internal/shortcut"
)

func TestParseCanonicalBindings(t *testing.T) {
	t.Parallel()

	binding, err := Parse("Control+Shift+Space")
	require.NoError(t, err)
	assert.Equal(t, hk.KeySpace, binding.Key)
	assert.Equal(t, []hk.Modifier{platformModifiers[shortcut.ModControl], platformModifiers[shortcut.ModShift]}, binding.Mods)

	binding, err = Parse("Alt+Space")
	require.NoError(t, err)
	assert.Equal(t, []hk.Modifier{platformModifiers[shortcut.ModAlt]}, binding.Mods)

	binding, err = Parse("Cmd+K")
	require.NoError(t, err)
	assert.Equal(t, hk.KeyK, binding.Key)
	assert.Equal(t, []hk.Modifier{platformModifiers[shortcut.ModCmd]}, binding.Mods)
}

func TestParseAcceptsAliasesAndKeys(t *testing.T) {
	t.Parallel()

	cases := map[string]hk.Key{
		"Ctrl+a":       hk.KeyA,
		"Ctrl+7":       hk.Key7,
		"Ctrl+F5":      hk.KeyF5,
		"Ctrl+Esc":     hk.KeyEscape,
		"Ctrl+Enter":   hk.KeyReturn,
		"Option+Left":  hk.KeyLeft,
		"Meta+Tab":     hk.KeyTab,
		"Shift+Delete": hk.KeyDelete,
	}
	for accel, want := range cases {
		binding, err := Parse(accel)
		require.NoError(t, err, accel)
		assert.Equal(t, want, binding.Key, accel)
		assert.Len(t, binding.Mods, 1, accel)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	for _, accel := range []string{"", "   ", "Control+", "Hyper+Space", "Control+PageUp", "Control+é"} {
		_, err := Parse(accel)
		assert.Error(t, err, accel)
	}
}

func TestParseDeduplicatesModifiers(t *testing.T) {
	t.Parallel()

	binding, err := Parse("Ctrl+Control+X")
	require.NoError(t, err)
	assert.Len(t, binding.Mods, 1)
}
