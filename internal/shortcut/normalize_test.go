package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		modifiers []string
		key       string
		want      string
		ok        bool
	}{
		{name: "modifier order", modifiers: []string{"Shift", "Control"}, key: "a", want: "Control+Shift+A", ok: true},
		{name: "ctrl alias", modifiers: []string{"Ctrl"}, key: "k", want: "Control+K", ok: true},
		{name: "command first", modifiers: []string{"Shift", "Alt", "Command", "Ctrl"}, key: "x", want: "Cmd+Control+Alt+Shift+X", ok: true},
		{name: "space", modifiers: nil, key: " ", want: "Space", ok: true},
		{name: "escape", modifiers: []string{"Alt"}, key: "Escape", want: "Alt+Esc", ok: true},
		{name: "arrow", modifiers: []string{"Cmd"}, key: "ArrowLeft", want: "Cmd+Left", ok: true},
		{name: "enter", modifiers: nil, key: "Enter", want: "Enter", ok: true},
		{name: "multi-char passthrough", modifiers: []string{"Alt"}, key: "F5", want: "Alt+F5", ok: true},
		{name: "digit", modifiers: []string{"Alt"}, key: "1", want: "Alt+1", ok: true},
		{name: "duplicate modifiers", modifiers: []string{"Ctrl", "Control"}, key: "b", want: "Control+B", ok: true},
		{name: "unknown modifier dropped", modifiers: []string{"Hyper"}, key: "b", want: "B", ok: true},
		{name: "pure modifier", modifiers: []string{"Shift"}, key: "Shift", ok: false},
		{name: "meta alone", modifiers: []string{"Command"}, key: "Meta", ok: false},
		{name: "no key", modifiers: []string{"Alt"}, key: "", ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Normalize(tc.modifiers, tc.key)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	mods, key, ok := Split("Control+Shift+Space")
	assert.True(t, ok)
	assert.Equal(t, []string{"Control", "Shift"}, mods)
	assert.Equal(t, "Space", key)

	mods, key, ok = Split("F9")
	assert.True(t, ok)
	assert.Empty(t, mods)
	assert.Equal(t, "F9", key)

	_, _, ok = Split("")
	assert.False(t, ok)
	_, _, ok = Split("Alt+")
	assert.False(t, ok)
}
