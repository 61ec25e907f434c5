package hotkey

import (
	hk "golang.design/x/hotkey"

	"aitotype/internal/shortcut"
)

// X11 maps Alt to Mod1 and Super to Mod4.
var platformModifiers = map[string]hk.Modifier{
	shortcut.ModCmd:     hk.Mod4,
	shortcut.ModControl: hk.ModCtrl,
	shortcut.ModAlt:     hk.Mod1,
	shortcut.ModShift:   hk.ModShift,
}
