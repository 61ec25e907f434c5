package hotkey

import (
	hk "golang.design/x/hotkey"

	"aitotype/internal/shortcut"
)

var platformModifiers = map[string]hk.Modifier{
	shortcut.ModCmd:     hk.ModWin,
	shortcut.ModControl: hk.ModCtrl,
	shortcut.ModAlt:     hk.ModAlt,
	shortcut.ModShift:   hk.ModShift,
}
