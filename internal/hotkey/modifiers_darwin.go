package hotkey

import (
	hk "golang.design/x/hotkey"

	"aitotype/internal/shortcut"
)

var platformModifiers = map[string]hk.Modifier{
	shortcut.ModCmd:     hk.ModCmd,
	shortcut.ModControl: hk.ModCtrl,
	shortcut.ModAlt:     hk.ModOption,
	shortcut.ModShift:   hk.ModShift,
}
