package hotkey

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	hk "golang.design/x/hotkey"

	"aitotype/internal/shortcut"
)

// Binding is a parsed shortcut ready for OS registration.
type Binding struct {
	Mods []hk.Modifier
	Key  hk.Key
}

var namedKeys = map[string]hk.Key{
	"Space":  hk.KeySpace,
	"Enter":  hk.KeyReturn,
	"Return": hk.KeyReturn,
	"Esc":    hk.KeyEscape,
	"Escape": hk.KeyEscape,
	"Tab":    hk.KeyTab,
	"Delete": hk.KeyDelete,
	"Up":     hk.KeyUp,
	"Down":   hk.KeyDown,
	"Left":   hk.KeyLeft,
	"Right":  hk.KeyRight,
	"F1":     hk.KeyF1,
	"F2":     hk.KeyF2,
	"F3":     hk.KeyF3,
	"F4":     hk.KeyF4,
	"F5":     hk.KeyF5,
	"F6":     hk.KeyF6,
	"F7":     hk.KeyF7,
	"F8":     hk.KeyF8,
	"F9":     hk.KeyF9,
	"F10":    hk.KeyF10,
	"F11":    hk.KeyF11,
	"F12":    hk.KeyF12,
}

var letterKeys = []hk.Key{
	hk.KeyA, hk.KeyB, hk.KeyC, hk.KeyD, hk.KeyE, hk.KeyF, hk.KeyG, hk.KeyH, hk.KeyI,
	hk.KeyJ, hk.KeyK, hk.KeyL, hk.KeyM, hk.KeyN, hk.KeyO, hk.KeyP, hk.KeyQ, hk.KeyR,
	hk.KeyS, hk.KeyT, hk.KeyU, hk.KeyV, hk.KeyW, hk.KeyX, hk.KeyY, hk.KeyZ,
}

var digitKeys = []hk.Key{
	hk.Key0, hk.Key1, hk.Key2, hk.Key3, hk.Key4, hk.Key5, hk.Key6, hk.Key7, hk.Key8, hk.Key9,
}

// Parse converts a canonical binding such as "Control+Shift+Space".
func Parse(accel string) (Binding, error) {
	mods, key, ok := shortcut.Split(accel)
	if !ok {
		return Binding{}, fmt.Errorf("invalid shortcut %q", accel)
	}

	var unknown []string
	parsed := lo.FilterMap(mods, func(name string, _ int) (hk.Modifier, bool) {
		mod, ok := modifierFor(name)
		if !ok {
			unknown = append(unknown, name)
		}
		return mod, ok
	})
	if len(unknown) > 0 {
		return Binding{}, fmt.Errorf("unsupported modifier %s in %q", strings.Join(unknown, ","), accel)
	}

	code, ok := keyFor(key)
	if !ok {
		return Binding{}, fmt.Errorf("unsupported key %q in %q", key, accel)
	}
	return Binding{Mods: lo.Uniq(parsed), Key: code}, nil
}

func keyFor(name string) (hk.Key, bool) {
	if code, ok := namedKeys[name]; ok {
		return code, true
	}
	if len(name) != 1 {
		return 0, false
	}
	c := strings.ToUpper(name)[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return letterKeys[c-'A'], true
	case c >= '0' && c <= '9':
		return digitKeys[c-'0'], true
	}
	return 0, false
}

func modifierFor(name string) (hk.Modifier, bool) {
	mod, ok := platformModifiers[canonicalModifier(name)]
	return mod, ok
}

func canonicalModifier(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cmd", "command", "meta", "super":
		return shortcut.ModCmd
	case "ctrl", "control":
		return shortcut.ModControl
	case "alt", "option":
		return shortcut.ModAlt
	case "shift":
		return shortcut.ModShift
	}
	return name
}
