package shortcut

import (
	"strings"

	"github.com/samber/lo"
)

// Canonical modifier tokens in binding order.
const (
	ModCmd     = "Cmd"
	ModControl = "Control"
	ModAlt     = "Alt"
	ModShift   = "Shift"
)

var modifierOrder = []string{ModCmd, ModControl, ModAlt, ModShift}

var modifierAliases = map[string]string{
	"cmd":     ModCmd,
	"command": ModCmd,
	"meta":    ModCmd,
	"super":   ModCmd,
	"ctrl":    ModControl,
	"control": ModControl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
}

var specialKeys = map[string]string{
	" ":          "Space",
	"space":      "Space",
	"escape":     "Esc",
	"enter":      "Enter",
	"tab":        "Tab",
	"backspace":  "Backspace",
	"delete":     "Delete",
	"arrowup":    "Up",
	"arrowdown":  "Down",
	"arrowleft":  "Left",
	"arrowright": "Right",
}

// Normalize builds the canonical binding for a key press. It reports false when
// no terminal key was pressed.
func Normalize(modifiers []string, rawKey string) (string, bool) {
	if rawKey == "" || IsModifierKey(rawKey) {
		return "", false
	}

	present := lo.Uniq(lo.FilterMap(modifiers, func(name string, _ int) (string, bool) {
		canonical, ok := modifierAliases[strings.ToLower(strings.TrimSpace(name))]
		return canonical, ok
	}))
	ordered := lo.Filter(modifierOrder, func(name string, _ int) bool {
		return lo.Contains(present, name)
	})

	key := rawKey
	if mapped, ok := specialKeys[strings.ToLower(rawKey)]; ok {
		key = mapped
	}
	if len([]rune(key)) == 1 {
		key = strings.ToUpper(key)
	}

	return strings.Join(append(ordered, key), "+"), true
}

// IsModifierKey reports whether the key name is a bare modifier.
func IsModifierKey(key string) bool {
	_, ok := modifierAliases[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Split breaks a canonical binding into modifiers and the terminal key.
func Split(binding string) ([]string, string, bool) {
	binding = strings.TrimSpace(binding)
	if binding == "" {
		return nil, "", false
	}
	parts := strings.Split(binding, "+")
	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return nil, "", false
	}
	mods := lo.Map(parts[:len(parts)-1], func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return mods, key, true
}
