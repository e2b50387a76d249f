package switcher

import (
	"runtime"
	"strings"
	"unicode/utf8"
)

// KeyRules controls how a command shortcut becomes the set of held keys
// whose release commits the selection.
type KeyRules struct {
	// DropFinalKey removes the last key of the shortcut. Some platforms
	// never deliver a release event for it.
	DropFinalKey bool
}

// RulesFor returns the rules for a platform name ("mac", "windows",
// "linux"). An empty name uses the running OS.
func RulesFor(platform string) KeyRules {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "mac", "darwin", "macos":
		return KeyRules{DropFinalKey: true}
	case "":
		if runtime.GOOS == "darwin" {
			return KeyRules{DropFinalKey: true}
		}
	}
	return KeyRules{}
}

// TriggerKeys parses a shortcut such as "Ctrl+Shift+Y" or "⌥⇧Y" into
// normalised key names.
func TriggerKeys(shortcut string, rules KeyRules) []string {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" {
		return nil
	}
	var parts []string
	if strings.Contains(shortcut, "+") {
		parts = strings.Split(shortcut, "+")
	} else {
		parts = make([]string, 0, utf8.RuneCountInString(shortcut))
		for _, r := range shortcut {
			parts = append(parts, string(r))
		}
	}
	if rules.DropFinalKey && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := NormalizeKey(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// NormalizeKey maps modifier symbols and aliases onto the names key events
// report, lower-cased.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	switch strings.ToLower(key) {
	case "⌘", "command", "cmd", "meta", "super":
		return "meta"
	case "⌥", "option", "alt":
		return "alt"
	case "⇧", "shift":
		return "shift"
	case "⌃", "ctrl", "control", "macctrl":
		return "control"
	}
	return strings.ToLower(key)
}
