package browser

import "strings"

// OpenSwitcherCommand is the command whose shortcut drives the switcher.
const OpenSwitcherCommand = "open_switcher"

// Shortcuts answers ShortcutFor from configuration. DevTools has no view of
// extension command bindings, so the shortcut is configured instead.
type Shortcuts map[string]string

func (s Shortcuts) ShortcutFor(command string) string {
	return strings.TrimSpace(s[command])
}
