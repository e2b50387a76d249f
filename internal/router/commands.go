package router

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
)

// Command names accepted on /v1/commands/{name}.
const (
	CommandOpenSwitcher = "open_switcher"
	CommandSelectPrev   = "select_prev"
	CommandCommit       = "commit"
	CommandRelease      = "release"
)

var startCommand = func(ctx context.Context, cmdline string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.Error(fmt.Errorf("router: open command: %w", err))
		}
	}()
	return nil
}

// Commands turns shortcut presses into pushes or an overlay launch.
type Commands struct {
	hub         *Hub
	openCommand string
}

func NewCommands(hub *Hub, openCommand string) *Commands {
	return &Commands{hub: hub, openCommand: strings.TrimSpace(openCommand)}
}

// Run executes the named command and reports what it did.
func (c *Commands) Run(ctx context.Context, name string) (string, error) {
	var action string
	switch name {
	case CommandOpenSwitcher:
		if c.hub.Publish(TypeSelectNext) {
			action = "advance"
			break
		}
		if c.openCommand == "" {
			return "", fmt.Errorf("router: no overlay connected and no open command configured")
		}
		// The launched overlay outlives this request.
		if err := startCommand(context.WithoutCancel(ctx), c.openCommand); err != nil {
			return "", fmt.Errorf("router: open overlay: %w", err)
		}
		action = "open"
	case CommandSelectPrev:
		if !c.hub.Publish(TypeSelectPrev) {
			return "", fmt.Errorf("router: no overlay connected")
		}
		action = "retreat"
	case CommandCommit:
		if !c.hub.Publish(TypeCommit) {
			return "", fmt.Errorf("router: no overlay connected")
		}
		action = "commit"
	default:
		return "", fmt.Errorf("router: unknown command %q", name)
	}
	events.Router.Command(name, action)
	return action, nil
}

// Release forwards a key release from the host's keyboard hook to the
// overlay, which commits once the shortcut's keys are all up.
func (c *Commands) Release(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("router: release needs a key")
	}
	if !c.hub.PublishPayload(TypeKeyRelease, KeyRelease{Key: key}) {
		return "", fmt.Errorf("router: no overlay connected")
	}
	events.Router.Command(CommandRelease, "release")
	return "release", nil
}
