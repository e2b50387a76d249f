package command

import (
	"context"

	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Request encapsulates an action invocation.
type Request struct {
	ID    string
	Label string
	Run   func(context.Context) error
}

// Result is delivered back to the model once a request finishes.
type Result struct {
	ID  string
	Err error
}

// Bus coordinates the execution of overlay actions.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps an action into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(ctx context.Context, req Request) tea.Cmd {
	events.Action.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Run == nil {
			events.Action.Result(req.ID, req.Label, nil)
			return Result{ID: req.ID}
		}
		err := req.Run(ctx)
		events.Action.Result(req.ID, req.Label, err)
		return Result{ID: req.ID, Err: err}
	}
}
