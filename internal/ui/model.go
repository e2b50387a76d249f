package ui

import (
	"context"
	"reflect"

	"github.com/atomicstack/tab-popup-switcher/internal/router"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher/overlay"
	"github.com/atomicstack/tab-popup-switcher/internal/theme"
	"github.com/atomicstack/tab-popup-switcher/internal/ui/command"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	Transport  router.Transport
	Host       *overlay.Host
	FilterMode switcher.FilterMode
	KeyRules   switcher.KeyRules
	Width      int
	Height     int
	ShowFooter bool
}

// Model implements the Bubble Tea model for the tab switcher overlay.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	transport router.Transport
	host      *overlay.Host
	dispose   func()
	ctrl      *switcher.Controller
	bus       *command.Bus

	loading     bool
	activating  bool
	errMsg      string
	infoMsg     string
	shortcut    string
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	pushing     bool

	hintSeq  int
	showHint bool
	thumbs   map[thumbKey]string

	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler
}

// NewModel builds an overlay that loads its candidates over opts.Transport.
func NewModel(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	host := opts.Host
	if host == nil {
		host = &overlay.Host{}
	}
	m := &Model{
		ctx:        ctx,
		cancel:     cancel,
		transport:  opts.Transport,
		host:       host,
		ctrl:       switcher.NewController(opts.FilterMode, opts.KeyRules),
		bus:        command.New(),
		loading:    opts.Transport != nil,
		showFooter: opts.ShowFooter,
		thumbs:     make(map[thumbKey]string),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.transport != nil {
		cmds = append(cmds, loadTabDataCmd(m.ctx, m.transport))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

// Controller exposes the selection state.
func (m *Model) Controller() *switcher.Controller {
	return m.ctrl
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(KeyReleaseMsg{}):     m.handleKeyReleaseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tea.BlurMsg{}):       m.handleBlurMsg,
		reflect.TypeOf(tabDataMsg{}):        m.handleTabDataMsg,
		reflect.TypeOf(pushMsg{}):           m.handlePushMsg,
		reflect.TypeOf(pushDoneMsg{}):       m.handlePushDoneMsg,
		reflect.TypeOf(command.Result{}):    m.handleActionResultMsg,
		reflect.TypeOf(hintMsg{}):           m.handleHintMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// quit releases the overlay and ends the program.
func (m *Model) quit() tea.Cmd {
	if m.dispose != nil {
		m.dispose()
		m.dispose = nil
	}
	m.cancel()
	if m.transport != nil {
		_ = m.transport.Close()
	}
	return tea.Quit
}
