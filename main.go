package main

import (
	"fmt"
	"os"

	"github.com/atomicstack/tab-popup-switcher/internal/app"
	"github.com/atomicstack/tab-popup-switcher/internal/config"
	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	traceStartup(runtimeCfg)

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload records what the process is about to do: which mode,
// where it listens or connects, and where snapshots live.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath

	appCfg := cfg.App
	mode := appCfg.Mode
	if mode == "" {
		mode = app.ModeOverlay
	}
	browserURL := appCfg.Browser.RemoteURL
	if browserURL == "" {
		browserURL = "launch"
	}
	payload := map[string]interface{}{
		"argv":  cfg.Args,
		"flags": flags,
		"mode":  string(mode),
		"addr":  appCfg.Addr,
	}
	switch mode {
	case app.ModeServe:
		payload["store"] = appCfg.StorePath
		payload["resetStore"] = appCfg.ResetStore
		payload["browserURL"] = browserURL
		payload["headless"] = appCfg.Browser.Headless
		payload["shortcut"] = appCfg.Shortcut
		payload["openCommand"] = appCfg.OpenCommand
	case app.ModeOverlay:
		payload["terminal"] = detectTerminal()
	}
	return payload
}

type terminalInfo struct {
	Source string `json:"source,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// detectTerminal reports the size of the first standard descriptor that is a
// terminal. The overlay renders into it.
func detectTerminal() terminalInfo {
	fds := []struct {
		name string
		fd   uintptr
	}{
		{"stdout", os.Stdout.Fd()},
		{"stdin", os.Stdin.Fd()},
	}
	for _, d := range fds {
		fd := int(d.fd)
		if fd < 0 || !term.IsTerminal(fd) {
			continue
		}
		width, height, err := term.GetSize(fd)
		if err != nil {
			return terminalInfo{Source: d.name, Error: err.Error()}
		}
		return terminalInfo{Source: d.name, Width: width, Height: height}
	}
	return terminalInfo{Error: "no terminal on stdout or stdin"}
}
