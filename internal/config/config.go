package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/app"
	"github.com/atomicstack/tab-popup-switcher/internal/browser"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPrefix     = "TAB_SWITCHER_"
	envConfigFile = envPrefix + "CONFIG"

	DefaultAddr         = "127.0.0.1:8765"
	DefaultShortcut     = "Alt+Q"
	DefaultPollInterval = 500 * time.Millisecond
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values come
// from flags, then TAB_SWITCHER_* variables, then the YAML file named by
// -config, then built-in defaults.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	path := configPath(args, env)
	file, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}
	src := source{env: env, file: file}

	fs := flag.NewFlagSet("tab-popup-switcher", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("config", path, "path to a YAML configuration file")
	mode := fs.String("mode", src.str("mode", string(app.ModeOverlay)), "overlay or serve")
	addr := fs.String("addr", src.str("addr", DefaultAddr), "coordinator listen/dial address")
	browserURL := fs.String("browser-url", src.str("browser-url", ""), "DevTools URL of a running Chrome (empty launches one)")
	headless := fs.Bool("headless", src.boolean("headless", false), "launch Chrome headless")
	storePath := fs.String("store", src.str("store", defaultStorePath()), "snapshot database path or :memory:")
	resetStore := fs.Bool("reset-store", src.boolean("reset-store", false), "clear stored snapshots on start")
	captureQuality := fs.Int("capture-quality", src.integer("capture-quality", 80), "JPEG quality of raw captures")
	thumbWidth := fs.Int("thumb-width", src.integer("thumb-width", 300), "thumbnail width in pixels")
	thumbQuality := fs.Int("thumb-quality", src.integer("thumb-quality", 70), "JPEG quality of stored thumbnails")
	maxRetries := fs.Int("max-retries", src.integer("max-retries", 3), "capture retries while tabs are busy")
	retryDelay := fs.Duration("retry-delay", src.duration("retry-delay", 200*time.Millisecond), "delay between capture retries")
	recencyCap := fs.Int("recency-cap", src.integer("recency-cap", 10), "snapshots kept in the store")
	candidateLimit := fs.Int("candidate-limit", src.integer("candidate-limit", 10), "candidates offered to the switcher")
	includeUncaptured := fs.Bool("include-uncaptured", src.boolean("include-uncaptured", true), "list live tabs that have no snapshot yet")
	monotonic := fs.Bool("monotonic-writes", src.boolean("monotonic-writes", false), "ignore snapshots older than the stored one")
	pollInterval := fs.Duration("poll-interval", src.duration("poll-interval", DefaultPollInterval), "tab watcher poll interval")
	shortcut := fs.String("shortcut", src.str("shortcut", DefaultShortcut), "shortcut bound to open_switcher")
	platform := fs.String("hotkey-platform", src.str("hotkey-platform", ""), "platform whose hotkey rules apply (mac, windows, linux)")
	dropFinal := fs.String("hotkey-drop-final", src.str("hotkey-drop-final", ""), "override dropping the shortcut's final key (true/false)")
	filterMode := fs.String("filter-mode", src.str("filter-mode", string(switcher.FilterSubstring)), "substring or fuzzy")
	openCommand := fs.String("open-command", src.str("open-command", ""), "shell command that opens an overlay")
	width := fs.Int("width", src.integer("width", 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", src.integer("height", 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", src.boolean("footer", false), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", src.boolean("trace", false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", src.str("log-file", ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rules := switcher.RulesFor(*platform)
	if v := strings.TrimSpace(*dropFinal); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("hotkey-drop-final must be true or false (got %q)", v)
		}
		rules.DropFinalKey = parsed
	}

	cfg := Config{
		App: app.Config{
			Mode:              app.Mode(strings.ToLower(strings.TrimSpace(*mode))),
			Addr:              *addr,
			Browser:           browser.Config{RemoteURL: *browserURL, Headless: *headless},
			StorePath:         *storePath,
			ResetStore:        *resetStore,
			CaptureQuality:    *captureQuality,
			ThumbWidth:        *thumbWidth,
			ThumbQuality:      *thumbQuality,
			MaxRetries:        *maxRetries,
			RetryDelay:        *retryDelay,
			RecencyCap:        *recencyCap,
			CandidateLimit:    *candidateLimit,
			IncludeUncaptured: *includeUncaptured,
			MonotonicWrites:   *monotonic,
			PollInterval:      *pollInterval,
			Shortcut:          *shortcut,
			KeyRules:          rules,
			FilterMode:        switcher.FilterMode(strings.ToLower(strings.TrimSpace(*filterMode))),
			OpenCommand:       *openCommand,
			Width:             *width,
			Height:            *height,
			ShowFooter:        *footer,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: make(map[string]string),
		Args:  append([]string(nil), args...),
	}
	fs.VisitAll(func(f *flag.Flag) {
		cfg.Flags[f.Name] = f.Value.String()
	})

	return cfg, nil
}

// configPath finds -config before the full flag set is built, since the
// file supplies that set's defaults.
func configPath(args []string, env map[string]string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if strings.HasPrefix(name, "config=") {
			return strings.TrimPrefix(name, "config=")
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return env[envConfigFile]
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ":memory:"
	}
	return filepath.Join(dir, "tab-popup-switcher", "snapshots.db")
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// envName maps a flag name to its environment variable.
func envName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

type source struct {
	env  map[string]string
	file map[string]string
}

func (s source) lookup(key string) (string, bool) {
	if v, ok := s.env[envName(key)]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	if v, ok := s.file[key]; ok {
		return v, true
	}
	return "", false
}

func (s source) str(key, fallback string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return fallback
}

func (s source) integer(key string, fallback int) int {
	v, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) boolean(key string, fallback bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) duration(key string, fallback time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects values the application cannot run with.
func Validate(cfg Config) error {
	a := cfg.App
	switch a.Mode {
	case app.ModeOverlay, app.ModeServe:
	default:
		return fmt.Errorf("mode must be overlay or serve (got %q)", a.Mode)
	}
	switch a.FilterMode {
	case switcher.FilterSubstring, switcher.FilterFuzzy:
	default:
		return fmt.Errorf("filter-mode must be substring or fuzzy (got %q)", a.FilterMode)
	}
	if strings.TrimSpace(a.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	for name, q := range map[string]int{"capture-quality": a.CaptureQuality, "thumb-quality": a.ThumbQuality} {
		if q < 1 || q > 100 {
			return fmt.Errorf("%s must be between 1 and 100 (got %d)", name, q)
		}
	}
	if a.ThumbWidth <= 0 {
		return fmt.Errorf("thumb-width must be > 0 (got %d)", a.ThumbWidth)
	}
	if a.RecencyCap <= 0 {
		return fmt.Errorf("recency-cap must be > 0 (got %d)", a.RecencyCap)
	}
	if a.CandidateLimit < 0 {
		return fmt.Errorf("candidate-limit must be >= 0 (got %d)", a.CandidateLimit)
	}
	if a.MaxRetries < 0 {
		return fmt.Errorf("max-retries must be >= 0 (got %d)", a.MaxRetries)
	}
	if a.RetryDelay < 0 {
		return fmt.Errorf("retry-delay must be >= 0 (got %s)", a.RetryDelay)
	}
	if a.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be > 0 (got %s)", a.PollInterval)
	}
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	return nil
}
