package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log level, handler format and the named observer the
// assistant reports through.
type Config struct {
	Level    string `json:"level,omitempty" toml:"level,omitempty"`       // debug, info, warn, error
	Format   string `json:"format,omitempty" toml:"format,omitempty"`     // text or json
	Observer string `json:"observer,omitempty" toml:"observer,omitempty"` // registry names, comma separated: slog, noop
}

// DefaultConfig logs warnings and above as text through the slog observer.
// The REPL shares the terminal, so info-level turn events stay quiet by default.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "text", Observer: "slog"}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Level != "" {
		c.Level = source.Level
	}
	if source.Format != "" {
		c.Format = source.Format
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// Options configures NewLogger.
type Options struct {
	Level     string
	Format    string
	Writer    io.Writer
	Component string
}

// NewLogger builds a slog.Logger writing to Writer (stderr when nil).
func NewLogger(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		h = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		h = slog.NewTextHandler(writer, handlerOpts)
	}

	lg := slog.New(h)
	if c := strings.TrimSpace(opts.Component); c != "" {
		lg = lg.With("component", c)
	}
	return lg
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "verbose":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the logger described by cfg, registers a SlogObserver for it
// under "slog", and returns the observer(s) named by cfg.Observer.
func Setup(cfg Config, w io.Writer) (Observer, *slog.Logger, error) {
	logger := NewLogger(Options{Level: cfg.Level, Format: cfg.Format, Writer: w, Component: "assistant"})
	RegisterObserver("slog", NewSlogObserver(logger))

	obs, err := Resolve(cfg.Observer)
	if err != nil {
		return nil, nil, err
	}
	return obs, logger, nil
}
