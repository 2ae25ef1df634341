// Package logger builds the application's slog logger: a colourised
// console handler for development and JSON for production.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string // json or pretty; derived from Environment when empty
	Environment string
	Level       slog.Level
	AddSource   bool
	NoColor     bool // pretty output without ANSI escapes
}

// New creates a logger for the given configuration.
func New(cfg Config) *slog.Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = FormatPretty
		if cfg.Environment == "production" {
			cfg.Format = FormatJSON
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}

	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(cfg.Writer, opts))
	}

	h := NewPrettyHandler(cfg.Writer, opts)
	if cfg.NoColor {
		h.style = plain
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// style holds the escape sequences for one rendering mode.
type style struct {
	reset, dim, bold, attrs, failure string
	levels                           map[slog.Level]string
}

var (
	ansi = style{
		reset:   "\033[0m",
		dim:     "\033[2m",
		bold:    "\033[1m",
		attrs:   "\033[36m",
		failure: "\033[31m",
		levels: map[slog.Level]string{
			slog.LevelDebug: "\033[35m",
			slog.LevelInfo:  "\033[32m",
			slog.LevelWarn:  "\033[33m",
			slog.LevelError: "\033[31m",
		},
	}
	plain = style{}
)

func (s style) paint(code, text string) string {
	if code == "" {
		return text
	}
	return code + text + s.reset
}

var levelLabels = map[slog.Level]string{
	slog.LevelDebug: "DBG",
	slog.LevelInfo:  "INF",
	slog.LevelWarn:  "WRN",
	slog.LevelError: "ERR",
}

// PrettyHandler writes one line per record for a terminal:
//
//	15:04:05 INF campaign exported campaign=eid recipients=120
//
// Group attributes and WithGroup both flatten into dotted keys. A value
// under the key "error" is shown in red.
type PrettyHandler struct {
	opts   *slog.HandlerOptions
	style  style
	mu     *sync.Mutex
	writer io.Writer
	prefix string
	attrs  []slog.Attr
}

// NewPrettyHandler creates a coloured handler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, style: ansi, mu: &sync.Mutex{}, writer: w}
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

// Handle implements slog.Handler.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{
		h.style.paint(h.style.dim, r.Time.Format("15:04:05")),
		h.level(r.Level),
	}
	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			parts = append(parts, h.style.paint(h.style.dim, filepath.Base(src.File)+":"+strconv.Itoa(src.Line)))
		}
	}
	parts = append(parts, h.style.paint(h.style.bold, r.Message))

	fields := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = h.appendField(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendField(fields, h.prefix, a)
		return true
	})
	parts = append(parts, fields...)

	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, line)
	return err
}

func (h *PrettyHandler) level(l slog.Level) string {
	label, ok := levelLabels[l]
	if !ok {
		label = l.String()
	}
	return h.style.paint(h.style.levels[l], label)
}

// appendField renders a and, for groups, every member under a dotted key.
func (h *PrettyHandler) appendField(fields []string, prefix string, a slog.Attr) []string {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, member := range v.Group() {
			fields = h.appendField(fields, prefix, member)
		}
		return fields
	}
	if a.Equal(slog.Attr{}) {
		return fields
	}

	code := h.style.attrs
	if a.Key == "error" {
		code = h.style.failure
	}
	return append(fields, h.style.paint(code, prefix+a.Key+"="+formatValue(v)))
}

// WithAttrs implements slog.Handler. Keys are qualified by the current group.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
