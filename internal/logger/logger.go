package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	globalLogger *slog.Logger
	isTerminal   = term.IsTerminal
)

// Paragraph text, translations, page markup and image payloads are user
// documents. Only their size is logged.
var (
	documentKeys = map[string]bool{
		"text": true,
		"body": true,
	}
	documentKeyParts = []string{
		"content",
		"translation",
		"html",
		"base64",
	}
)

var (
	// Inline images and bare base64 runs long enough to be an image payload.
	dataURLPattern = regexp.MustCompile(`^data:[a-z]+/[a-z0-9.+-]+;base64,`)
	base64Pattern  = regexp.MustCompile(`^[A-Za-z0-9+/]{256,}={0,2}$`)
)

// RedactAttr is a slog.ReplaceAttr hook. Document fields become a length
// marker and backend URLs lose their userinfo.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if isDocumentKey(a.Key) {
		return slog.String(a.Key, redactedSize(a.Value))
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	switch {
	case dataURLPattern.MatchString(s), base64Pattern.MatchString(s):
		return slog.String(a.Key, redactedSize(a.Value))
	case strings.Contains(s, "://") && strings.Contains(s, "@"):
		if u, err := url.Parse(s); err == nil && u.User != nil {
			u.User = nil
			return slog.String(a.Key, u.String())
		}
	}
	return a
}

func isDocumentKey(key string) bool {
	key = strings.ToLower(key)
	if documentKeys[key] {
		return true
	}
	for _, k := range documentKeyParts {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

func redactedSize(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return fmt.Sprintf("[REDACTED %d bytes]", len(v.String()))
	}
	return "[REDACTED]"
}

func init() {
	Init(LevelInfo, nil)
}

// Init installs the global logger. Human-readable lines go to stderr; when
// logFile is set every record is also written there as JSON, and stderr
// stays uncoloured so both outputs read the same.
func Init(level slog.Level, logFile io.Writer) {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: RedactAttr}

	color := logFile == nil && isTerminal(int(os.Stderr.Fd()))
	var handler slog.Handler = NewPrettyHandler(os.Stderr, opts, color)
	if logFile != nil {
		handler = teeHandler{handler, slog.NewJSONHandler(logFile, opts)}
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// Component returns a logger tagged with the emitting component.
func Component(name string) *slog.Logger {
	return globalLogger.With("component", name)
}

func Debug(msg string, args ...any) { globalLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { globalLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { globalLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { globalLogger.Error(msg, args...) }

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[90m",
	slog.LevelInfo:  "\033[32m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

const (
	colorReset = "\033[0m"
	colorKey   = "\033[90m"
)

// PrettyHandler writes one "15:04:05 LEVEL message key=value" line per
// record. Lines from concurrent goroutines never interleave.
type PrettyHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	prefix string // group path, "a.b."
	groups []string
	attrs  []byte // pre-rendered WithAttrs output
	color  bool
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{mu: &sync.Mutex{}, w: w, opts: opts, color: color}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString(r.Time.Format("15:04:05"))
	buf.WriteByte(' ')
	if h.color {
		buf.WriteString(levelColors[r.Level])
	}
	fmt.Fprintf(&buf, "%-5s", r.Level.String())
	if h.color {
		buf.WriteString(colorReset)
	}
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) appendAttr(buf *bytes.Buffer, a slog.Attr) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(h.groups, a)
	}
	if a.Key == "" {
		return
	}
	if h.color {
		fmt.Fprintf(buf, " %s%s%s=%s%v", colorKey, h.prefix, a.Key, colorReset, a.Value)
		return
	}
	fmt.Fprintf(buf, " %s%s=%v", h.prefix, a.Key, a.Value)
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	var buf bytes.Buffer
	buf.Write(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&buf, a)
	}
	h2.attrs = buf.Bytes()
	return &h2
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	h2.prefix = h.prefix + name + "."
	return &h2
}

// teeHandler fans records out to every handler.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
