// Package log writes the driver's user-facing messages to stderr and, when
// verbose output is enabled, a structured debug trace.
package log

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey struct{}

// Logger prefixes every message with the program name, the way git expects
// merge drivers to report on stderr.
type Logger struct {
	name   string
	writer io.Writer
	debug  *zap.SugaredLogger

	infoStyle lipgloss.Style
	warnStyle lipgloss.Style
	errStyle  lipgloss.Style
}

// New returns a Logger writing to w. Styling is dropped automatically when w
// is not a terminal.
func New(name string, w io.Writer, verbose bool) *Logger {
	r := lipgloss.NewRenderer(w)

	core := zapcore.NewNopCore()
	if verbose {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.TimeKey = ""
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	}

	return &Logger{
		name:      name,
		writer:    w,
		debug:     zap.New(core).Sugar().Named(name),
		infoStyle: r.NewStyle(),
		warnStyle: r.NewStyle().Foreground(lipgloss.Color("3")),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Nop discards everything.
func Nop() *Logger {
	return New("", io.Discard, false)
}

// With returns a context carrying l.
func With(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// From returns the Logger stored in ctx, or a non-verbose stderr logger.
func From(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return New("git-merge-structure-sql", os.Stderr, false)
}

func (l *Logger) Infof(format string, args ...any) {
	l.print(l.infoStyle, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.print(l.warnStyle, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.print(l.errStyle, format, args...)
}

// Debugw records a structured debug event; it is a no-op unless verbose.
func (l *Logger) Debugw(msg string, keysAndValues ...any) {
	l.debug.Debugw(msg, keysAndValues...)
}

func (l *Logger) print(style lipgloss.Style, format string, args ...any) {
	msg := style.Render(fmt.Sprintf(format, args...))
	if l.name == "" {
		fmt.Fprintln(l.writer, msg)
		return
	}
	fmt.Fprintf(l.writer, "%s: %s\n", l.name, msg)
}

// Sync flushes the debug trace.
func (l *Logger) Sync() {
	_ = l.debug.Sync()
}
