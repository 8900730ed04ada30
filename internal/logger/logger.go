// Package logger prints labelled, colorized status lines for the
// crashsym commands.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Label prefixes every status line.
const Label = "crashlytics:"

// Logger writes single-line notifications at info, warning and success
// level. Debug lines are only written when debug output is enabled.
// Colors follow fatih/color's terminal detection and NO_COLOR.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool

	bullet  *color.Color
	warn    *color.Color
	success *color.Color
	dbg     *color.Color
}

// New creates a Logger writing to w.
func New(w io.Writer, debug bool) *Logger {
	return &Logger{
		out:     w,
		debug:   debug,
		bullet:  color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		success: color.New(color.FgGreen, color.Bold),
		dbg:     color.New(color.FgHiBlack),
	}
}

// NewPlain creates a Logger that never emits color escapes, for output
// that is not a terminal (MCP results, JSON mode).
func NewPlain(w io.Writer, debug bool) *Logger {
	l := New(w, debug)
	for _, c := range []*color.Color{l.bullet, l.warn, l.success, l.dbg} {
		c.DisableColor()
	}
	return l
}

// Bullet logs an informational line.
func (l *Logger) Bullet(format string, args ...any) {
	l.print(l.bullet, "i ", format, args...)
}

// Warn logs a warning. Multi-line messages are kept intact after the prefix.
func (l *Logger) Warn(format string, args ...any) {
	l.print(l.warn, "! ", format, args...)
}

// Success logs a success line.
func (l *Logger) Success(format string, args ...any) {
	l.print(l.success, "+ ", format, args...)
}

// Debug logs a line only when debug output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	l.print(l.dbg, "[debug] ", format, args...)
}

func (l *Logger) print(c *color.Color, marker, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	c.Fprint(l.out, marker+" "+Label)
	fmt.Fprintf(l.out, " %s\n", msg)
}
