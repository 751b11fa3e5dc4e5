package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Style represents a log message style.
type Style string

const (
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleError   Style = "error"
	StyleDim     Style = "dim"
	StylePhase   Style = "phase"
)

// Tag is printed in front of every log line.
const Tag = "phab"

// Logger writes styled, tagged lines for the operator. It is safe for
// concurrent use.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLogger creates a logger that writes to stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr)
}

// NewLoggerTo creates a logger that writes to w.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{out: w}
}

func styleColor(style Style) string {
	switch style {
	case StyleSuccess:
		return Green
	case StyleWarning:
		return Yellow
	case StyleError:
		return Red
	case StyleDim:
		return Dim
	case StylePhase:
		return Magenta + Bold
	default:
		return Cyan
	}
}

// Log prints a styled log message.
func (l *Logger) Log(msg string, style Style) {
	c := styleColor(style)
	tag := fmt.Sprintf("%s[%s%s%s%s%s]%s",
		Color(Dim), Color(Reset), Color(c), Tag, Color(Reset), Color(Dim), Color(Reset))
	if style == StyleDim {
		msg = Paint(Dim, msg)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", tag, msg)
}

// Logf prints a formatted styled log message.
func (l *Logger) Logf(style Style, format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), style)
}
