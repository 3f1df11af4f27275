// Package logging is the diagnostics channel of a stabilization run.
//
// Every entry is written to the trace file as
//
//	2006-01-02 15:04:05 [LEVEL] message
//
// Entries at Info, Warning and Error are echoed to the console with a styled
// level tag. Trace entries carry per-frame numbers and only go to the file.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level orders log entries by severity.
type Level int

const (
	Info Level = iota
	Warning
	Error
	Trace // file only
)

const timeLayout = "2006-01-02 15:04:05"

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Trace:
		return "TRACE"
	}
	return "UNKNOWN"
}

var levelStyles = map[Level]lipgloss.Style{
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
}

// Logger writes leveled entries to a trace file and the console.
type Logger struct {
	mu      sync.Mutex
	file    io.Writer
	closer  io.Closer
	console io.Writer
	now     func() time.Time
}

// New truncates (or creates) the trace file at path and echoes to stdout.
func New(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}
	l := NewWithWriters(f, os.Stdout)
	l.closer = f
	return l, nil
}

// NewWithWriters builds a logger over arbitrary writers. Either may be nil.
func NewWithWriters(file, console io.Writer) *Logger {
	if file == nil {
		file = io.Discard
	}
	if console == nil {
		console = io.Discard
	}
	return &Logger{file: file, console: console, now: time.Now}
}

// Log formats and writes one entry.
func (l *Logger) Log(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	stamp := l.now().Format(timeLayout)

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.file, "%s [%s] %s\n", stamp, level, msg)
	if level == Trace {
		return
	}

	tag := "[" + level.String() + "]"
	if style, ok := levelStyles[level]; ok {
		tag = style.Render(tag)
	}
	fmt.Fprintf(l.console, "%s %s %s\n", stamp, tag, msg)
}

func (l *Logger) Infof(format string, args ...any)  { l.Log(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.Log(Warning, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.Log(Error, format, args...) }
func (l *Logger) Tracef(format string, args ...any) { l.Log(Trace, format, args...) }

// Close closes the trace file when the logger owns it.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var (
	stdMu sync.RWMutex
	std   = NewWithWriters(nil, os.Stdout)
)

// SetDefault replaces the package logger. Passing nil mutes it.
func SetDefault(l *Logger) {
	if l == nil {
		l = NewWithWriters(nil, nil)
	}
	stdMu.Lock()
	std = l
	stdMu.Unlock()
}

// Default returns the package logger.
func Default() *Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

func Infof(format string, args ...any)  { Default().Infof(format, args...) }
func Warnf(format string, args ...any)  { Default().Warnf(format, args...) }
func Errorf(format string, args ...any) { Default().Errorf(format, args...) }
func Tracef(format string, args ...any) { Default().Tracef(format, args...) }
