// Package logger provides the levelled console/file logger shared by the
// server and the client binaries.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// LogLevel represents the severity of a log line
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name into a LogLevel. Unknown names map to INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Level colours always emit escapes; each Logger decides per sink whether to
// use them.
var levelColors = map[LogLevel]*color.Color{
	DEBUG: forced(color.FgHiBlack),
	INFO:  forced(color.FgCyan),
	WARN:  forced(color.FgYellow),
	ERROR: forced(color.FgRed),
	FATAL: forced(color.FgRed, color.Bold),
}

func forced(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// isTerminal reports whether w is a terminal that should receive colour
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Logger writes levelled, timestamped lines to the console and optionally to a file
type Logger struct {
	name     string
	level    LogLevel
	out      io.Writer
	colorize bool
	file     *os.File
	exit     func(int)
	mu       sync.Mutex
}

// Global loggers used by the binaries
var (
	Server = New("SERVER")
	Client = New("CLIENT")
)

// New creates a logger writing to stdout at INFO level
func New(name string) *Logger {
	return &Logger{
		name:     name,
		level:    INFO,
		out:      color.Output,
		colorize: !color.NoColor,
		exit:     os.Exit,
	}
}

// SetGlobalLogLevel sets the level of every global logger
func SetGlobalLogLevel(level LogLevel) {
	Server.SetLevel(level)
	Client.SetLevel(level)
}

// InitializeFileLogging tees every global logger into <dir>/<name>.log
func InitializeFileLogging(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	for _, l := range []*Logger{Server, Client} {
		path := filepath.Join(dir, strings.ToLower(l.name)+".log")
		if err := l.SetFile(path); err != nil {
			return err
		}
	}
	return nil
}

// SetLevel changes the minimum level that gets written
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current minimum level
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput replaces the console sink. Lines are coloured only when w is a
// terminal.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.colorize = isTerminal(w)
}

// SetFile appends log lines (uncoloured) to the given file
func (l *Logger) SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	return nil
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// Fatal logs and terminates the process with status 1
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
	l.exit(1)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	line := fmt.Sprintf("[%s] [%s] [%s] %s",
		time.Now().Format("2006-01-02 15:04:05"), l.name, level, fmt.Sprintf(format, args...))

	switch {
	case l.out == nil:
	case l.colorize:
		levelColors[level].Fprintln(l.out, line)
	default:
		fmt.Fprintln(l.out, line)
	}
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}
