package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger provides levelled logging for CLI tools. Lines look like
//
//	[INFO] 15:04:05: compiled main.quark
//
// A nil *Logger discards everything, so library code can log without
// checking.
type Logger struct {
	Verbose   bool
	DebugMode bool

	mu    sync.Mutex
	out   io.Writer
	color bool
	now   func() time.Time
}

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

// NewLogger creates a logger writing to stderr. Level tags are coloured
// when stderr is a terminal and NO_COLOR is unset.
func NewLogger(verbose, debug bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose, debug, ColorEnabled(os.Stderr))
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, verbose, debug, color bool) *Logger {
	return &Logger{
		Verbose:   verbose,
		DebugMode: debug,
		out:       w,
		color:     color,
		now:       time.Now,
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l != nil && l.Verbose {
		l.log("INFO", colorCyan, format, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l != nil && l.DebugMode {
		l.log("DEBUG", colorGray, format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l != nil {
		l.log("WARN", colorYellow, format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l != nil {
		l.log("ERROR", colorRed, format, args...)
	}
}

func (l *Logger) log(level, color, format string, args ...interface{}) {
	tag := "[" + level + "]"
	if l.color {
		tag = color + tag + colorReset
	}

	out, now := l.out, l.now
	if out == nil {
		out = os.Stderr
	}
	if now == nil {
		now = time.Now
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(out, "%s %s: %s\n", tag, now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// ColorEnabled reports whether output to f should be coloured
func ColorEnabled(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(f.Fd())
}
