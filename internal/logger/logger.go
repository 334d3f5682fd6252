// Package logger provides leveled logging over the standard library logger.
// Each component gets its own prefixed Logger sharing one level and output.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides leveled logging.
type Logger struct {
	level  Level
	logger *log.Logger
}

// New creates a logger writing to out. Format "text" adds file:line to each entry.
// The component, when set, becomes a "[component] " prefix as the standard logger does.
func New(out io.Writer, component, level, format string) *Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	prefix := ""
	if component != "" {
		prefix = "[" + component + "] "
	}
	return &Logger{level: ParseLevel(level), logger: log.New(out, prefix, flags)}
}

// Default returns an info-level text logger on stdout.
func Default(component string) *Logger {
	return New(os.Stdout, component, "info", "text")
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "", "error", "json")
}

// With returns a logger for another component with the same level, flags and output.
func (l *Logger) With(component string) *Logger {
	return &Logger{
		level:  l.level,
		logger: log.New(l.logger.Writer(), "["+component+"] ", l.logger.Flags()),
	}
}

// Std exposes the underlying standard logger, e.g. for http.Server.ErrorLog.
func (l *Logger) Std() *log.Logger { return l.logger }

func (l *Logger) output(level Level, tag, format string, args []any) {
	if l == nil || l.level > level {
		return
	}
	_ = l.logger.Output(3, fmt.Sprintf(tag+format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.output(DebugLevel, "[DEBUG] ", format, args) }
func (l *Logger) Infof(format string, args ...any)  { l.output(InfoLevel, "[INFO] ", format, args) }
func (l *Logger) Warnf(format string, args ...any)  { l.output(WarnLevel, "[WARN] ", format, args) }
func (l *Logger) Errorf(format string, args ...any) { l.output(ErrorLevel, "[ERROR] ", format, args) }

// Fatalf logs and exits with status 1.
func (l *Logger) Fatalf(format string, args ...any) {
	_ = l.logger.Output(2, fmt.Sprintf("[FATAL] "+format, args...))
	os.Exit(1)
}
