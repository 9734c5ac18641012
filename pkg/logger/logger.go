// Package logger holds the process-wide structured logger used by gridstore.
// API calls are traced at debug level with Enter and Leave.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance
var Logger *log.Logger

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets level and destination. An empty level falls back to
// GRIDSTORE_LOG_LEVEL and then to info; an empty file logs to stderr.
func Configure(logLevel string, logFile string) error {
	level := logLevel
	if level == "" {
		level = strings.ToLower(os.Getenv("GRIDSTORE_LOG_LEVEL"))
	}

	var output io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = file
	}

	SetOutput(output)
	Logger.SetLevel(ParseLevel(level))
	return nil
}

// SetOutput replaces the global logger with one writing to w, keeping the
// current level
func SetOutput(w io.Writer) {
	level := log.InfoLevel
	if Logger != nil {
		level = Logger.GetLevel()
	}
	Logger = log.New(w)
	Logger.SetTimeFormat("")
	Logger.SetLevel(level)
}

// ParseLevel converts a level name, defaulting to info
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// Enter traces the start of an API call
func Enter(op string, keyvals ...interface{}) {
	Logger.Debug("enter", append([]interface{}{"op", op}, keyvals...)...)
}

// Leave traces the end of an API call. A failure is logged once, here, at
// error level.
func Leave(op string, err error) {
	if err != nil {
		Logger.Error("call failed", "op", op, "error", err)
		return
	}
	Logger.Debug("leave", "op", op)
}

// WithPrefix returns a component logger sharing the global output and level
func WithPrefix(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}
