package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       *zerolog.Logger
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.flik/flik.log. The TUI owns the
// terminal, so logs always go to a file.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = nil
		return nil
	}

	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		home, _ := os.UserHomeDir()
		logPath = filepath.Join(home, ".flik", "flik.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logFile = f
	l := zerolog.New(f).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("app", "flik").
		Logger()
	logger = &l
	return nil
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		logger = nil
		return err
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// event starts a zerolog event for level. The caller holds mu.
func event(level LogLevel) *zerolog.Event {
	switch level {
	case LevelDebug:
		return logger.Debug()
	case LevelInfo:
		return logger.Info()
	case LevelWarn:
		return logger.Warn()
	default:
		return logger.Error()
	}
}

// logf writes a log message at the specified level. The read lock is held
// until the line is written so Close cannot pull the file out from under it.
func logf(level LogLevel, fields map[string]interface{}, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if level < currentLevel || logger == nil {
		return
	}
	e := event(level)
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msgf(format, args...)
}

func Debugf(format string, args ...any) {
	logf(LevelDebug, nil, format, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, nil, format, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, nil, format, args...)
}

func Errorf(format string, args ...any) {
	logf(LevelError, nil, format, args...)
}

// FieldLogger attaches structured fields to every message.
type FieldLogger struct {
	fields map[string]interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: fields}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logf(LevelDebug, fl.fields, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logf(LevelInfo, fl.fields, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logf(LevelWarn, fl.fields, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logf(LevelError, fl.fields, format, args...)
}
