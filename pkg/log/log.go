// Package log is the process-wide logger of readme-activity.
//
// It wraps a zap SugaredLogger. Output goes to stderr so that the outcome
// message printed on stdout stays machine readable.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity of logging
type LogLevel string

const (
	// LevelDebug enables all logs, including per-page fetch details
	LevelDebug LogLevel = "debug"
	// LevelInfo enables info, warning, and error logs
	LevelInfo LogLevel = "info"
	// LevelProgress enables progress, warning, and error logs (default)
	LevelProgress LogLevel = "progress"
	// LevelWarn enables only warning and error logs
	LevelWarn LogLevel = "warn"
	// LevelError enables only error logs
	LevelError LogLevel = "error"
)

var (
	globalLogger *zap.SugaredLogger
	globalMutex  sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel
	Format string    // "console" or "json"
	Output io.Writer // defaults to os.Stderr
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelProgress,
		Format: "console",
	}
}

// ParseLevel validates a level name coming from flags or the environment.
func ParseLevel(s string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToLower(strings.TrimSpace(s))); lvl {
	case LevelDebug, LevelInfo, LevelProgress, LevelWarn, LevelError:
		return lvl, nil
	case "":
		return LevelProgress, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want debug, info, progress, warn or error)", s)
	}
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	logger, err := build(cfg)
	if err != nil {
		return err
	}

	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalLogger = logger
	return nil
}

func mapLevelToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo, LevelProgress:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildEncoder(format string) (zapcore.Encoder, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch format {
	case "", "console":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	case "json":
		encoderConfig.TimeKey = "time"
		encoderConfig.LevelKey = "level"
		encoderConfig.MessageKey = "msg"
		encoderConfig.CallerKey = "caller"
		encoderConfig.NameKey = "logger"
		encoderConfig.StacktraceKey = "stacktrace"
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func build(cfg Config) (*zap.SugaredLogger, error) {
	encoder, err := buildEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), mapLevelToZapLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)).Sugar(), nil
}

// Get returns the global logger, initializing it with DefaultConfig on first use.
func Get() *zap.SugaredLogger {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()

	if logger != nil {
		return logger
	}

	// Build outside the lock; DefaultConfig cannot fail.
	fallback, _ := build(DefaultConfig())

	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger == nil {
		globalLogger = fallback
	}
	return globalLogger
}

// Debug logs a debug message with key/value pairs
func Debug(msg string, args ...interface{}) {
	Get().Debugw(msg, args...)
}

// Debugf logs a formatted debug message
func Debugf(template string, args ...interface{}) {
	Get().Debugf(template, args...)
}

// Info logs an info message with key/value pairs
func Info(msg string, args ...interface{}) {
	Get().Infow(msg, args...)
}

// Infof logs a formatted info message
func Infof(template string, args ...interface{}) {
	Get().Infof(template, args...)
}

// Progress logs a progress message (maps to Info level)
func Progress(msg string, args ...interface{}) {
	Get().Infow(msg, args...)
}

// Warn logs a warning message with key/value pairs
func Warn(msg string, args ...interface{}) {
	Get().Warnw(msg, args...)
}

// Warnf logs a formatted warning message
func Warnf(template string, args ...interface{}) {
	Get().Warnf(template, args...)
}

// Error logs an error message with key/value pairs
func Error(msg string, args ...interface{}) {
	Get().Errorw(msg, args...)
}

// With returns a logger with additional fields
func With(args ...interface{}) *zap.SugaredLogger {
	return Get().With(args...)
}

// Sync flushes any buffered log entries
func Sync() error {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()

	if logger != nil {
		return logger.Sync()
	}
	return nil
}

// Reset drops the global logger (mainly for testing)
func Reset() {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = nil
}
