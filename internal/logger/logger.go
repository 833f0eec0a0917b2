package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// default logger instance
	defaultLogger *slog.Logger
)

// console-only until main installs the configured logger with SetDefault
func init() {
	defaultLogger = consoleLogger()
}

// rotation is attached once, from config, so only one writer owns LOG_FILE
func consoleLogger() *slog.Logger {
	return New(os.Getenv("ENVIRONMENT"), "")
}

// builds a logger for the given environment, optionally mirrored to a rotated file
func New(env, logFile string) *slog.Logger {
	var handler slog.Handler

	if env == "production" {
		// production: JSON output for structured logging
		opts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		handler = slog.NewJSONHandler(output(os.Stdout, logFile), opts)
	} else {
		// development: human-readable text output
		opts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		handler = slog.NewTextHandler(output(os.Stderr, logFile), opts)
	}

	return slog.New(handler)
}

func output(console io.Writer, logFile string) io.Writer {
	if logFile == "" {
		return console
	}

	return io.MultiWriter(console, &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
}

// replaces the default logger (used by main after config load)
func SetDefault(l *slog.Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// logs a debug message
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// logs an info message
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// logs a warning message
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// logs an error message
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// logs an error with context
func ErrorErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
}

// logs a fatal error and exits
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// logs a fatal error with error and exits
func FatalErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}
