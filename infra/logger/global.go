package logger

import (
	"sync"
)

var (
	globalLogger *SystemLogger
	once         sync.Once
	mu           sync.RWMutex
)

// InitGlobalLogger initializes the global system logger. sink may be nil.
func InitGlobalLogger(sink Sink, environment string, minLevel LogLevel) {
	once.Do(func() {
		config := SystemLoggerConfig{
			EnableConsole: true,
			EnableSink:    sink != nil,
			MinLevel:      minLevel,
			Service:       "eventpay",
			Version:       "1.0.0",
			Environment:   environment,
		}

		if environment == "development" {
			config.MinLevel = LevelDebug
		}

		SetGlobalLogger(NewSystemLogger(sink, config))
	})
}

// SetGlobalLogger replaces the global logger
func SetGlobalLogger(l *SystemLogger) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	// console-only fallback until InitGlobalLogger runs
	l = NewSystemLogger(nil, SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      LevelInfo,
		Service:       "eventpay",
		Version:       "1.0.0",
		Environment:   "development",
	})
	SetGlobalLogger(l)
	return l
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithRequest creates a context logger carrying the request id
func WithRequest(requestID string) *ContextLogger {
	return WithContext(LogContext{RequestID: requestID})
}
