package services

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ProductionLogger writes through a slog handler, tagging every record with
// the owning service.
type ProductionLogger struct {
	logger *slog.Logger
}

// NewProductionLogger builds a logger writing to w. JSON output is used when
// structured is true, key=value text otherwise.
func NewProductionLogger(service string, w io.Writer, level slog.Level, structured bool) *ProductionLogger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &ProductionLogger{logger: slog.New(handler).With("service", service)}
}

// Slog exposes the underlying logger so it can be installed as the process default.
func (p *ProductionLogger) Slog() *slog.Logger {
	return p.logger
}

// With returns a logger for a sub-component sharing the same handler.
func (p *ProductionLogger) With(keysAndValues ...interface{}) *ProductionLogger {
	return &ProductionLogger{logger: p.logger.With(keysAndValues...)}
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.logger.Info(msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.logger.Error(msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.logger.Debug(msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.logger.Warn(msg, keysAndValues...)
}

// With scopes l to a sub-component. Loggers without fields are returned as is.
func With(l Logger, keysAndValues ...interface{}) Logger {
	if p, ok := l.(*ProductionLogger); ok {
		return p.With(keysAndValues...)
	}
	return l
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// ParseLevel maps LOG_LEVEL values to slog levels; unknown values mean INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger is the environment-based logger factory. GO_ENV=test silences
// output, ENV=production switches to JSON.
func NewLogger(service string) Logger {
	if os.Getenv("GO_ENV") == "test" {
		return &NoOpLogger{}
	}
	structured := strings.EqualFold(os.Getenv("ENV"), "production")
	return NewProductionLogger(service, os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")), structured)
}
