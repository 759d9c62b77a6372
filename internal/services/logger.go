package services

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ProductionLogger adapts a zap sugared logger to Logger.
type ProductionLogger struct {
	sugar *zap.SugaredLogger
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.sugar.Infow(msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.sugar.Errorw(msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.sugar.Debugw(msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.sugar.Warnw(msg, keysAndValues...)
}

// Sync flushes buffered entries; call it before exit.
func (p *ProductionLogger) Sync() error {
	return p.sugar.Sync()
}

// Zap exposes the underlying logger for middleware that wants typed fields.
func (p *ProductionLogger) Zap() *zap.Logger {
	return p.sugar.Desugar()
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ProductionLogger {
	return &ProductionLogger{sugar: l.Sugar()}
}

// NewNopLogger discards everything (for testing).
func NewNopLogger() *ProductionLogger {
	return NewZapLogger(zap.NewNop())
}

// NewLogger builds a logger from GO_ENV and LOG_LEVEL: JSON in production,
// console output otherwise, nothing under GO_ENV=test.
func NewLogger(service string) *ProductionLogger {
	env := strings.ToLower(os.Getenv("GO_ENV"))
	if env == "test" {
		return NewNopLogger()
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	return NewZapLogger(l.With(zap.String("service", service)))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
