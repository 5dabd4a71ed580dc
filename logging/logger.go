// Package logging adapts zap to the account.Logger contract.
package logging

import (
	"strings"

	account "github.com/goliatone/go-account"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured key/value logs through a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ account.Logger = (*Logger)(nil)

// New builds a zap logger. Development mode uses the console encoder.
func New(level string, development bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return NewFromZap(z), nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar()}
}

// ParseLevel maps a level name to a zap level. Unknown names are info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func (l *Logger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

func (l *Logger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

func (l *Logger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// Named returns a child logger with a name segment appended.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugar: l.sugar.Named(name)}
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
