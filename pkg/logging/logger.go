// Package logging provides structured logging functionality using Zap
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gridsim/internal/core"
)

// ZapLogger implements the ILogger interface using zap.Logger
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a new ZapLogger instance
func NewZapLogger(levelStr string) (*ZapLogger, error) {
	var zapLevel zapcore.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		zapLevel = zap.DebugLevel
	case "INFO":
		zapLevel = zap.InfoLevel
	case "WARN":
		zapLevel = zap.WarnLevel
	case "ERROR":
		zapLevel = zap.ErrorLevel
	case "FATAL":
		zapLevel = zap.FatalLevel
	default:
		zapLevel = zap.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zcore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapLevel,
	)

	logger := zap.New(zcore, zap.AddCaller(), zap.AddCallerSkip(1))

	return &ZapLogger{logger: logger}, nil
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() core.ILogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// ParseLevel parses a log level string
func ParseLevel(level string) (string, error) {
	switch strings.ToUpper(level) {
	case "DEBUG", "INFO", "WARN", "ERROR", "FATAL":
		return strings.ToUpper(level), nil
	default:
		return "INFO", fmt.Errorf("invalid log level: %s", level)
	}
}

// convertToZapFields converts variadic interface fields to zap.Field
func (l *ZapLogger) convertToZapFields(fields []interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, ok := fields[i].(string)
			if !ok {
				key = fmt.Sprintf("%v", fields[i])
			}
			zapFields = append(zapFields, zap.Any(key, fields[i+1]))
		}
	}
	return zapFields
}

func (l *ZapLogger) Debug(msg string, fields ...interface{}) {
	l.logger.Debug(msg, l.convertToZapFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, l.convertToZapFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields ...interface{}) {
	l.logger.Warn(msg, l.convertToZapFields(fields)...)
}

func (l *ZapLogger) Error(msg string, fields ...interface{}) {
	l.logger.Error(msg, l.convertToZapFields(fields)...)
}

func (l *ZapLogger) Fatal(msg string, fields ...interface{}) {
	l.logger.Fatal(msg, l.convertToZapFields(fields)...)
}

// WithField returns a logger with an additional field
func (l *ZapLogger) WithField(key string, value interface{}) core.ILogger {
	return &ZapLogger{logger: l.logger.With(zap.Any(key, value))}
}

// WithFields returns a logger with additional fields
func (l *ZapLogger) WithFields(fields map[string]interface{}) core.ILogger {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return &ZapLogger{logger: l.logger.With(zapFields...)}
}
