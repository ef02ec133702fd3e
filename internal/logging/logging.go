// Package logging provides the logging sink used throughout the analysis
// pipeline, built on zap. The core only ever sees the Logger interface;
// whether lines go to a file, the console, or nowhere is the driver's choice.
package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sink handed to every analysis task. Sublogger derives a
// child logger whose id is attached to every line, so output from parallel
// workers stays attributable.
type Logger interface {
	Log(msg string, timestamp bool)
	Sublogger(id string) Logger
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(base *zap.Logger) Logger {
	return &zapLogger{s: base.Sugar()}
}

// NewConsoleLogger returns a logger that prints to standard error using
// zap's development encoder.
func NewConsoleLogger() (Logger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return &zapLogger{s: base.Sugar()}, nil
}

// NewFileLogger returns a logger that appends plain-text lines to the
// given file.
func NewFileLogger(path string) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("can't initialize file logger: %w", err)
	}
	return &zapLogger{s: base.Sugar()}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Log(msg string, timestamp bool) {
	if timestamp {
		l.s.Infof("[%s] %s", time.Now().Format(time.RFC3339), msg)
		return
	}
	l.s.Info(msg)
}

func (l *zapLogger) Sublogger(id string) Logger {
	return &zapLogger{s: l.s.Named(id)}
}
