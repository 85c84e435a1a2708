// Package logging defines the narrow logging interface the rest of the
// engine depends on, satisfied by a zap-backed implementation
// (SPEC_FULL.md §2's AMBIENT STACK). Modeled on the teacher's
// internal/pluginengine/discovery.go, which accepts a small Logger
// interface rather than a concrete *log.Logger so callers can substitute a
// no-op implementation in tests.
package logging

import "go.uber.org/zap"

// Logger is the minimal surface the engine needs: leveled, printf-style
// messages. No Fatal/Panic methods — fatal conditions are returned as
// errors and translated to an exit code in cmd/swd, never logged-and-exited
// from inside a library package.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap builds a Logger backed by a production zap configuration, writing
// structured logs to stderr so a step's own stdout stays clean for its
// child process's output (SPEC_FULL.md §4.6).
func NewZap() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &zapLogger{sugar: base.Sugar()}, nil
}

func (l *zapLogger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Nop is a Logger that discards everything, used by tests and by any
// caller that doesn't want log output (mirrors the teacher's nopLogger in
// internal/pluginengine/discovery.go).
type Nop struct{}

func (Nop) Infof(string, ...interface{})  {}
func (Nop) Warnf(string, ...interface{})  {}
func (Nop) Errorf(string, ...interface{}) {}
