// Package logging wires the process-wide structured logger. Components
// receive a logr.Logger from their context and fall back to the package
// logger when none was attached.
package logging

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// DEBUG is the verbosity level for diagnostic messages.
const DEBUG = 1

// Log is the package-level logger, initialized to discard until Setup runs.
var Log = logr.Discard()

// Setup builds the zap-backed logger and installs it as the package logger.
// Verbose mode enables the DEBUG verbosity level.
func Setup(verbose bool) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	Log = zapr.NewLogger(zl)
	return Log, nil
}

// NewTestLogger installs a development logger for test suites and returns it.
func NewTestLogger() logr.Logger {
	zl, err := zap.NewDevelopment()
	if err != nil {
		zl = zap.NewNop()
	}
	Log = zapr.NewLogger(zl)
	return Log
}

// IntoContext attaches the logger to the context.
func IntoContext(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// FromContext returns the logger attached to the context, or the package
// logger.
func FromContext(ctx context.Context) logr.Logger {
	if log, err := logr.FromContext(ctx); err == nil {
		return log
	}
	return Log
}
