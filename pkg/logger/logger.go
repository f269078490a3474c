// Package logger wires up the structured logger shared by every component
// of the payload index core. All components accept a *zap.SugaredLogger
// rather than constructing their own, so callers can inject a logger already
// configured for their service (production JSON encoding, test-friendly
// console encoding, etc.).
package logger

import (
	"go.uber.org/zap"
)

// New builds a production-configured, sugared zap logger tagged with the
// given service name. payloadindex.NewInstance always builds its logger
// this way; it takes no caller-supplied logger.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on encoder/sink configuration errors,
		// which can't happen with the default config. Fall back to a no-op
		// logger rather than panicking in a library constructor.
		base = zap.NewNop()
	}

	return base.Named(service).Sugar()
}

// NewDevelopment builds a development-configured logger with human-readable
// output and debug-level verbosity, useful for tests and local tooling.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}

	return base.Named(service).Sugar()
}

// Nop returns a logger that discards everything. Useful for tests that want
// to exercise a code path without asserting on log output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
