package ecs

import "github.com/TheBitDrifter/bark"

// Logger is the host-suppliable sink for warning-class errors
// (DuplicateAdd, ReplaceAbsent) and diagnostics output. The engine never
// treats a logged warning as fatal.
type Logger interface {
	Warnf(format string, args ...any)
}

// barkLogger adapts the bark logging library to Logger.
type barkLogger struct {
	log bark.Logger
}

// NewBarkLogger builds the default Logger, backed by bark, used unless a
// host overrides it via WithLogger or Config.SetLogger.
func NewBarkLogger() Logger {
	return &barkLogger{log: bark.New()}
}

func (b *barkLogger) Warnf(format string, args ...any) {
	b.log.Warn(format, args...)
}

// noopLogger discards everything; used for tests that don't care about
// warning output, and as the fallback when a nil Logger is configured.
type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}
