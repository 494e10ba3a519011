package ecs

// Config holds process-wide default configuration, exposed as a
// package-level singleton. Individual Worlds may still override these via
// WorldOptions passed to NewWorld; Config only
// supplies the defaults a World picks up if the host doesn't.
var Config config = config{
	logger: NewBarkLogger(),
}

type config struct {
	logger      Logger
	diagnostics bool
}

// SetLogger overrides the default Logger used by new Worlds.
func (c *config) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	c.logger = l
}

// SetDiagnostics toggles the uniqueness assertion GetUnique performs for new
// Worlds.
func (c *config) SetDiagnostics(on bool) {
	c.diagnostics = on
}
