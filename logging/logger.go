// Package logging defines the structured logger contract used by every
// component of the engine. Components never write to raw stdout; scheduling
// and cache events stay observable through whichever Logger the host wires in.
package logging

// Logger is the minimal structured logging interface the engine depends on.
// Fields are alternating key/value pairs, sugared-logger style.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// nopLogger discards everything. Useful as a default when the host does not
// care about engine diagnostics.
type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a Logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}
