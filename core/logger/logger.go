// Package logger declares the logging contract used by the routing engine and
// its adapters. Implementations live in infra/logger.
package logger

// Logger exposes leveled, printf-style logging plus structured debug output.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
