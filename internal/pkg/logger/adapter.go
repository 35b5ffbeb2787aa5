package logger

import "asset_dashboard/internal/app/port"

// slogAdapter implements port.Logger on top of the package level functions so
// services can be handed a logger without depending on slog directly.
type slogAdapter struct {
	args []any
}

// NewSlogAdapter creates a new slogAdapter.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// With returns an adapter that appends args to every record.
func With(l port.Logger, args ...any) port.Logger {
	base, ok := l.(*slogAdapter)
	if !ok {
		return l
	}
	merged := make([]any, 0, len(base.args)+len(args))
	merged = append(merged, base.args...)
	merged = append(merged, args...)
	return &slogAdapter{args: merged}
}

func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, append(args, a.args...)...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, append(args, a.args...)...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, append(args, a.args...)...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, append(args, a.args...)...)
}

// Nop returns a logger that discards everything; handy in tests.
func Nop() port.Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
