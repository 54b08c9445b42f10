package critical

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Trap is invoked when an internal invariant is violated. On hardware it
// raises a breakpoint and never returns.
type Trap func(v *Violation)

// Violation describes a broken internal invariant.
type Violation struct {
	Component string
	Reason    string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", v.Component, v.Reason)
}

// PanicTrap is the default trap: it panics with the violation.
func PanicTrap(v *Violation) {
	panic(v)
}

// Fail takes sec and never releases it, logs the violation, and invokes trap.
// If trap returns, Fail panics with the violation so execution cannot continue.
func Fail(sec sync.Locker, trap Trap, logger *slog.Logger, component, format string, args ...any) {
	v := &Violation{Component: component, Reason: fmt.Sprintf(format, args...)}
	OrNoop(sec).Lock()
	if logger != nil {
		logger.LogAttrs(context.Background(), slog.LevelError, "invariant violated",
			slog.String("component", v.Component),
			slog.String("reason", v.Reason),
		)
	}
	if trap != nil {
		trap(v)
	}
	panic(v)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
