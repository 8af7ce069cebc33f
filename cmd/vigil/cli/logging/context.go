package logging

import (
	"context"
)

// Context keys for logging values.
// Using private types to avoid key collisions.
type contextKey int

const (
	componentKey contextKey = iota
	cycleKey
)

// WithComponent adds a component name to the context.
// Component names identify the subsystem generating logs
// (e.g., "scheduler", "watcher", "guard").
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithCycle adds the reconciliation cycle counter to the context.
func WithCycle(ctx context.Context, cycle uint64) context.Context {
	return context.WithValue(ctx, cycleKey, cycle)
}

// ComponentFromContext extracts the component name from the context.
// Returns empty string if not set.
func ComponentFromContext(ctx context.Context) string {
	if v := ctx.Value(componentKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// CycleFromContext extracts the cycle counter from the context.
func CycleFromContext(ctx context.Context) (uint64, bool) {
	if v := ctx.Value(cycleKey); v != nil {
		if n, ok := v.(uint64); ok {
			return n, true
		}
	}
	return 0, false
}
