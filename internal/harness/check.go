package harness

import "context"

// Check is a single named verification. Implementations are supplied by the
// embedding suite and may touch hardware; the runner treats them as opaque
// callables that report pass/fail plus an optional message.
type Check interface {
	Name() string
	Run(ctx context.Context) (bool, string)
}

// CheckFunc adapts a plain function to the Check interface.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) (bool, string)
}

// NewCheck wraps fn as a named Check.
func NewCheck(name string, fn func(ctx context.Context) (bool, string)) CheckFunc {
	return CheckFunc{name: name, fn: fn}
}

// Name returns the check's name.
func (c CheckFunc) Name() string { return c.name }

// Run invokes the wrapped function.
func (c CheckFunc) Run(ctx context.Context) (bool, string) {
	if c.fn == nil {
		return false, "check has no body"
	}
	return c.fn(ctx)
}
