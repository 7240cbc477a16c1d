package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single contract command when no runtime limit is configured.
const DefaultCommandTimeout = 30 * time.Second

// Runtime holds the execution limits applied to contract commands.
// Timeout bounds each handler invocation; MaxRetries is how many extra
// attempts the dispatcher makes after a failed execution.
type Runtime struct {
	Timeout    time.Duration
	MaxRetries int
}

// DefaultRuntime returns the limits used when configuration leaves them unset.
func DefaultRuntime() Runtime {
	return Runtime{Timeout: DefaultCommandTimeout}
}

// Normalize replaces negative limits with their defaults.
func (r Runtime) Normalize() Runtime {
	if r.Timeout <= 0 {
		r.Timeout = DefaultCommandTimeout
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	return r
}

// RunnerOptions translates the limits into dispatcher subscription options.
func (r Runtime) RunnerOptions() []runner.Option {
	r = r.Normalize()
	opts := []runner.Option{runner.WithTimeout(r.Timeout)}
	if r.MaxRetries > 0 {
		opts = append(opts, runner.WithMaxRetries(r.MaxRetries))
	}
	return opts
}

// HandlerOptionsFor returns the handler options a contract command needs to honour rt.
func HandlerOptionsFor[T command.Message](rt Runtime) []HandlerOption[T] {
	return []HandlerOption[T]{WithTimeout[T](rt.Normalize().Timeout)}
}

// EnsureContext returns a non-nil context, falling back to context.Background when nil.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies the provided timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
