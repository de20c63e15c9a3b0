package runner

import (
	"io"
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInput sets where answers are read from. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(rn *Runner) {
		rn.input = r
	}
}

// WithOutput sets where prompts are written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) {
		rn.output = w
	}
}

// WithRenderer configures the content renderer (e.g. glamour markdown).
func WithRenderer(renderer ContentRenderer) Option {
	return func(rn *Runner) {
		rn.renderer = renderer
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rn *Runner) {
		rn.logger = logger
	}
}

// WithMaxInputSize overrides the per-line size limit.
func WithMaxInputSize(n int) Option {
	return func(rn *Runner) {
		rn.maxInput = n
	}
}
