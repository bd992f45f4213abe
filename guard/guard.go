package guard

import (
	"context"
	"testing"

	"github.com/goliatone/go-autobuild/scope"
)

// Buildable is satisfied by builder.Builder.
type Buildable[T any] interface {
	BuildContext(ctx context.Context) (T, error)
}

// Option configures Require behavior.
type Option func(*config)

type config struct {
	ctx         context.Context
	label       string
	errorMapper func(error) error
}

// WithContext sets the context the build runs with.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if c == nil || ctx == nil {
			return
		}
		c.ctx = ctx
	}
}

// WithLabel tags the build; the label reaches resolve hooks and placeholder
// templates.
func WithLabel(label string) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.label = label
	}
}

// WithErrorMapper transforms build errors before they are reported.
func WithErrorMapper(mapper func(error) error) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.errorMapper = mapper
	}
}

// Require builds a T and fails tb when the build fails. If b is nil,
// Require returns the zero T.
func Require[T any](tb testing.TB, b Buildable[T], opts ...Option) T {
	tb.Helper()
	var zero T
	if b == nil {
		return zero
	}

	cfg := &config{ctx: context.Background()}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	ctx := cfg.ctx
	if cfg.label != "" {
		ctx = scope.WithLabel(ctx, cfg.label)
	}

	out, err := b.BuildContext(ctx)
	if err = mapErr(cfg, err); err != nil {
		tb.Fatalf("autobuild: %v", err)
		return zero
	}
	return out
}

func mapErr(cfg *config, err error) error {
	if err == nil {
		return nil
	}
	if cfg != nil && cfg.errorMapper != nil {
		return cfg.errorMapper(err)
	}
	return err
}
