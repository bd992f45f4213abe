package builder

import (
	"github.com/goliatone/go-autobuild/bean"
	"github.com/goliatone/go-autobuild/builtin"
	"github.com/goliatone/go-autobuild/logger"
	"github.com/goliatone/go-autobuild/registry"
	"github.com/goliatone/go-autobuild/value"
)

// Factory carries the shared configuration of builders: the global
// registry, the fallback resolvers and the resolve hooks.
type Factory struct {
	registry *registry.Registry
	builtins value.Resolver
	bean     value.Resolver
	logger   logger.Logger
	hooks    []value.ResolveHook
	maxDepth int
}

// Option customizes a Factory.
type Option func(*Factory)

// WithRegistry sets the global registry snapshotted by new builders.
func WithRegistry(r *registry.Registry) Option {
	return func(f *Factory) {
		if f == nil {
			return
		}
		f.registry = r
	}
}

// WithBuiltins replaces the built-in battery.
func WithBuiltins(r value.Resolver) Option {
	return func(f *Factory) {
		if f == nil || r == nil {
			return
		}
		f.builtins = r
	}
}

// WithBean replaces the last-resort instantiating resolver.
func WithBean(r value.Resolver) Option {
	return func(f *Factory) {
		if f == nil || r == nil {
			return
		}
		f.bean = r
	}
}

// WithLogger sets the factory logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Factory) {
		if f == nil || l == nil {
			return
		}
		f.logger = l
	}
}

// WithResolveHook registers a hook notified for every resolved node.
func WithResolveHook(hook value.ResolveHook) Option {
	return func(f *Factory) {
		if f == nil || hook == nil {
			return
		}
		f.hooks = append(f.hooks, hook)
	}
}

// WithMaxDepth sets the recursion limit of builds.
func WithMaxDepth(depth int) Option {
	return func(f *Factory) {
		if f == nil || depth <= 0 {
			return
		}
		f.maxDepth = depth
	}
}

// NewFactory constructs a Factory. Without a registry, builders start from
// an empty global state.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		builtins: builtin.New(),
		bean:     bean.New(),
		logger:   logger.Nop(),
		maxDepth: value.DefaultMaxDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Registry returns the registry builders snapshot, if any.
func (f *Factory) Registry() *registry.Registry {
	if f == nil {
		return nil
	}
	return f.registry
}

func (f *Factory) snapshot() registry.Snapshot {
	return f.registry.Snapshot()
}
