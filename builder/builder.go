package builder

import (
	"context"
	"reflect"
	"sort"

	"github.com/goliatone/go-autobuild/chain"
	"github.com/goliatone/go-autobuild/named"
	"github.com/goliatone/go-autobuild/registry"
	"github.com/goliatone/go-autobuild/scope"
	"github.com/goliatone/go-autobuild/value"
)

const (
	localValuesLabel    = "local-values"
	localResolversLabel = "local-resolvers"
	rootLabel           = "autobuild"
)

// Builder produces instances of T. A Builder is immutable: With, WithAll and
// WithResolver return a new Builder and leave the receiver untouched, so a
// partially configured builder can be shared as a template.
type Builder[T any] struct {
	factory   *Factory
	global    registry.Snapshot
	values    named.Store
	resolvers chain.Chain
}

// For returns a builder for T. Global values and resolvers registered after
// this call are not visible to it.
func For[T any](f *Factory) *Builder[T] {
	if f == nil {
		f = NewFactory()
	}
	return &Builder[T]{
		factory:   f,
		global:    f.snapshot(),
		values:    named.New().As(localValuesLabel),
		resolvers: chain.NewLIFO().As(localResolversLabel),
	}
}

// Type returns the type built.
func (b *Builder[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// With binds v to property of T. Nested properties use dotted paths, such
// as "address.city". Binding the same property twice keeps the last value,
// including an explicit nil.
func (b *Builder[T]) With(property string, v any) *Builder[T] {
	next := *b
	next.values = b.values.Override(value.SimpleName(b.Type())+"."+property, v)
	return &next
}

// WithAll binds every entry of props, in sorted key order.
func (b *Builder[T]) WithAll(props map[string]any) *Builder[T] {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	copied := *b
	next := &copied
	for _, k := range keys {
		next = next.With(k, props[k])
	}
	return next
}

// WithResolver adds r ahead of every resolver previously added to the
// builder.
func (b *Builder[T]) WithResolver(r value.Resolver) *Builder[T] {
	next := *b
	if r != nil {
		next.resolvers = b.resolvers.Add(r)
	}
	return &next
}

// Build produces a T.
func (b *Builder[T]) Build() (T, error) {
	return b.BuildContext(context.Background())
}

// BuildContext produces a T. ctx may carry a depth limit and a label set
// through the scope package. A nil builder produces the zero T.
func (b *Builder[T]) BuildContext(ctx context.Context) (T, error) {
	var zero T
	if b == nil || b.factory == nil {
		return zero, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t := b.Type()
	depth := b.factory.maxDepth
	if d, ok := scope.MaxDepth(ctx); ok {
		depth = d
	}
	label := scope.Label(ctx)

	root := value.NewRequest(b.root(), value.Request{
		Type: value.Type{Declared: t},
		Name: value.SimpleName(t),
	},
		value.WithMaxDepth(depth),
		value.WithHooks(b.factory.hooks...),
		value.WithLabel(label),
	)
	out, err := root.Resolve(ctx)
	if err != nil {
		b.factory.logger.Debug("autobuild build failed", "type", t.String(), "label", label, "error", err)
		return zero, err
	}
	b.factory.logger.Debug("autobuild build", "type", t.String(), "label", label, "source", root.Source())
	if !out.IsValid() || !out.CanInterface() {
		return zero, nil
	}
	v, ok := out.Interface().(T)
	if !ok {
		return zero, nil
	}
	return v, nil
}

// root assembles the chain for one build: local values, local resolvers,
// global values, global resolvers, built-ins, then bean instantiation.
func (b *Builder[T]) root() value.Resolver {
	members := make([]value.Resolver, 0, 6)
	if b.values.Len() > 0 {
		members = append(members, b.values)
	}
	if b.resolvers.Len() > 0 {
		members = append(members, b.resolvers)
	}
	if b.global.Values.Len() > 0 {
		members = append(members, b.global.Values)
	}
	if b.global.Resolvers.Len() > 0 {
		members = append(members, b.global.Resolvers)
	}
	members = append(members, b.factory.builtins, b.factory.bean)
	return chain.New(members...).As(rootLabel)
}
