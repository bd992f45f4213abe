package value

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-autobuild/ferrors"
)

// Resolver produces a value for the request carried by node, or declines
// with an error classified by ferrors.IsDeclined.
type Resolver interface {
	Resolve(ctx context.Context, node *Node) (any, error)
}

// ResolverFunc wraps a function as a Resolver.
type ResolverFunc func(ctx context.Context, node *Node) (any, error)

// Resolve implements Resolver.
func (fn ResolverFunc) Resolve(ctx context.Context, node *Node) (any, error) {
	if fn == nil {
		return nil, Decline(node, "resolver func is nil")
	}
	return fn(ctx, node)
}

// Named is implemented by resolvers that report a stable name in diagnostics.
type Named interface {
	Name() string
}

// Initializer is implemented by discovered resolvers that need setup before
// they join the global chain.
type Initializer interface {
	Init(ctx context.Context) error
}

// NameOf returns the diagnostic name of r.
func NameOf(r Resolver) string {
	if r == nil {
		return "<nil>"
	}
	if named, ok := r.(Named); ok {
		if name := strings.TrimSpace(named.Name()); name != "" {
			return name
		}
	}
	if _, ok := r.(ResolverFunc); ok {
		return "func"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", r), "*")
}

// Decline returns the error a resolver uses to say it cannot serve node.
func Decline(node *Node, reason string) error {
	meta := map[string]any{}
	if node != nil {
		meta[ferrors.MetaName] = node.Name()
		meta[ferrors.MetaType] = typeString(node.Type())
	}
	if reason == "" {
		reason = ferrors.ErrNotResolvable.Message
	}
	return ferrors.WrapSentinel(ferrors.ErrNotResolvable, reason, meta)
}
