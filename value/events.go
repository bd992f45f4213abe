package value

import (
	"context"
	"reflect"
)

// ResolveEvent is emitted after a node settles.
type ResolveEvent struct {
	Name   string
	Type   reflect.Type
	Depth  int
	Source string
	Label  string
	Value  any
	Error  error
}

// ResolveHook receives resolution events.
type ResolveHook interface {
	OnResolve(ctx context.Context, event ResolveEvent)
}

// ResolveHookFunc wraps a function as a ResolveHook.
type ResolveHookFunc func(context.Context, ResolveEvent)

// OnResolve implements ResolveHook.
func (fn ResolveHookFunc) OnResolve(ctx context.Context, event ResolveEvent) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}
