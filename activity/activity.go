package activity

import (
	"context"
	"reflect"
)

// Action describes a global registry mutation.
type Action string

const (
	ActionRegisterValue    Action = "register_value"
	ActionRegisterResolver Action = "register_resolver"
	ActionInit             Action = "init"
)

// UpdateEvent captures a global registry mutation.
type UpdateEvent struct {
	Action      Action
	Name        string
	Type        reflect.Type
	Resolver    string
	Plugin      string
	Annotations []string
	Error       error
}

// Hook receives update events.
type Hook interface {
	OnUpdate(ctx context.Context, event UpdateEvent)
}

// HookFunc wraps a function as a Hook.
type HookFunc func(context.Context, UpdateEvent)

// OnUpdate implements Hook.
func (fn HookFunc) OnUpdate(ctx context.Context, event UpdateEvent) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}

// NoopHook ignores updates.
type NoopHook struct{}

// OnUpdate implements Hook.
func (NoopHook) OnUpdate(context.Context, UpdateEvent) {}

// Hooks fans an event out to every hook.
type Hooks []Hook

// OnUpdate implements Hook.
func (hooks Hooks) OnUpdate(ctx context.Context, event UpdateEvent) {
	for _, hook := range hooks {
		if hook != nil {
			hook.OnUpdate(ctx, event)
		}
	}
}
