package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/goliatone/go-autobuild/activity"
	"github.com/goliatone/go-autobuild/catalog"
	"github.com/goliatone/go-autobuild/chain"
	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/logger"
	"github.com/goliatone/go-autobuild/named"
	"github.com/goliatone/go-autobuild/value"
)

const (
	// ValuesLabel names the global named value store in diagnostics.
	ValuesLabel = "global-values"
	// ResolversLabel names the global resolver chain in diagnostics.
	ResolversLabel = "global-resolvers"
)

// Snapshot is a consistent view of the global state.
type Snapshot struct {
	Values    named.Store
	Resolvers chain.Chain
}

// Registry holds process-wide named values and resolvers. Every builder
// takes a Snapshot when it is created; later registrations do not affect
// builders already handed out.
type Registry struct {
	mu        sync.Mutex
	values    named.Store
	resolvers chain.Chain

	catalog *catalog.Catalog
	logger  logger.Logger
	hooks   activity.Hooks

	initOnce sync.Once
	initErr  error
}

// Option customizes a Registry.
type Option func(*Registry)

// WithCatalog sets the plugin catalog consulted by Init.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Registry) {
		if r == nil {
			return
		}
		r.catalog = c
	}
}

// WithLogger sets the registry logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if r == nil || l == nil {
			return
		}
		r.logger = l
	}
}

// WithHook registers an activity hook.
func WithHook(hook activity.Hook) Option {
	return func(r *Registry) {
		if r == nil || hook == nil {
			return
		}
		r.hooks = append(r.hooks, hook)
	}
}

// New constructs an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		values:    named.New().As(ValuesLabel),
		resolvers: chain.NewLIFO().As(ResolversLabel),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RegisterValue binds v under name for every builder created afterwards.
// The first registration of a (name, type) pair wins.
func (r *Registry) RegisterValue(ctx context.Context, name string, v any, required ...value.Annotation) error {
	if r == nil {
		return ferrors.ErrStoreRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ferrors.WrapSentinel(ferrors.ErrInvalidName, "value name required", map[string]any{
			ferrors.MetaOperation: string(activity.ActionRegisterValue),
		})
	}

	r.mu.Lock()
	before := r.values.Len()
	r.values = r.values.Add(name, v, required...)
	added := r.values.Len() > before
	r.mu.Unlock()

	var t reflect.Type
	if v != nil {
		t = reflect.TypeOf(v)
	}
	if !added {
		r.logger.Debug("autobuild value already registered", "name", name, "type", typeName(t))
	}
	r.hooks.OnUpdate(ctx, activity.UpdateEvent{
		Action:      activity.ActionRegisterValue,
		Name:        name,
		Type:        t,
		Annotations: value.Annotations(required).Strings(),
	})
	return nil
}

// RegisterResolver adds res to the global chain. Later registrations are
// consulted first.
func (r *Registry) RegisterResolver(ctx context.Context, res value.Resolver) error {
	if r == nil {
		return ferrors.ErrStoreRequired
	}
	if res == nil {
		return ferrors.WrapSentinel(ferrors.ErrResolverRequired, "resolver required", map[string]any{
			ferrors.MetaOperation: string(activity.ActionRegisterResolver),
		})
	}
	r.mu.Lock()
	r.resolvers = r.resolvers.Add(res)
	r.mu.Unlock()

	r.hooks.OnUpdate(ctx, activity.UpdateEvent{
		Action:   activity.ActionRegisterResolver,
		Resolver: value.NameOf(res),
	})
	return nil
}

// Init instantiates every catalog plugin once, in advertisement order.
// Plugins that fail to initialize are skipped; their errors are joined
// under ErrPluginInitFailed.
func (r *Registry) Init(ctx context.Context) error {
	if r == nil {
		return ferrors.ErrStoreRequired
	}
	r.initOnce.Do(func() {
		r.initErr = r.init(ctx)
	})
	return r.initErr
}

// init instantiates every plugin before touching shared state, then adds
// the healthy ones under a single lock so a snapshot sees all of them or
// none.
func (r *Registry) init(ctx context.Context) error {
	if r.catalog == nil {
		return nil
	}
	var (
		failures []error
		ready    []value.Resolver
		names    []string
	)
	for _, def := range r.catalog.List() {
		res, err := instantiate(ctx, def)
		event := activity.UpdateEvent{Action: activity.ActionInit, Plugin: def.Name, Error: err}
		if res != nil {
			event.Resolver = value.NameOf(res)
		}
		r.hooks.OnUpdate(ctx, event)
		if err != nil {
			r.logger.Warn("autobuild plugin skipped", "plugin", def.Name, "error", err)
			failures = append(failures, err)
			continue
		}
		ready = append(ready, res)
		names = append(names, def.Name)
	}

	r.mu.Lock()
	for _, res := range ready {
		r.resolvers = r.resolvers.Add(res)
	}
	r.mu.Unlock()

	for i, res := range ready {
		r.hooks.OnUpdate(ctx, activity.UpdateEvent{
			Action:   activity.ActionRegisterResolver,
			Resolver: value.NameOf(res),
			Plugin:   names[i],
		})
		r.logger.Debug("autobuild plugin registered", "plugin", names[i])
	}

	if len(failures) == 0 {
		return nil
	}
	return ferrors.WrapCause(ferrors.ErrPluginInitFailed,
		fmt.Sprintf("%d plugin(s) failed to initialize", len(failures)),
		map[string]any{ferrors.MetaOperation: string(activity.ActionInit)},
		failures...)
}

func instantiate(ctx context.Context, def catalog.Definition) (res value.Resolver, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = pluginFailure(def, fmt.Errorf("panic: %v", rec))
		}
	}()
	if def.New == nil {
		return nil, pluginFailure(def, ferrors.ErrResolverRequired)
	}
	res = def.New()
	if res == nil {
		return nil, pluginFailure(def, ferrors.ErrResolverRequired)
	}
	if initializer, ok := res.(value.Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return nil, pluginFailure(def, err)
		}
	}
	return res, nil
}

func pluginFailure(def catalog.Definition, cause error) error {
	return ferrors.WrapCause(ferrors.ErrPluginInitFailed,
		fmt.Sprintf("plugin %s: %v", def.Name, cause),
		map[string]any{ferrors.MetaPlugin: def.Name},
		cause)
}

// Snapshot returns the current global state.
func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{
			Values:    named.New().As(ValuesLabel),
			Resolvers: chain.NewLIFO().As(ResolversLabel),
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{Values: r.values, Resolvers: r.resolvers}
}

// IsPluginFailure reports whether err came from a failed plugin.
func IsPluginFailure(err error) bool {
	return errors.Is(err, ferrors.ErrPluginInitFailed)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "*"
	}
	return t.String()
}
