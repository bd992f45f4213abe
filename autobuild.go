// Package autobuild produces test instances of arbitrary Go types. Every
// field of the requested type is filled through a chain of resolvers:
// named values bound to dotted property paths, user resolvers, plugins, a
// battery of built-in placeholder values and finally reflective
// instantiation of nested structs.
//
//	user, err := autobuild.InstanceOf[User]().
//		With("Address.City", "London").
//		Build()
package autobuild

import (
	"context"
	"sync"

	"github.com/goliatone/go-autobuild/builder"
	"github.com/goliatone/go-autobuild/catalog"
	"github.com/goliatone/go-autobuild/logger"
	_ "github.com/goliatone/go-autobuild/plugins"
	"github.com/goliatone/go-autobuild/registry"
	"github.com/goliatone/go-autobuild/value"
)

var (
	defaultOnce     sync.Once
	defaultFactory  *builder.Factory
	defaultRegistry *registry.Registry
	defaultInitErr  error
)

// Default returns the process-wide factory. Its registry is initialized
// once from catalog.Default; plugins that fail to initialize are logged
// and skipped.
func Default() *builder.Factory {
	defaultOnce.Do(func() {
		log := logger.Default()
		defaultRegistry = registry.New(
			registry.WithCatalog(catalog.Default),
			registry.WithLogger(log),
		)
		defaultInitErr = defaultRegistry.Init(context.Background())
		if defaultInitErr != nil {
			log.Warn("autobuild default registry initialized with errors", "error", defaultInitErr)
		}
		defaultFactory = builder.NewFactory(
			builder.WithRegistry(defaultRegistry),
			builder.WithLogger(log),
		)
	})
	return defaultFactory
}

// InitError returns the plugin failures of the default registry, if any.
func InitError() error {
	Default()
	return defaultInitErr
}

// RegisterValue binds v under name for every builder created afterwards.
// The first registration of a name and type wins.
func RegisterValue(name string, v any, required ...value.Annotation) error {
	return Default().Registry().RegisterValue(context.Background(), name, v, required...)
}

// RegisterResolver adds r ahead of every global resolver registered before.
func RegisterResolver(r value.Resolver) error {
	return Default().Registry().RegisterResolver(context.Background(), r)
}

// InstanceOf returns a builder for T capturing the current global state.
func InstanceOf[T any]() *builder.Builder[T] {
	return builder.For[T](Default())
}

// Create builds a T with props bound to its properties.
func Create[T any](props map[string]any) (T, error) {
	return InstanceOf[T]().WithAll(props).Build()
}
