package configadapter

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-config/config"

	"github.com/goliatone/go-autobuild/builder"
	"github.com/goliatone/go-autobuild/named"
	"github.com/goliatone/go-autobuild/value"
)

type configOptions struct {
	delimiter string
	prefix    string
}

// Option configures configadapter parsing.
type Option func(*configOptions)

// WithDelimiter sets the delimiter that marks nesting inside source keys,
// such as "__" for environment style keys. Output names always use dots.
func WithDelimiter(delimiter string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.delimiter = delimiter
	}
}

// WithPrefix roots every flattened name under prefix, usually a type name.
func WithPrefix(prefix string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	}
}

func newOptions(opts []Option) configOptions {
	cfg := configOptions{delimiter: "."}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.delimiter == "" {
		cfg.delimiter = "."
	}
	return cfg
}

// Flatten turns a nested config map into dotted property names. Unset
// optional booleans are dropped; set ones become plain bools.
func Flatten(data map[string]any, opts ...Option) map[string]any {
	cfg := newOptions(opts)
	out := map[string]any{}
	flattenValues(cfg.prefix, data, cfg.delimiter, out)
	return out
}

// NewValues builds a named value store from a nested config map.
func NewValues(data map[string]any, opts ...Option) named.Store {
	flat := Flatten(data, opts...)
	store := named.New().As("config-values")
	for _, name := range sortedKeys(flat) {
		store = store.Add(name, flat[name])
	}
	return store
}

// Registerer accepts global named values.
type Registerer interface {
	RegisterValue(ctx context.Context, name string, v any, required ...value.Annotation) error
}

// Register flattens data and registers every entry, in name order.
func Register(ctx context.Context, reg Registerer, data map[string]any, opts ...Option) error {
	flat := Flatten(data, opts...)
	for _, name := range sortedKeys(flat) {
		if err := reg.RegisterValue(ctx, name, flat[name]); err != nil {
			return err
		}
	}
	return nil
}

// Apply binds data to the properties of the type b builds.
func Apply[T any](b *builder.Builder[T], data map[string]any, opts ...Option) *builder.Builder[T] {
	return b.WithAll(Flatten(data, opts...))
}

type optionalBool interface {
	IsSet() bool
	Value() bool
}

func flattenValues(prefix string, data map[string]any, delim string, out map[string]any) {
	for key, value := range data {
		trimmedKey := normalizeKey(key, delim)
		if trimmedKey == "" {
			continue
		}
		path := trimmedKey
		if prefix != "" {
			path = prefix + "." + trimmedKey
		}

		switch typed := value.(type) {
		case map[string]any:
			flattenValues(path, typed, delim, out)
		case map[string]bool:
			flattenValues(path, boolMapToAny(typed), delim, out)
		case map[string]string:
			flattenValues(path, stringMapToAny(typed), delim, out)
		default:
			if leaf, ok := leafValue(value); ok {
				out[path] = leaf
			}
		}
	}
}

func normalizeKey(key, delim string) string {
	key = strings.TrimSpace(key)
	if delim != "." {
		key = strings.ReplaceAll(key, delim, ".")
	}
	return strings.Trim(key, ".")
}

func leafValue(value any) (any, bool) {
	switch typed := value.(type) {
	case config.OptionalBool:
		if !typed.IsSet() {
			return nil, false
		}
		return typed.Value(), true
	case *config.OptionalBool:
		if typed == nil || !typed.IsSet() {
			return nil, false
		}
		return typed.Value(), true
	case optionalBool:
		if !typed.IsSet() {
			return nil, false
		}
		return typed.Value(), true
	default:
		return value, true
	}
}

func boolMapToAny(data map[string]bool) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out
}

func stringMapToAny(data map[string]string) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
