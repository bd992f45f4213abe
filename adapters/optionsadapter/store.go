package optionsadapter

import (
	"context"
	"sort"
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-options/pkg/state"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/named"
	"github.com/goliatone/go-autobuild/value"
)

const (
	priorityDefaults = 10
	prioritySuite    = 20
	priorityTest     = 30
)

const (
	// MetadataSuiteID keys the suite identifier in scope metadata.
	MetadataSuiteID = "suite_id"
	// MetadataTestID keys the test identifier in scope metadata.
	MetadataTestID = "test_id"
)

// DefaultDomain is the default options domain holding fixture values.
const DefaultDomain = "autobuild_values"

// ErrStoreRequired indicates the underlying state store is missing.
var ErrStoreRequired = ferrors.ErrStoreRequired

// ScopeSet selects the fixture layers of a build. Defaults always apply;
// suite and test layers apply when their identifier is set.
type ScopeSet struct {
	Suite string
	Test  string
}

// ScopeBuilder maps a ScopeSet into go-options scopes, most specific first.
type ScopeBuilder func(scopeSet ScopeSet) []opts.Scope

// MetaBuilder builds storage metadata for a mutation made by actor.
type MetaBuilder func(actor string) state.Meta

// Registerer accepts global named values.
type Registerer interface {
	RegisterValue(ctx context.Context, name string, v any, required ...value.Annotation) error
}

// Option customizes the Store adapter.
type Option func(*Store)

// Store keeps layered fixture values in a go-options state.Store. Each
// layer is a nested map of dotted property names; higher priority layers
// replace the values of lower ones.
type Store struct {
	stateStore state.Store[map[string]any]
	domain     string
	scopes     ScopeBuilder
	meta       MetaBuilder
}

// NewStore constructs an adapter backed by a go-options state.Store.
func NewStore(stateStore state.Store[map[string]any], opts ...Option) *Store {
	adapter := &Store{
		stateStore: stateStore,
		domain:     DefaultDomain,
		scopes:     defaultScopes,
		meta:       defaultMeta,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.domain == "" {
		adapter.domain = DefaultDomain
	}
	if adapter.scopes == nil {
		adapter.scopes = defaultScopes
	}
	if adapter.meta == nil {
		adapter.meta = defaultMeta
	}
	return adapter
}

// WithDomain sets the options domain holding fixture values.
func WithDomain(domain string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.domain = strings.TrimSpace(domain)
	}
}

// WithScopeBuilder overrides the default scope mapping.
func WithScopeBuilder(builder ScopeBuilder) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.scopes = builder
	}
}

// WithMetaBuilder overrides the metadata builder used on mutations.
func WithMetaBuilder(builder MetaBuilder) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.meta = builder
	}
}

// Load merges the layers selected by scopeSet into flat dotted names.
func (s *Store) Load(ctx context.Context, scopeSet ScopeSet) (map[string]any, error) {
	if s == nil || s.stateStore == nil {
		return nil, storeRequiredError("load", s.domainName())
	}
	scopes := s.scopes(scopeSet)
	merged := map[string]any{}
	for i := len(scopes) - 1; i >= 0; i-- {
		scopeDef := scopes[i]
		snapshot, _, ok, err := s.stateStore.Load(ctx, state.Ref{Domain: s.domain, Scope: scopeDef})
		if err != nil {
			return nil, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "optionsadapter: load failed", storeMeta(scopeDef, "load", s.domain))
		}
		if !ok || len(snapshot) == 0 {
			continue
		}
		flattenLayer(nil, snapshot, merged)
	}
	return merged, nil
}

// Lookup returns the value stored under the dotted name in the most
// specific layer of scopeSet holding it.
func (s *Store) Lookup(ctx context.Context, name string, scopeSet ScopeSet) (any, bool, error) {
	if s == nil || s.stateStore == nil {
		return nil, false, storeRequiredError("lookup", s.domainName())
	}
	path, err := parsePath(name)
	if err != nil {
		return nil, false, err
	}
	for _, scopeDef := range s.scopes(scopeSet) {
		snapshot, _, ok, err := s.stateStore.Load(ctx, state.Ref{Domain: s.domain, Scope: scopeDef})
		if err != nil {
			return nil, false, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "optionsadapter: load failed", storeMeta(scopeDef, "lookup", s.domain))
		}
		if !ok {
			continue
		}
		if v, found := path.get(snapshot); found {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// Values loads the layers selected by scopeSet as a named value store,
// ready to be added to a builder as a resolver.
func (s *Store) Values(ctx context.Context, scopeSet ScopeSet) (named.Store, error) {
	flat, err := s.Load(ctx, scopeSet)
	if err != nil {
		return named.Store{}, err
	}
	out := named.New().As("options-values")
	for _, name := range sortedKeys(flat) {
		out = out.Add(name, flat[name])
	}
	return out, nil
}

// Register loads the layers selected by scopeSet into reg.
func (s *Store) Register(ctx context.Context, reg Registerer, scopeSet ScopeSet) error {
	flat, err := s.Load(ctx, scopeSet)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(flat) {
		if err := reg.RegisterValue(ctx, name, flat[name]); err != nil {
			return err
		}
	}
	return nil
}

// Set stores v under the dotted name in the most specific layer of
// scopeSet.
func (s *Store) Set(ctx context.Context, name string, v any, scopeSet ScopeSet, actor string) error {
	return s.mutate(ctx, "set", name, scopeSet, actor, func(snapshot map[string]any, path propertyPath) error {
		return path.put(snapshot, v)
	})
}

// Unset removes the dotted name from the most specific layer of scopeSet.
func (s *Store) Unset(ctx context.Context, name string, scopeSet ScopeSet, actor string) error {
	return s.mutate(ctx, "unset", name, scopeSet, actor, func(snapshot map[string]any, path propertyPath) error {
		path.remove(snapshot)
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, operation, name string, scopeSet ScopeSet, actor string, fn func(map[string]any, propertyPath) error) error {
	if s == nil || s.stateStore == nil {
		return storeRequiredError(operation, s.domainName())
	}
	path, err := parsePath(name)
	if err != nil {
		return err
	}

	ref := state.Ref{Domain: s.domain, Scope: writeScope(scopeSet)}
	resolver := state.Resolver[map[string]any]{Store: s.stateStore}
	_, _, err = resolver.Mutate(ctx, ref, s.meta(actor), func(snapshot *map[string]any) error {
		if snapshot == nil {
			return ferrors.WrapSentinel(ferrors.ErrStoreRequired, "optionsadapter: snapshot is nil", storeMeta(ref.Scope, operation, s.domain))
		}
		if *snapshot == nil {
			*snapshot = map[string]any{}
		}
		return fn(*snapshot, path)
	})
	if err != nil {
		meta := storeMeta(ref.Scope, operation, s.domain)
		meta[ferrors.MetaName] = path.String()
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "optionsadapter: "+operation+" failed", meta)
	}
	return nil
}

func (s *Store) domainName() string {
	if s == nil {
		return ""
	}
	return s.domain
}

func defaultScopes(scopeSet ScopeSet) []opts.Scope {
	var scopes []opts.Scope
	if scopeSet.Test != "" {
		scopes = append(scopes, scoped("test", "Test", priorityTest, MetadataTestID, scopeSet.Test))
	}
	if scopeSet.Suite != "" {
		scopes = append(scopes, scoped("suite", "Suite", prioritySuite, MetadataSuiteID, scopeSet.Suite))
	}
	scopes = append(scopes, scoped("defaults", "Defaults", priorityDefaults, "", ""))
	return scopes
}

func writeScope(scopeSet ScopeSet) opts.Scope {
	switch {
	case scopeSet.Test != "":
		return scoped("test", "Test", priorityTest, MetadataTestID, scopeSet.Test)
	case scopeSet.Suite != "":
		return scoped("suite", "Suite", prioritySuite, MetadataSuiteID, scopeSet.Suite)
	default:
		return scoped("defaults", "Defaults", priorityDefaults, "", "")
	}
}

func scoped(name, label string, priority int, metadataKey, metadataValue string) opts.Scope {
	var metadata map[string]any
	if metadataKey != "" && metadataValue != "" {
		metadata = map[string]any{metadataKey: metadataValue}
	}
	return opts.NewScope(
		name,
		priority,
		opts.WithScopeLabel(label),
		opts.WithScopeMetadata(metadata),
	)
}

func defaultMeta(actor string) state.Meta {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return state.Meta{}
	}
	return state.Meta{Extra: map[string]string{"actor": actor}}
}

func storeRequiredError(operation, domain string) error {
	return ferrors.WrapSentinel(ferrors.ErrStoreRequired, "optionsadapter: state store is required", map[string]any{
		ferrors.MetaAdapter:   "options",
		ferrors.MetaDomain:    strings.TrimSpace(domain),
		ferrors.MetaOperation: operation,
	})
}

func storeMeta(scopeDef opts.Scope, operation, domain string) map[string]any {
	meta := map[string]any{
		ferrors.MetaAdapter:   "options",
		ferrors.MetaOperation: operation,
		ferrors.MetaScope:     scopeDef.Name,
	}
	if strings.TrimSpace(domain) != "" {
		meta[ferrors.MetaDomain] = strings.TrimSpace(domain)
	}
	return meta
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
