package optionsadapter

import (
	"context"
	"errors"
	"testing"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-options/pkg/state"

	"github.com/goliatone/go-autobuild/builder"
	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/registry"
)

type Order struct {
	Currency string
	Total    int
	Notes    string
}

func seeded(t *testing.T) (*Store, *MemoryStateStore) {
	t.Helper()
	mem := NewMemoryStateStore()
	store := NewStore(mem)
	seeds := map[string]struct {
		scope opts.Scope
		data  map[string]any
	}{
		"defaults": {
			scope: scoped("defaults", "Defaults", priorityDefaults, "", ""),
			data:  map[string]any{"Order": map[string]any{"Currency": "USD", "Total": 10}},
		},
		"suite": {
			scope: scoped("suite", "Suite", prioritySuite, MetadataSuiteID, "checkout"),
			data:  map[string]any{"Order.Currency": "EUR"},
		},
	}
	for name, seed := range seeds {
		if err := mem.Seed(state.Ref{Domain: DefaultDomain, Scope: seed.scope}, seed.data); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return store, mem
}

func TestLoadMergesLayersByPrecedence(t *testing.T) {
	store, _ := seeded(t)
	flat, err := store.Load(context.Background(), ScopeSet{Suite: "checkout"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat["Order.Currency"] != "EUR" || flat["Order.Total"] != 10 {
		t.Fatalf("unexpected merge: %#v", flat)
	}

	flat, err = store.Load(context.Background(), ScopeSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat["Order.Currency"] != "USD" {
		t.Fatalf("expected defaults only, got %#v", flat)
	}
}

func TestSetWritesMostSpecificLayer(t *testing.T) {
	store, _ := seeded(t)
	ctx := context.Background()
	scopes := ScopeSet{Suite: "checkout", Test: "refunds"}
	if err := store.Set(ctx, "Order.Notes", "refund", scopes, "tester"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok, err := store.Lookup(ctx, "Order.Notes", scopes)
	if err != nil || !ok || v != "refund" {
		t.Fatalf("unexpected lookup: %v %v %v", v, ok, err)
	}
	if _, ok, _ := store.Lookup(ctx, "Order.Notes", ScopeSet{Suite: "checkout"}); ok {
		t.Fatalf("test layer leaked into suite layer")
	}

	if err := store.Unset(ctx, "Order.Notes", scopes, "tester"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := store.Lookup(ctx, "Order.Notes", scopes); ok {
		t.Fatalf("expected value to be removed")
	}
}

func TestValuesFeedBuilders(t *testing.T) {
	store, _ := seeded(t)
	values, err := store.Values(context.Background(), ScopeSet{Suite: "checkout"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, err := builder.For[Order](builder.NewFactory()).WithResolver(values).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Currency != "EUR" || order.Total != 10 {
		t.Fatalf("unexpected order: %#v", order)
	}
	if order.Notes != "any_Order.Notes" {
		t.Fatalf("expected placeholder for unset notes, got %q", order.Notes)
	}
}

func TestRegisterAddsGlobalValues(t *testing.T) {
	store, _ := seeded(t)
	reg := registry.New()
	if err := store.Register(context.Background(), reg, ScopeSet{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Snapshot().Values.Len() != 2 {
		t.Fatalf("expected two global values, got %d", reg.Snapshot().Values.Len())
	}
}

func TestStoreRequired(t *testing.T) {
	var store *Store
	if _, err := store.Load(context.Background(), ScopeSet{}); !errors.Is(err, ferrors.ErrStoreRequired) {
		t.Fatalf("expected store required, got %v", err)
	}
	if err := NewStore(nil).Set(context.Background(), "a", 1, ScopeSet{}, ""); !errors.Is(err, ferrors.ErrStoreRequired) {
		t.Fatalf("expected store required, got %v", err)
	}
	if err := NewStore(NewMemoryStateStore()).Set(context.Background(), " . ", 1, ScopeSet{}, ""); !errors.Is(err, ferrors.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
}

func TestSetRejectsValueSegments(t *testing.T) {
	store, _ := seeded(t)
	err := store.Set(context.Background(), "Order.Total.Cents", 5, ScopeSet{}, "")
	if !errors.Is(err, ferrors.ErrPathInvalid) {
		t.Fatalf("expected invalid path, got %v", err)
	}
}
