package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

func constant(v any) func() value.Resolver {
	return func() value.Resolver {
		return value.ResolverFunc(func(context.Context, *value.Node) (any, error) {
			return v, nil
		})
	}
}

func TestCatalogKeepsAdvertisementOrder(t *testing.T) {
	cat := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := cat.Advertise(Definition{Name: name, New: constant(name)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	defs := cat.List()
	if len(defs) != 3 || defs[0].Name != "zeta" || defs[1].Name != "alpha" || defs[2].Name != "mid" {
		t.Fatalf("unexpected order: %#v", defs)
	}
}

func TestCatalogGetTrimsName(t *testing.T) {
	cat := NewStatic(Definition{Name: " big ", Description: " decimals ", New: constant(0)})
	def, ok := cat.Get("big")
	if !ok {
		t.Fatalf("expected definition to be found")
	}
	if def.Name != "big" || def.Description != "decimals" {
		t.Fatalf("expected trimmed definition, got %#v", def)
	}
}

func TestCatalogRejectsInvalidDefinitions(t *testing.T) {
	cat := New()
	if err := cat.Advertise(Definition{New: constant(0)}); !errors.Is(err, ferrors.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if err := cat.Advertise(Definition{Name: "x"}); !errors.Is(err, ferrors.ErrResolverRequired) {
		t.Fatalf("expected resolver required, got %v", err)
	}
	cat.MustAdvertise(Definition{Name: "x", New: constant(1)})
	if err := cat.Advertise(Definition{Name: "x", New: constant(2)}); !errors.Is(err, ferrors.ErrDuplicatePlugin) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestMustAdvertisePanicsOnDuplicate(t *testing.T) {
	cat := NewStatic(Definition{Name: "x", New: constant(1)})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	cat.MustAdvertise(Definition{Name: "x", New: constant(2)})
}
