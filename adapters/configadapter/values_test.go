package configadapter

import (
	"context"
	"reflect"
	"testing"

	"github.com/goliatone/go-config/config"

	"github.com/goliatone/go-autobuild/builder"
	"github.com/goliatone/go-autobuild/registry"
	"github.com/goliatone/go-autobuild/value"
)

type Settings struct {
	Region  string
	Retries int
	Verbose bool
	Debug   bool
	Limits  Limits
}

type Limits struct {
	Burst int
	Rate  float64
}

func TestFlattenNestedMaps(t *testing.T) {
	flat := Flatten(map[string]any{
		"region": "eu",
		"limits": map[string]any{
			"burst": 10,
			"flags": map[string]bool{"strict": true},
		},
		"verbose": config.NewOptionalBool(true),
		"debug":   config.NewOptionalBoolUnset(),
		"  ":      "skipped",
	})
	want := map[string]any{
		"region":              "eu",
		"limits.burst":        10,
		"limits.flags.strict": true,
		"verbose":             true,
	}
	if !reflect.DeepEqual(flat, want) {
		t.Fatalf("unexpected flattening: %#v", flat)
	}
}

func TestFlattenWithDelimiterAndPrefix(t *testing.T) {
	flat := Flatten(map[string]any{"limits__burst": 3}, WithDelimiter("__"), WithPrefix("Settings"))
	if flat["Settings.limits.burst"] != 3 || len(flat) != 1 {
		t.Fatalf("unexpected flattening: %#v", flat)
	}
}

func TestApplyBindsProperties(t *testing.T) {
	b := builder.For[Settings](builder.NewFactory())
	s, err := Apply(b, map[string]any{
		"Region":  "eu-west",
		"Verbose": config.NewOptionalBool(true),
		"Limits":  map[string]any{"Burst": 5, "Rate": 1.5},
	}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Region != "eu-west" || !s.Verbose || s.Limits.Burst != 5 || s.Limits.Rate != 1.5 {
		t.Fatalf("unexpected settings: %#v", s)
	}
}

func TestRegisterAddsGlobalValues(t *testing.T) {
	reg := registry.New()
	err := Register(context.Background(), reg, map[string]any{
		"Retries": 4,
		"Limits":  map[string]any{"Burst": 7},
	}, WithPrefix("Settings"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := builder.For[Settings](builder.NewFactory(builder.WithRegistry(reg))).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Retries != 4 || s.Limits.Burst != 7 {
		t.Fatalf("unexpected settings: %#v", s)
	}
}

func TestNewValuesResolvesDirectly(t *testing.T) {
	store := NewValues(map[string]any{"Settings": map[string]any{"Region": "us"}})
	node := value.NewRequest(store, value.Request{Type: value.TypeOf[string](), Name: "Settings.Region"})
	out, err := node.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Interface() != "us" {
		t.Fatalf("unexpected value: %v", out.Interface())
	}
	if store.Name() != "config-values" {
		t.Fatalf("unexpected store name: %s", store.Name())
	}
}
