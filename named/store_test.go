package named

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

type label string

func (l label) String() string { return string(l) }

type title string

func (t title) String() string { return "title:" + string(t) }

type age uint8

func resolveAs[T any](t *testing.T, s Store, name string, annotations ...value.Annotation) (T, error) {
	t.Helper()
	node := value.NewRequest(nil, value.Request{
		Type:        value.TypeOf[T](),
		Name:        name,
		Annotations: annotations,
	})
	var zero T
	raw, err := s.Resolve(context.Background(), node)
	if err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, nil
	}
	return raw.(T), nil
}

func TestAddIsImmutable(t *testing.T) {
	empty := New()
	one := empty.Add("Person.name", "Ada")
	if empty.Len() != 0 {
		t.Fatalf("expected receiver to stay empty")
	}
	if one.Len() != 1 {
		t.Fatalf("expected one binding, got %d", one.Len())
	}
	two := one.Add("Person.age", 37)
	if one.Len() != 1 || two.Len() != 2 {
		t.Fatalf("expected independent versions")
	}
}

func TestResolveExactType(t *testing.T) {
	s := New().Add("Person.name", "Ada")
	got, err := resolveAs[string](t, s, "Person.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Ada" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestResolveNotFound(t *testing.T) {
	s := New().Add("Person.name", "Ada")
	_, err := resolveAs[string](t, s, "Person.other")
	if !errors.Is(err, ferrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !ferrors.IsDeclined(err) {
		t.Fatalf("not found must be a decline")
	}
}

func TestAddFirstRegistrationWins(t *testing.T) {
	s := New().Add("Person.name", "first").Add("Person.name", "second")
	got, err := resolveAs[string](t, s, "Person.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "first" {
		t.Fatalf("expected first registration to win, got %q", got)
	}
}

func TestOverrideLastWriteWins(t *testing.T) {
	base := New().Override("Person.name", "first")
	next := base.Override("Person.name", "second")
	got, err := resolveAs[string](t, next, "Person.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected last write to win, got %q", got)
	}
	if before, _ := resolveAs[string](t, base, "Person.name"); before != "first" {
		t.Fatalf("expected receiver unchanged, got %q", before)
	}
	if next.Len() != 1 {
		t.Fatalf("override must replace in place, got %d bindings", next.Len())
	}
}

func TestOverrideReplacesOtherTypes(t *testing.T) {
	s := New().Override("Thing.value", 1).Override("Thing.value", "s")
	if s.Len() != 1 {
		t.Fatalf("expected a single binding, got %d", s.Len())
	}
	got, err := resolveAs[any](t, s, "Thing.value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s" {
		t.Fatalf("expected last write to win across types, got %#v", got)
	}

	cleared := s.Override("Thing.value", nil)
	text, err := resolveAs[string](t, cleared, "Thing.value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected nil to replace the string binding, got %q", text)
	}
	if !cleared.Bindings()[0].Wildcard() {
		t.Fatalf("expected wildcard binding after nil override")
	}
}

func TestDistinctTypesUnderSameName(t *testing.T) {
	s := New().Add("Thing.value", "text").Add("Thing.value", 42)
	text, err := resolveAs[string](t, s, "Thing.value")
	if err != nil || text != "text" {
		t.Fatalf("unexpected string: %q %v", text, err)
	}
	number, err := resolveAs[int](t, s, "Thing.value")
	if err != nil || number != 42 {
		t.Fatalf("unexpected int: %d %v", number, err)
	}
}

func TestInterfacePropagationFirstWins(t *testing.T) {
	s := New().Add("Doc.title", label("a")).Add("Doc.title", title("b"))
	got, err := resolveAs[fmt.Stringer](t, s, "Doc.title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "a" {
		t.Fatalf("expected earliest implementation, got %q", got.String())
	}
	exact, err := resolveAs[title](t, s, "Doc.title")
	if err != nil || exact != "b" {
		t.Fatalf("expected exact binding, got %q %v", exact, err)
	}
}

func TestWildcardBinding(t *testing.T) {
	s := New().Add("Person.address", nil)
	got, err := resolveAs[*struct{ City string }](t, s, "Person.address")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
	number, err := resolveAs[int](t, s, "Person.address")
	if err != nil || number != 0 {
		t.Fatalf("expected zero value from wildcard, got %d %v", number, err)
	}
}

func TestConvertibleScalarFallback(t *testing.T) {
	s := New().Add("Person.age", 37)
	got, err := resolveAs[age](t, s, "Person.age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 37 {
		t.Fatalf("unexpected age: %d", got)
	}

	tooBig := New().Add("Person.age", 1000)
	if _, err := resolveAs[age](t, tooBig, "Person.age"); !errors.Is(err, ferrors.ErrNotFound) {
		t.Fatalf("expected overflow to miss, got %v", err)
	}
}

func TestRequiredAnnotations(t *testing.T) {
	s := New().Add("User.email", "a@example.com", "email")
	if _, err := resolveAs[string](t, s, "User.email"); !errors.Is(err, ferrors.ErrMissingAnnotation) {
		t.Fatalf("expected missing annotation, got %v", err)
	}
	got, err := resolveAs[string](t, s, "User.email", "email", "nonblank")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a@example.com" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestNamesAndLabel(t *testing.T) {
	s := New().Add("b", 1).Add("a", 2).Add("b", "x")
	names := s.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
	if s.Name() != "named-values" || s.As("local").Name() != "local" {
		t.Fatalf("unexpected labels")
	}
	if value.NameOf(s.As("global")) != "global" {
		t.Fatalf("expected NameOf to use the label")
	}
}
