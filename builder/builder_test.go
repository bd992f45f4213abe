package builder

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/registry"
	"github.com/goliatone/go-autobuild/scope"
	"github.com/goliatone/go-autobuild/value"
)

type Address struct {
	Street string
	City   string
}

type Person struct {
	Name    string
	Age     int
	Address *Address
	Tags    []string
	Role    role
	Blank   blank
	Pet     animal
}

type role int

const (
	roleOwner role = iota
	roleGuest
)

func (role) EnumValues() []any { return []any{roleOwner, roleGuest} }

type blank string

func (blank) EnumValues() []any { return nil }

type animal interface {
	Sound() string
}

type dog struct{ name string }

func (d dog) Sound() string { return d.name + ": woof" }

type cat struct{}

func (cat) Sound() string { return "meow" }

type Node struct {
	Next *Node
}

type Opaque struct {
	Feed chan int
}

type fixed struct {
	v    any
	name string
}

func (f fixed) Resolve(_ context.Context, node *value.Node) (any, error) {
	if node.Type() != reflect.TypeOf(f.v) {
		return nil, value.Decline(node, "type not served")
	}
	return f.v, nil
}

func (f fixed) Name() string { return f.name }

type recorder struct {
	mu     sync.Mutex
	events []value.ResolveEvent
}

func (r *recorder) OnResolve(_ context.Context, event value.ResolveEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func withPet() *Builder[Person] {
	return For[Person](NewFactory()).With("Pet", dog{name: "rex"})
}

func TestRecursiveBuild(t *testing.T) {
	p, err := withPet().Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Address == nil {
		t.Fatalf("expected address to be built")
	}
	if !strings.Contains(p.Address.Street, "Address.Street") || !strings.Contains(p.Address.City, "Address.City") {
		t.Fatalf("expected dotted placeholders, got %#v", p.Address)
	}
	if p.Name != "any_Person.Name" {
		t.Fatalf("unexpected name: %q", p.Name)
	}
	if p.Age != math.MinInt {
		t.Fatalf("expected int sentinel, got %d", p.Age)
	}
	if p.Tags == nil || len(p.Tags) != 0 {
		t.Fatalf("expected empty tags, got %#v", p.Tags)
	}
	if p.Role != roleOwner {
		t.Fatalf("expected first enum constant, got %v", p.Role)
	}
	if p.Blank != "" {
		t.Fatalf("expected zero for uninhabited enum, got %q", p.Blank)
	}
}

func TestDottedOverride(t *testing.T) {
	p, err := withPet().With("Address.City", "London").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Address.City != "London" {
		t.Fatalf("expected override, got %q", p.Address.City)
	}
	if p.Address.Street != "any_Person.Address.Street" {
		t.Fatalf("expected default street, got %q", p.Address.Street)
	}
}

func TestLastWriteWins(t *testing.T) {
	p, err := withPet().With("Name", "a").With("Name", "b").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "b" {
		t.Fatalf("expected last write to win, got %q", p.Name)
	}
}

type Bag struct {
	Value any
	Name  string
}

func TestLastWriteWinsAcrossTypesAndNil(t *testing.T) {
	bag, err := For[Bag](NewFactory()).With("Value", 1).With("Value", "s").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bag.Value != "s" {
		t.Fatalf("expected value of the last write, got %#v", bag.Value)
	}

	bag, err = For[Bag](NewFactory()).With("Name", "x").With("Name", nil).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bag.Name != "" {
		t.Fatalf("expected explicit nil to clear the name, got %q", bag.Name)
	}
}

func TestTopTypeRootIsNotAString(t *testing.T) {
	out, err := For[any](NewFactory()).Build()
	if _, ok := out.(string); ok {
		t.Fatalf("root any must not resolve to a placeholder, got %q", out)
	}
	if !errors.Is(err, ferrors.ErrNoResolverFound) {
		t.Fatalf("expected no resolver for bare any, got %v", err)
	}
}

func TestWithNeverMutatesReceiver(t *testing.T) {
	base := withPet()
	before, err := base.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = base.With("Name", "changed").WithResolver(fixed{v: 7})
	after, err := base.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.Name != after.Name || after.Name == "changed" || after.Age != before.Age {
		t.Fatalf("builder changed: %#v vs %#v", before, after)
	}
	if before.Address == after.Address {
		t.Fatalf("expected fresh instances per build")
	}
}

func TestWithAllAppliesEveryProperty(t *testing.T) {
	p, err := withPet().WithAll(map[string]any{
		"Name":         "Ada",
		"Age":          36,
		"Address.City": "Paris",
	}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ada" || p.Age != 36 || p.Address.City != "Paris" {
		t.Fatalf("unexpected person: %#v", p)
	}
}

func TestLocalValuesOutrankGlobalValues(t *testing.T) {
	reg := registry.New()
	ctx := context.Background()
	_ = reg.RegisterValue(ctx, "Person.Name", "global")
	_ = reg.RegisterValue(ctx, "Person.Pet", cat{})
	f := NewFactory(WithRegistry(reg))

	p, err := For[Person](f).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "global" || p.Pet.Sound() != "meow" {
		t.Fatalf("expected global values, got %#v", p)
	}

	p, err = For[Person](f).With("Name", "local").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "local" {
		t.Fatalf("expected local value to win, got %q", p.Name)
	}
}

func TestLocalValuesOutrankLocalResolvers(t *testing.T) {
	p, err := withPet().WithResolver(fixed{v: "resolver"}).With("Name", "value").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "value" {
		t.Fatalf("expected named value to win, got %q", p.Name)
	}
	if !strings.HasPrefix(p.Address.City, "resolver") {
		t.Fatalf("expected resolver for unbound strings, got %q", p.Address.City)
	}
}

func TestResolversAreLIFO(t *testing.T) {
	p, err := withPet().
		WithResolver(fixed{v: "first"}).
		WithResolver(fixed{v: "second"}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "second" {
		t.Fatalf("expected latest local resolver, got %q", p.Name)
	}

	reg := registry.New()
	_ = reg.RegisterResolver(context.Background(), fixed{v: 1})
	_ = reg.RegisterResolver(context.Background(), fixed{v: 2})
	p, err = For[Person](NewFactory(WithRegistry(reg))).With("Pet", cat{}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Age != 2 {
		t.Fatalf("expected latest global resolver, got %d", p.Age)
	}
}

func TestBuilderSnapshotsGlobalState(t *testing.T) {
	reg := registry.New()
	f := NewFactory(WithRegistry(reg))
	b := For[Person](f).With("Pet", cat{})
	_ = reg.RegisterValue(context.Background(), "Person.Name", "late")
	p, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name == "late" {
		t.Fatalf("builder must not observe later registrations")
	}
}

func TestSupertypePropagation(t *testing.T) {
	b := For[Person](NewFactory()).With("Pet", dog{name: "fido"})
	p, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Pet.Sound() != "fido: woof" {
		t.Fatalf("expected interface request served by concrete binding, got %q", p.Pet.Sound())
	}

	reg := registry.New()
	_ = reg.RegisterValue(context.Background(), "Person.Pet", dog{name: "first"})
	_ = reg.RegisterValue(context.Background(), "Person.Pet", cat{})
	p, err = For[Person](NewFactory(WithRegistry(reg))).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Pet.Sound() != "first: woof" {
		t.Fatalf("expected earliest implementing binding, got %q", p.Pet.Sound())
	}
}

func TestUnresolvableInterfaceReportsEveryResolver(t *testing.T) {
	_, err := For[Person](NewFactory()).Build()
	if !errors.Is(err, ferrors.ErrResolutionFailure) {
		t.Fatalf("expected resolution failure, got %v", err)
	}
	if !errors.Is(err, ferrors.ErrNoResolverFound) {
		t.Fatalf("expected exhausted chain in causes, got %v", err)
	}
	rich, _ := ferrors.As(err)
	for _, name := range []string{"Person.Pet", "builtin", "bean"} {
		if !strings.Contains(rich.Message, name) {
			t.Fatalf("expected %q in message: %s", name, rich.Message)
		}
	}
}

func TestNilResultIsZero(t *testing.T) {
	none := value.ResolverFunc(func(context.Context, *value.Node) (any, error) { return nil, nil })
	a, err := For[*Address](NewFactory()).WithResolver(none).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Fatalf("expected nil result, got %#v", a)
	}

	p, err := withPet().With("Address", nil).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Address != nil {
		t.Fatalf("expected explicit nil to be kept, got %#v", p.Address)
	}
}

func TestInterfaceRootWithoutValue(t *testing.T) {
	_, err := For[animal](NewFactory()).Build()
	if !errors.Is(err, ferrors.ErrNoResolverFound) {
		t.Fatalf("expected no resolver, got %v", err)
	}
	pick := value.ResolverFunc(func(context.Context, *value.Node) (any, error) { return dog{name: "x"}, nil })
	pet, err := For[animal](NewFactory()).WithResolver(pick).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pet.Sound() != "x: woof" {
		t.Fatalf("unexpected pet: %#v", pet)
	}
}

func TestInstantiationFailureSurfaces(t *testing.T) {
	_, err := For[Opaque](NewFactory()).Build()
	if !errors.Is(err, ferrors.ErrInstantiationFailure) {
		t.Fatalf("expected instantiation failure, got %v", err)
	}
}

func TestCycleIsBoundedByDepth(t *testing.T) {
	_, err := For[Node](NewFactory(WithMaxDepth(10))).Build()
	if !errors.Is(err, ferrors.ErrCycleOrDepthExceeded) {
		t.Fatalf("expected depth failure, got %v", err)
	}

	ctx := scope.WithMaxDepth(context.Background(), 3)
	_, err = For[Node](NewFactory()).BuildContext(ctx)
	rich, _ := ferrors.As(err)
	if rich == nil || rich.Metadata[ferrors.MetaMaxDepth] != 3 {
		t.Fatalf("expected context depth override, got %v", err)
	}

	n, err := For[Node](NewFactory()).With("Next.Next", nil).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Next == nil || n.Next.Next != nil {
		t.Fatalf("expected cycle cut by named value, got %#v", n)
	}
}

func TestHooksReceiveLabel(t *testing.T) {
	rec := &recorder{}
	f := NewFactory(WithResolveHook(rec))
	ctx := scope.WithLabel(context.Background(), "suite")
	if _, err := For[Address](f).BuildContext(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.events) != 3 {
		t.Fatalf("expected root and two field events, got %d", len(rec.events))
	}
	last := rec.events[len(rec.events)-1]
	if last.Name != "Address" || last.Label != "suite" || last.Source != "bean" {
		t.Fatalf("unexpected root event: %#v", last)
	}
	if rec.events[0].Source != "builtin" {
		t.Fatalf("expected field resolved by builtin, got %q", rec.events[0].Source)
	}
}

func TestConcurrentBuilds(t *testing.T) {
	b := withPet()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := b.With("Age", i).Build(); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNilBuilderBuildsZero(t *testing.T) {
	var b *Builder[Person]
	p, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "" || p.Address != nil {
		t.Fatalf("expected zero person, got %#v", p)
	}
}
