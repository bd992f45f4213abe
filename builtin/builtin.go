package builtin

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/goliatone/go-autobuild/templates"
	"github.com/goliatone/go-autobuild/value"
)

// Resolver is the fixed battery of resolvers for strings, scalars, enums,
// collections and arrays. Values are valid but unusual: minimum signed
// integers, maximum unsigned integers, NaN floats.
type Resolver struct {
	placeholder *templates.Placeholder
}

// Option configures the built-in battery.
type Option func(*Resolver)

// WithPlaceholder renders string placeholders through p.
func WithPlaceholder(p *templates.Placeholder) Option {
	return func(r *Resolver) {
		if r == nil {
			return
		}
		r.placeholder = p
	}
}

// New constructs the built-in battery.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name implements value.Named.
func (r *Resolver) Name() string {
	return "builtin"
}

type stage func(r *Resolver, node *value.Node) (any, bool, error)

// Go enums are named scalar types, so the enum stage precedes the scalar
// stages.
var stages = []stage{
	(*Resolver).enum,
	(*Resolver).text,
	(*Resolver).scalar,
	(*Resolver).collection,
	(*Resolver).array,
}

// Resolve implements value.Resolver.
func (r *Resolver) Resolve(_ context.Context, node *value.Node) (any, error) {
	if node == nil || node.Type() == nil {
		return nil, value.Decline(node, "no type to resolve")
	}
	for _, s := range stages {
		out, ok, err := s(r, node)
		if err != nil {
			return nil, err
		}
		if ok {
			return out, nil
		}
	}
	return nil, value.Decline(node, fmt.Sprintf("no built-in value for %s", node.Type()))
}

func (r *Resolver) enum(node *value.Node) (any, bool, error) {
	values, ok := value.EnumValues(node.Type())
	if !ok {
		return nil, false, nil
	}
	if len(values) == 0 {
		return nil, true, nil
	}
	return values[0], true, nil
}

var stringType = reflect.TypeFor[string]()

func (r *Resolver) text(node *value.Node) (any, bool, error) {
	t := node.Type()
	named := t.Kind() == reflect.String
	if !named && !node.SafeAssignable(stringType) {
		return nil, false, nil
	}
	out, err := r.placeholder.Render(node)
	if err != nil {
		return nil, false, err
	}
	if named {
		return reflect.ValueOf(out).Convert(t).Interface(), true, nil
	}
	return out, true, nil
}

// interfaceCandidates are offered to interface requests, in order.
var interfaceCandidates = []reflect.Type{
	reflect.TypeFor[int](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[bool](),
	reflect.TypeFor[rune](),
}

func (r *Resolver) scalar(node *value.Node) (any, bool, error) {
	t := node.Type()
	if t.Kind() == reflect.Interface {
		for _, candidate := range interfaceCandidates {
			if node.SafeAssignable(candidate) {
				out, _ := Sentinel(candidate)
				return out.Interface(), true, nil
			}
		}
		return nil, false, nil
	}
	out, ok := Sentinel(t)
	if !ok {
		return nil, false, nil
	}
	return out.Interface(), true, nil
}

// Sentinel returns the boundary value used for scalar type t.
func Sentinel(t reflect.Type) (reflect.Value, bool) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int:
		out.SetInt(math.MinInt)
	case reflect.Int8:
		out.SetInt(math.MinInt8)
	case reflect.Int16:
		out.SetInt(math.MinInt16)
	case reflect.Int32:
		out.SetInt(math.MinInt32)
	case reflect.Int64:
		out.SetInt(math.MinInt64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetUint(math.MaxUint64 >> (64 - t.Bits()))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(math.NaN())
	case reflect.Complex64, reflect.Complex128:
		out.SetComplex(complex(math.NaN(), math.NaN()))
	case reflect.Bool:
		out.SetBool(false)
	default:
		return reflect.Value{}, false
	}
	return out, true
}

func (r *Resolver) collection(node *value.Node) (any, bool, error) {
	t := node.Type()
	switch t.Kind() {
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), true, nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), true, nil
	}
	return nil, false, nil
}

func (r *Resolver) array(node *value.Node) (any, bool, error) {
	t := node.Type()
	if t.Kind() != reflect.Array {
		return nil, false, nil
	}
	return reflect.New(t).Elem().Interface(), true, nil
}

var _ value.Resolver = (*Resolver)(nil)
