package bean

import (
	"context"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/viant/xunsafe"

	"github.com/goliatone/go-autobuild/cache"
	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

// Field is the resolution plan for one struct field.
type Field struct {
	Name   string
	Struct reflect.StructField
	access *xunsafe.Field
}

// Resolver allocates arbitrary types without constructors and fills every
// declared field through the root resolver of the request.
type Resolver struct {
	plans cache.Cache[reflect.Type, []Field]
}

// Option configures the bean resolver.
type Option func(*Resolver)

// WithCache stores field plans in c.
func WithCache(c cache.Cache[reflect.Type, []Field]) Option {
	return func(r *Resolver) {
		if r == nil || c == nil {
			return
		}
		r.plans = c
	}
}

// New constructs a bean resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{plans: cache.NewMemory[reflect.Type, []Field]()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name implements value.Named.
func (r *Resolver) Name() string {
	return "bean"
}

// Resolve implements value.Resolver.
func (r *Resolver) Resolve(ctx context.Context, node *value.Node) (any, error) {
	if node == nil || node.Type() == nil {
		return nil, value.Decline(node, "no type to instantiate")
	}
	t := node.Type()
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, ferrors.WrapSentinel(ferrors.ErrInstantiationFailure,
			fmt.Sprintf("cannot instantiate %s: %s types have no allocation path", t, t.Kind()),
			map[string]any{
				ferrors.MetaName: node.Name(),
				ferrors.MetaType: t.String(),
			})
	case reflect.Pointer:
		return r.pointer(ctx, node)
	case reflect.Struct:
		return r.populate(ctx, node)
	default:
		return reflect.New(t).Elem().Interface(), nil
	}
}

func (r *Resolver) pointer(ctx context.Context, node *value.Node) (any, error) {
	elem := node.Deref()
	out, err := elem.Resolve(ctx)
	if err != nil {
		return nil, failure(elem, err)
	}
	ptr := reflect.New(node.Type().Elem())
	ptr.Elem().Set(out)
	return ptr.Interface(), nil
}

func (r *Resolver) populate(ctx context.Context, node *value.Node) (any, error) {
	t := node.Type()
	ptr := reflect.New(t)
	base := xunsafe.AsPointer(ptr.Interface())
	for _, f := range r.Plan(t) {
		child := node.Field(f.Struct)
		out, err := child.Resolve(ctx)
		if err != nil {
			return nil, failure(child, err)
		}
		if err := assign(base, f, out); err != nil {
			return nil, resolutionFailure(child, err)
		}
	}
	return ptr.Elem().Interface(), nil
}

// Plan returns the fields of struct type t filled by the resolver, in
// declaration order. Blank fields and fields tagged `autobuild:"-"` are
// left at their zero value.
func (r *Resolver) Plan(t reflect.Type) []Field {
	if plan, ok := r.plans.Get(t); ok {
		return plan
	}
	plan := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			continue
		}
		if _, skip := value.ParseTag(sf.Tag); skip {
			continue
		}
		plan = append(plan, Field{
			Name:   sf.Name,
			Struct: sf,
			access: xunsafe.NewField(sf),
		})
	}
	r.plans.Set(t, plan)
	return plan
}

func assign(base unsafe.Pointer, f Field, v reflect.Value) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("assign %s: %v", f.Name, rec)
		}
	}()
	target := reflect.NewAt(f.Struct.Type, f.access.Pointer(base)).Elem()
	target.Set(v)
	return nil
}

// failure wraps a declined child error. Fatal errors already carry the path
// of the field that failed first and pass through unchanged.
func failure(child *value.Node, err error) error {
	if ferrors.IsFatal(err) {
		return err
	}
	return resolutionFailure(child, err)
}

func resolutionFailure(child *value.Node, err error) error {
	return ferrors.WrapCause(ferrors.ErrResolutionFailure,
		fmt.Sprintf("cannot resolve %s: %s", child.Name(), message(err)),
		map[string]any{
			ferrors.MetaName:  child.Name(),
			ferrors.MetaField: lastSegment(child.Name()),
			ferrors.MetaType:  typeName(child.Type()),
		}, err)
}

func message(err error) string {
	if rich, ok := ferrors.As(err); ok && rich.Message != "" {
		return rich.Message
	}
	return err.Error()
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

var _ value.Resolver = (*Resolver)(nil)
