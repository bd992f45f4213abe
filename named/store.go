package named

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

const defaultLabel = "named-values"

// Binding is a registered named value.
type Binding struct {
	Name     string
	Type     reflect.Type
	Value    any
	Required value.Annotations
}

// Wildcard reports whether the binding matches any requested type.
func (b Binding) Wildcard() bool {
	return b.Type == nil
}

type key struct {
	name string
	typ  reflect.Type
}

// Store is an immutable set of named values. Every mutation returns a new
// Store; the receiver is never changed and may be shared freely.
type Store struct {
	label    string
	bindings []Binding
	index    map[key]int
}

// New returns an empty store.
func New() Store {
	return Store{label: defaultLabel}
}

// As returns a copy of s reported under label in diagnostics.
func (s Store) As(label string) Store {
	s.label = label
	return s
}

// Name implements value.Named.
func (s Store) Name() string {
	if s.label == "" {
		return defaultLabel
	}
	return s.label
}

// Len returns the number of bindings.
func (s Store) Len() int {
	return len(s.bindings)
}

// Bindings returns the bindings in registration order.
func (s Store) Bindings() []Binding {
	return append([]Binding(nil), s.bindings...)
}

// Names returns the distinct bound names, sorted.
func (s Store) Names() []string {
	seen := map[string]struct{}{}
	names := make([]string, 0, len(s.bindings))
	for _, b := range s.bindings {
		if _, ok := seen[b.Name]; ok {
			continue
		}
		seen[b.Name] = struct{}{}
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

// Add binds v under name and its runtime type. A nil value binds the
// wildcard type. An existing binding for the same name and type is kept.
func (s Store) Add(name string, v any, required ...value.Annotation) Store {
	k := key{name: name, typ: reflect.TypeOf(v)}
	if _, ok := s.index[k]; ok {
		return s
	}
	return s.with(k, v, required, -1)
}

// Override binds v under name, dropping every earlier binding for name
// whatever its type. A nil value rebinds name to the wildcard.
func (s Store) Override(name string, v any, required ...value.Annotation) Store {
	return s.without(name).with(key{name: name, typ: reflect.TypeOf(v)}, v, required, -1)
}

func (s Store) without(name string) Store {
	next := Store{
		label:    s.label,
		bindings: make([]Binding, 0, len(s.bindings)),
		index:    make(map[key]int, len(s.index)),
	}
	for _, b := range s.bindings {
		if b.Name == name {
			continue
		}
		next.index[key{name: b.Name, typ: b.Type}] = len(next.bindings)
		next.bindings = append(next.bindings, b)
	}
	return next
}

func (s Store) with(k key, v any, required []value.Annotation, pos int) Store {
	b := Binding{
		Name:     k.name,
		Type:     k.typ,
		Value:    v,
		Required: append(value.Annotations(nil), required...),
	}
	next := Store{
		label:    s.label,
		bindings: make([]Binding, len(s.bindings), len(s.bindings)+1),
		index:    make(map[key]int, len(s.index)+1),
	}
	copy(next.bindings, s.bindings)
	for existing, i := range s.index {
		next.index[existing] = i
	}
	if pos >= 0 {
		next.bindings[pos] = b
		return next
	}
	next.index[k] = len(next.bindings)
	next.bindings = append(next.bindings, b)
	return next
}

// Lookup finds the binding serving name for t: the exact type first, then
// the earliest binding implementing an interface request, then the
// wildcard, then a scalar binding convertible to t.
func (s Store) Lookup(name string, t reflect.Type) (Binding, bool) {
	if len(s.bindings) == 0 || t == nil {
		return Binding{}, false
	}
	if i, ok := s.index[key{name: name, typ: t}]; ok {
		return s.bindings[i], true
	}
	if t.Kind() == reflect.Interface {
		for _, b := range s.bindings {
			if b.Name == name && b.Type != nil && b.Type.Implements(t) {
				return b, true
			}
		}
	}
	if i, ok := s.index[key{name: name}]; ok {
		return s.bindings[i], true
	}
	for _, b := range s.bindings {
		if b.Name != name || b.Type == nil {
			continue
		}
		if _, ok := value.ConvertScalar(reflect.ValueOf(b.Value), t); ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Resolve implements value.Resolver.
func (s Store) Resolve(_ context.Context, node *value.Node) (any, error) {
	if node == nil {
		return nil, value.Decline(node, "node is required")
	}
	name, typ := node.Name(), node.Type()
	b, ok := s.Lookup(name, typ)
	if !ok {
		return nil, ferrors.WrapSentinel(ferrors.ErrNotFound,
			fmt.Sprintf("no named value for %s of type %s", name, typeName(typ)),
			map[string]any{
				ferrors.MetaName: name,
				ferrors.MetaType: typeName(typ),
			})
	}
	if missing := node.Annotations().Missing(b.Required); len(missing) > 0 {
		return nil, ferrors.WrapSentinel(ferrors.ErrMissingAnnotation,
			fmt.Sprintf("named value %s requires annotations %v", name, missing.Strings()),
			map[string]any{
				ferrors.MetaName:       name,
				ferrors.MetaType:       typeName(typ),
				ferrors.MetaAnnotation: missing.Strings(),
			})
	}
	out, ok := value.Coerce(b.Value, typ)
	if !ok {
		return nil, ferrors.WrapSentinel(ferrors.ErrTypeMismatch,
			fmt.Sprintf("named value %s of type %s is not assignable to %s", name, typeName(b.Type), typeName(typ)),
			map[string]any{
				ferrors.MetaName:      name,
				ferrors.MetaType:      typeName(typ),
				ferrors.MetaValueType: typeName(b.Type),
			})
	}
	return out.Interface(), nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "*"
	}
	return t.String()
}

var _ value.Resolver = Store{}
