// Package plugins advertises resolvers for common library types into
// catalog.Default. Import it for its side effects.
package plugins

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goliatone/go-autobuild/catalog"
	"github.com/goliatone/go-autobuild/value"
)

// Definitions lists the plugins of this package in advertisement order.
func Definitions() []catalog.Definition {
	return []catalog.Definition{
		{Name: "big", Description: "zero values for math/big numbers", New: func() value.Resolver { return NewBig() }},
		{Name: "time", Description: "zero instants and UTC locations", New: func() value.Resolver { return NewTime() }},
		{Name: "uuid", Description: "name-based UUIDs", New: func() value.Resolver { return NewUUID() }},
		{Name: "sync", Description: "zero values for sync primitives", New: func() value.Resolver { return NewSync() }},
	}
}

func init() {
	for _, def := range Definitions() {
		catalog.MustAdvertise(def)
	}
}

// Table serves a fixed set of exact types.
type Table struct {
	name   string
	values map[reflect.Type]func(*value.Node) any
}

func newTable(name string) *Table {
	return &Table{name: name, values: map[reflect.Type]func(*value.Node) any{}}
}

func (t *Table) serve(typ reflect.Type, fn func(*value.Node) any) *Table {
	t.values[typ] = fn
	return t
}

func (t *Table) zero(types ...reflect.Type) *Table {
	for _, typ := range types {
		t.values[typ] = func(*value.Node) any { return reflect.Zero(typ).Interface() }
	}
	return t
}

// Name implements value.Named.
func (t *Table) Name() string { return t.name }

// Types returns the number of types served.
func (t *Table) Types() int { return len(t.values) }

// Resolve implements value.Resolver.
func (t *Table) Resolve(_ context.Context, node *value.Node) (any, error) {
	if node == nil || node.Type() == nil {
		return nil, value.Decline(node, "no type to resolve")
	}
	fn, ok := t.values[node.Type()]
	if !ok {
		return nil, value.Decline(node, fmt.Sprintf("%s: %s not served", t.name, node.Type()))
	}
	return fn(node), nil
}

var _ value.Resolver = (*Table)(nil)
