package plugins

import (
	"math/big"
	"reflect"

	"github.com/goliatone/go-autobuild/value"
)

// NewBig serves big.Int, big.Float and big.Rat, by value and by pointer,
// with zero.
func NewBig() *Table {
	return newTable("big").
		zero(
			reflect.TypeFor[big.Int](),
			reflect.TypeFor[big.Float](),
			reflect.TypeFor[big.Rat](),
		).
		serve(reflect.TypeFor[*big.Int](), func(*value.Node) any { return new(big.Int) }).
		serve(reflect.TypeFor[*big.Float](), func(*value.Node) any { return new(big.Float) }).
		serve(reflect.TypeFor[*big.Rat](), func(*value.Node) any { return new(big.Rat) })
}
