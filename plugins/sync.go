package plugins

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-autobuild/value"
)

// NewSync serves lock and atomic types with their zero value. Pointer
// fields get a fresh zero instance.
func NewSync() *Table {
	types := []reflect.Type{
		reflect.TypeFor[sync.Mutex](),
		reflect.TypeFor[sync.RWMutex](),
		reflect.TypeFor[sync.Once](),
		reflect.TypeFor[sync.WaitGroup](),
		reflect.TypeFor[sync.Map](),
		reflect.TypeFor[atomic.Bool](),
		reflect.TypeFor[atomic.Int32](),
		reflect.TypeFor[atomic.Int64](),
		reflect.TypeFor[atomic.Uint32](),
		reflect.TypeFor[atomic.Uint64](),
		reflect.TypeFor[atomic.Value](),
	}
	t := newTable("sync").zero(types...)
	for _, typ := range types {
		ptr := reflect.PointerTo(typ)
		t.serve(ptr, func(*value.Node) any { return reflect.New(typ).Interface() })
	}
	return t
}
