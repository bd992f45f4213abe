package plugins

import (
	"reflect"
	"time"

	"github.com/goliatone/go-autobuild/value"
)

// NewTime serves time.Time with the zero instant, time.Duration with zero
// and *time.Location with UTC.
func NewTime() *Table {
	return newTable("time").
		zero(reflect.TypeFor[time.Time](), reflect.TypeFor[time.Duration]()).
		serve(reflect.TypeFor[*time.Time](), func(*value.Node) any { return new(time.Time) }).
		serve(reflect.TypeFor[*time.Location](), func(*value.Node) any { return time.UTC })
}
