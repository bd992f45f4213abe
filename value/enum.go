package value

import "reflect"

// Enumerable is implemented by named types that expose their declared
// constants, in declaration order.
type Enumerable interface {
	EnumValues() []any
}

var enumerableType = reflect.TypeFor[Enumerable]()

// EnumValues returns the constants of t when t is an enum type.
func EnumValues(t reflect.Type) ([]any, bool) {
	if t == nil || t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return nil, false
	}
	if !t.Implements(enumerableType) {
		return nil, false
	}
	enum, ok := reflect.Zero(t).Interface().(Enumerable)
	if !ok {
		return nil, false
	}
	return enum.EnumValues(), true
}
