package value

import (
	"math"
	"reflect"
)

// Coerce adapts v to t. nil becomes the zero value of t. Assignable values
// are used as is; scalars convert when the target kind can hold them without
// loss (an int literal fills an int64, uint8 or float64 field).
func Coerce(v any, t reflect.Type) (reflect.Value, bool) {
	if t == nil {
		return reflect.Value{}, false
	}
	if v == nil {
		return reflect.Zero(t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return rv, true
	}
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, true
	}
	return ConvertScalar(rv, t)
}

// ConvertScalar converts a scalar value to the scalar type t when no
// information is lost.
func ConvertScalar(rv reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !rv.IsValid() || t == nil || !rv.CanConvert(t) {
		return reflect.Value{}, false
	}
	target := reflect.New(t).Elem()
	from := rv.Kind()
	switch {
	case isSigned(t.Kind()):
		switch {
		case isSigned(from):
			if target.OverflowInt(rv.Int()) {
				return reflect.Value{}, false
			}
		case isUnsigned(from):
			if rv.Uint() > math.MaxInt64 || target.OverflowInt(int64(rv.Uint())) {
				return reflect.Value{}, false
			}
		default:
			return reflect.Value{}, false
		}
	case isUnsigned(t.Kind()):
		switch {
		case isSigned(from):
			if rv.Int() < 0 || target.OverflowUint(uint64(rv.Int())) {
				return reflect.Value{}, false
			}
		case isUnsigned(from):
			if target.OverflowUint(rv.Uint()) {
				return reflect.Value{}, false
			}
		default:
			return reflect.Value{}, false
		}
	case isFloat(t.Kind()):
		switch {
		case isFloat(from):
			if target.OverflowFloat(rv.Float()) {
				return reflect.Value{}, false
			}
		case isSigned(from), isUnsigned(from):
		default:
			return reflect.Value{}, false
		}
	case isComplex(t.Kind()):
		if !isComplex(from) || target.OverflowComplex(rv.Complex()) {
			return reflect.Value{}, false
		}
	case t.Kind() == reflect.String:
		if from != reflect.String {
			return reflect.Value{}, false
		}
	case t.Kind() == reflect.Bool:
		if from != reflect.Bool {
			return reflect.Value{}, false
		}
	default:
		return reflect.Value{}, false
	}
	return rv.Convert(t), true
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isComplex(k reflect.Kind) bool {
	return k == reflect.Complex64 || k == reflect.Complex128
}
