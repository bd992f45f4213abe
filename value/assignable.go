package value

import "reflect"

// IsSafeAssignable reports whether a value of type candidate may be handed to
// a request for requested.
//
// An empty interface accepts anything at the language level, so it is only
// served when the declaration site names it explicitly. A single-argument
// generic interface is served only by its own type argument, since Go
// instantiations with no methods are structurally identical.
func IsSafeAssignable(candidate reflect.Type, requested Type) bool {
	to := requested.Declared
	if candidate == nil || to == nil {
		return false
	}
	info := requested.Info

	if to.Kind() == reflect.Interface && to.NumMethod() == 0 {
		if info == nil {
			return false
		}
		switch len(info.Args) {
		case 0:
			return info.Raw == to
		case 1:
			return namesType(info.Args[0], candidate)
		default:
			return false
		}
	}

	if to.Kind() == reflect.Interface && info != nil && len(info.Args) == 1 {
		return namesType(info.Args[0], candidate) && candidate.AssignableTo(to)
	}

	return candidate.AssignableTo(to)
}

func namesType(arg string, t reflect.Type) bool {
	return arg == TypeKey(t) || arg == t.String()
}
