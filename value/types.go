package value

import (
	"reflect"
	"strings"
)

// Type describes a requested type: the declared type plus the generic
// information known at the request site.
type Type struct {
	Declared reflect.Type
	Info     *TypeInfo
}

// TypeInfo is the generic signature of a declaration. Args holds the type
// argument names of an instantiated generic type.
type TypeInfo struct {
	Raw  reflect.Type
	Args []string
}

// Request identifies what must be produced.
type Request struct {
	Type        Type
	Name        string
	Annotations Annotations
}

// TypeOf returns a descriptor for T without generic information.
func TypeOf[T any]() Type {
	return Type{Declared: reflect.TypeFor[T]()}
}

// Declare returns a descriptor for t carrying the generic information of a
// declaration site.
func Declare(t reflect.Type) Type {
	return Type{Declared: t, Info: InfoOf(t)}
}

// InfoOf derives generic information from a declared type.
func InfoOf(t reflect.Type) *TypeInfo {
	if t == nil {
		return nil
	}
	return &TypeInfo{Raw: t, Args: typeArgs(t.Name())}
}

func typeArgs(name string) []string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return nil
	}
	inner := name[open+1 : len(name)-1]
	var (
		args  []string
		depth int
		start int
	)
	for i, r := range inner {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(inner[start:]); last != "" {
		args = append(args, last)
	}
	return args
}

// TypeKey returns the fully qualified name of t.
func TypeKey(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// SimpleName returns the root segment used for dotted names of t.
func SimpleName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
