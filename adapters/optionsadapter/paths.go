package optionsadapter

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-autobuild/ferrors"
)

// propertyPath is a dotted property name split into Go field names, such as
// Order.Address.City.
type propertyPath []string

// parsePath validates name as a dotted property path. Every segment must be
// a Go identifier.
func parsePath(name string) (propertyPath, error) {
	name = strings.TrimSpace(name)
	if strings.Trim(name, ". ") == "" {
		return nil, ferrors.WrapSentinel(ferrors.ErrInvalidName, "optionsadapter: value name required", map[string]any{
			ferrors.MetaPath: name,
		})
	}
	segments := strings.Split(name, ".")
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if !isIdentifier(segment) {
			return nil, ferrors.WrapSentinel(ferrors.ErrPathInvalid, "optionsadapter: "+name+" has an invalid segment "+segment, map[string]any{
				ferrors.MetaPath:  name,
				ferrors.MetaField: segment,
			})
		}
		segments[i] = segment
	}
	return propertyPath(segments), nil
}

func isIdentifier(segment string) bool {
	if segment == "" {
		return false
	}
	for i, r := range segment {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func (p propertyPath) String() string {
	return strings.Join(p, ".")
}

// get reads p from a layer. Layers may hold flat dotted keys, nested maps,
// or a mix of both.
func (p propertyPath) get(layer map[string]any) (any, bool) {
	if len(p) == 0 || len(layer) == 0 {
		return nil, false
	}
	for i := len(p); i > 0; i-- {
		v, ok := layer[p[:i].String()]
		if !ok {
			continue
		}
		if i == len(p) {
			return v, true
		}
		child, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		return p[i:].get(child)
	}
	return nil, false
}

// put writes v at p. A flat dotted key already holding p is updated in
// place; otherwise intermediate maps are created. A segment already bound
// to a value cannot hold nested properties.
func (p propertyPath) put(layer map[string]any, v any) error {
	if _, ok := layer[p.String()]; ok {
		layer[p.String()] = v
		return nil
	}
	current := layer
	for i, segment := range p[:len(p)-1] {
		next, ok := current[segment]
		if !ok {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return ferrors.WrapSentinel(ferrors.ErrPathInvalid, "optionsadapter: "+p[:i+1].String()+" holds a value", map[string]any{
				ferrors.MetaPath:  p.String(),
				ferrors.MetaField: segment,
			})
		}
		current = child
	}
	current[p[len(p)-1]] = v
	return nil
}

// remove deletes p and prunes maps it leaves empty.
func (p propertyPath) remove(layer map[string]any) bool {
	if len(p) == 0 || len(layer) == 0 {
		return false
	}
	if _, ok := layer[p.String()]; ok {
		delete(layer, p.String())
		return true
	}
	if len(p) == 1 {
		return false
	}
	child, ok := layer[p[0]].(map[string]any)
	if !ok || !p[1:].remove(child) {
		return false
	}
	if len(child) == 0 {
		delete(layer, p[0])
	}
	return true
}

// flattenLayer writes the leaves of layer into out under dotted property
// names, replacing existing entries. Keys that are not property paths are
// skipped.
func flattenLayer(prefix propertyPath, layer map[string]any, out map[string]any) {
	for key, v := range layer {
		segments, err := parsePath(key)
		if err != nil {
			continue
		}
		path := append(append(propertyPath{}, prefix...), segments...)
		if child, ok := v.(map[string]any); ok {
			flattenLayer(path, child, out)
			continue
		}
		out[path.String()] = v
	}
}
