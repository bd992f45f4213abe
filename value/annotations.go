package value

import (
	"reflect"
	"strings"
)

// TagName is the struct tag key read for field annotations.
const TagName = "autobuild"

// Annotation marks a field, e.g. `autobuild:"email"`.
type Annotation string

// Annotations is the annotation set of a request.
type Annotations []Annotation

// Has reports whether a is present.
func (as Annotations) Has(a Annotation) bool {
	for _, candidate := range as {
		if candidate == a {
			return true
		}
	}
	return false
}

// Missing returns the required annotations not present in as.
func (as Annotations) Missing(required Annotations) Annotations {
	var out Annotations
	for _, a := range required {
		if !as.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (as Annotations) Strings() []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, string(a))
	}
	return out
}

// ParseTag reads the autobuild tag of a struct field. skip is true for
// fields tagged `autobuild:"-"`.
func ParseTag(tag reflect.StructTag) (annotations Annotations, skip bool) {
	raw, ok := tag.Lookup(TagName)
	if !ok {
		return nil, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		return nil, true
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		annotations = append(annotations, Annotation(part))
	}
	return annotations, false
}
