package templates

import (
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

// DefaultSource renders the same text as the built-in placeholder.
const DefaultSource = "any_{{ name }}"

// Template context keys available to placeholder sources.
const (
	KeyName        = "name"
	KeyField       = "field"
	KeyType        = "type"
	KeyAnnotations = "annotations"
	KeyDepth       = "depth"
	KeyLabel       = "label"
)

// Placeholder renders placeholder strings from a pongo2 template.
type Placeholder struct {
	source string
	tpl    *pongo2.Template
}

// NewPlaceholder compiles source.
func NewPlaceholder(source string) (*Placeholder, error) {
	if strings.TrimSpace(source) == "" {
		source = DefaultSource
	}
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, ferrors.WrapCause(ferrors.ErrTemplateInvalid, "", map[string]any{
			ferrors.MetaOperation: "compile",
		}, err)
	}
	return &Placeholder{source: source, tpl: tpl}, nil
}

// MustPlaceholder is like NewPlaceholder but panics on invalid sources.
func MustPlaceholder(source string) *Placeholder {
	p, err := NewPlaceholder(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the template source.
func (p *Placeholder) Source() string {
	if p == nil {
		return DefaultSource
	}
	return p.source
}

// Render produces the placeholder text for node.
func (p *Placeholder) Render(node *value.Node) (string, error) {
	if p == nil || p.tpl == nil {
		return "any_" + node.Name(), nil
	}
	out, err := p.tpl.Execute(Context(node))
	if err != nil {
		return "", ferrors.Wrap(err, ferrors.ErrTemplateInvalid.Category, ferrors.TextCodeTemplateRenderFailure, "", map[string]any{
			ferrors.MetaName:      node.Name(),
			ferrors.MetaOperation: "render",
		})
	}
	return out, nil
}

// Context exposes node to templates.
func Context(node *value.Node) pongo2.Context {
	name := node.Name()
	field := name
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		field = name[idx+1:]
	}
	typ := ""
	if node.Type() != nil {
		typ = node.Type().String()
	}
	return pongo2.Context{
		KeyName:        name,
		KeyField:       field,
		KeyType:        typ,
		KeyAnnotations: node.Annotations().Strings(),
		KeyDepth:       node.Depth(),
		KeyLabel:       node.Label(),
	}
}
