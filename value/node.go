package value

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goliatone/go-autobuild/ferrors"
)

// DefaultMaxDepth bounds recursion when no explicit limit is configured.
const DefaultMaxDepth = 64

// Node is the resolution context of one requested value. Nodes form a tree
// rooted at a build request; children resolve through the same root
// resolver as their parent.
type Node struct {
	resolver Resolver
	env      *env
	parent   *Node
	request  Request
	depth    int

	resolved bool
	result   reflect.Value
	err      error
	source   string
}

type env struct {
	maxDepth int
	hooks    []ResolveHook
	label    string
}

// NodeOption configures a root node.
type NodeOption func(*Node)

// WithMaxDepth sets the depth past which resolution fails. Values below one
// keep DefaultMaxDepth.
func WithMaxDepth(depth int) NodeOption {
	return func(n *Node) {
		if n == nil || depth <= 0 {
			return
		}
		n.env.maxDepth = depth
	}
}

// WithHooks registers hooks notified for every node of the tree.
func WithHooks(hooks ...ResolveHook) NodeOption {
	return func(n *Node) {
		if n == nil {
			return
		}
		for _, hook := range hooks {
			if hook != nil {
				n.env.hooks = append(n.env.hooks, hook)
			}
		}
	}
}

// WithLabel tags every event of the tree.
func WithLabel(label string) NodeOption {
	return func(n *Node) {
		if n == nil {
			return
		}
		n.env.label = label
	}
}

// WithAnnotations sets the annotations of the root request.
func WithAnnotations(annotations ...Annotation) NodeOption {
	return func(n *Node) {
		if n == nil {
			return
		}
		n.request.Annotations = append(Annotations(nil), annotations...)
	}
}

// WithInfo sets the generic information of the root request.
func WithInfo(info *TypeInfo) NodeOption {
	return func(n *Node) {
		if n == nil {
			return
		}
		n.request.Type.Info = info
	}
}

// NewRoot creates the root node for t, resolved through resolver.
func NewRoot(resolver Resolver, t reflect.Type, opts ...NodeOption) *Node {
	n := &Node{
		resolver: resolver,
		env:      &env{maxDepth: DefaultMaxDepth},
		request: Request{
			Type: Type{Declared: t},
			Name: SimpleName(t),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// NewRequest creates a root node for an explicit request.
func NewRequest(resolver Resolver, req Request, opts ...NodeOption) *Node {
	n := &Node{
		resolver: resolver,
		env:      &env{maxDepth: DefaultMaxDepth},
		request:  req,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Child creates a node for a nested value. An empty segment keeps the
// parent's name.
func (n *Node) Child(segment string, typ Type, annotations Annotations) *Node {
	name := n.request.Name
	if segment != "" {
		name = name + "." + segment
	}
	return &Node{
		resolver: n.resolver,
		env:      n.env,
		parent:   n,
		depth:    n.depth + 1,
		request: Request{
			Type:        typ,
			Name:        name,
			Annotations: annotations,
		},
	}
}

// Field creates the node for a struct field of n's type.
func (n *Node) Field(field reflect.StructField) *Node {
	annotations, _ := ParseTag(field.Tag)
	return n.Child(field.Name, Declare(field.Type), annotations)
}

// Deref creates a node for the element of a pointer request, under the same
// name and annotations.
func (n *Node) Deref() *Node {
	elem := n.request.Type.Declared.Elem()
	typ := Type{Declared: elem}
	if n.request.Type.Info != nil {
		typ.Info = InfoOf(elem)
	}
	return n.Child("", typ, n.request.Annotations)
}

func (n *Node) Name() string             { return n.request.Name }
func (n *Node) Parent() *Node            { return n.parent }
func (n *Node) Request() Request         { return n.request }
func (n *Node) Type() reflect.Type       { return n.request.Type.Declared }
func (n *Node) Descriptor() Type         { return n.request.Type }
func (n *Node) Annotations() Annotations { return n.request.Annotations }
func (n *Node) Depth() int               { return n.depth }
func (n *Node) Resolved() bool           { return n.resolved }
func (n *Node) Err() error               { return n.err }
func (n *Node) Source() string           { return n.source }
func (n *Node) Label() string            { return n.env.label }
func (n *Node) MaxDepth() int            { return n.env.maxDepth }
func (n *Node) Resolver() Resolver       { return n.resolver }
func (n *Node) Result() reflect.Value    { return n.result }
func (n *Node) Root() *Node              { return n.root() }
func (n *Node) SafeAssignable(t reflect.Type) bool {
	return IsSafeAssignable(t, n.request.Type)
}

func (n *Node) root() *Node {
	current := n
	for current.parent != nil {
		current = current.parent
	}
	return current
}

// SetSource records the resolver that produced the value. The first
// recorded source is kept.
func (n *Node) SetSource(name string) {
	if n.source == "" {
		n.source = name
	}
}

// Resolve runs the root resolver for n once and memoizes the outcome.
func (n *Node) Resolve(ctx context.Context) (reflect.Value, error) {
	if n.resolved {
		return n.result, n.err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		raw any
		err error
	)
	switch {
	case n.depth > n.env.maxDepth:
		err = ferrors.WrapSentinel(ferrors.ErrCycleOrDepthExceeded,
			fmt.Sprintf("resolving %s exceeds max depth %d", n.Name(), n.env.maxDepth),
			map[string]any{
				ferrors.MetaName:     n.Name(),
				ferrors.MetaType:     typeString(n.Type()),
				ferrors.MetaDepth:    n.depth,
				ferrors.MetaMaxDepth: n.env.maxDepth,
			})
	case n.resolver == nil:
		err = ferrors.WrapSentinel(ferrors.ErrResolverRequired, "", map[string]any{
			ferrors.MetaName: n.Name(),
		})
	default:
		raw, err = n.resolver.Resolve(ctx, n)
	}

	if err == nil {
		result, ok := Coerce(raw, n.Type())
		if ok {
			n.result = result
		} else {
			err = ferrors.WrapSentinel(ferrors.ErrTypeMismatch,
				fmt.Sprintf("%T is not assignable to %s for %s", raw, typeString(n.Type()), n.Name()),
				map[string]any{
					ferrors.MetaName:      n.Name(),
					ferrors.MetaType:      typeString(n.Type()),
					ferrors.MetaValueType: fmt.Sprintf("%T", raw),
					ferrors.MetaResolver:  n.source,
				})
		}
	}
	n.err = err
	n.resolved = true
	n.emit(ctx)
	return n.result, n.err
}

func (n *Node) emit(ctx context.Context) {
	if len(n.env.hooks) == 0 {
		return
	}
	event := ResolveEvent{
		Name:   n.Name(),
		Type:   n.Type(),
		Depth:  n.depth,
		Source: n.source,
		Label:  n.env.label,
		Error:  n.err,
	}
	if n.err == nil && n.result.IsValid() && n.result.CanInterface() {
		event.Value = n.result.Interface()
	}
	for _, hook := range n.env.hooks {
		hook.OnResolve(ctx, event)
	}
}
