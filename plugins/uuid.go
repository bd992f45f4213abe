package plugins

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

// UUID serves uuid.UUID with a SHA1 name-based UUID derived from the
// request name, so the same field always gets the same identifier.
type UUID struct {
	namespace uuid.UUID
}

// UUIDOption configures the UUID resolver.
type UUIDOption func(*UUID)

// WithNamespace sets the namespace UUIDs are derived in.
func WithNamespace(ns uuid.UUID) UUIDOption {
	return func(u *UUID) {
		if u == nil {
			return
		}
		u.namespace = ns
	}
}

// NewUUID constructs the UUID resolver in the OID namespace.
func NewUUID(opts ...UUIDOption) *UUID {
	u := &UUID{namespace: uuid.NameSpaceOID}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// Name implements value.Named.
func (u *UUID) Name() string { return "uuid" }

// Init implements value.Initializer.
func (u *UUID) Init(context.Context) error {
	if u.namespace == uuid.Nil {
		return ferrors.NewBadInput(ferrors.TextCodePluginInitFailed, "uuid namespace must not be nil", map[string]any{
			ferrors.MetaPlugin: u.Name(),
		})
	}
	return nil
}

var (
	uuidType    = reflect.TypeFor[uuid.UUID]()
	uuidPtrType = reflect.TypeFor[*uuid.UUID]()
)

// Resolve implements value.Resolver.
func (u *UUID) Resolve(_ context.Context, node *value.Node) (any, error) {
	if node == nil {
		return nil, value.Decline(node, "no type to resolve")
	}
	switch node.Type() {
	case uuidType:
		return u.For(node.Name()), nil
	case uuidPtrType:
		id := u.For(node.Name())
		return &id, nil
	}
	return nil, value.Decline(node, "uuid: "+typeLabel(node.Type())+" not served")
}

// For returns the UUID derived for name.
func (u *UUID) For(name string) uuid.UUID {
	return uuid.NewSHA1(u.namespace, []byte(name))
}

func typeLabel(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

var (
	_ value.Resolver    = (*UUID)(nil)
	_ value.Initializer = (*UUID)(nil)
)
