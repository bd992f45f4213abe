package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

// Chain is an immutable ordered composite of resolvers. The first member to
// succeed wins; declined members are skipped and reported if every member
// declines.
type Chain struct {
	name      string
	resolvers []value.Resolver
	lifo      bool
}

// New returns a chain consulting resolvers in insertion order.
func New(resolvers ...value.Resolver) Chain {
	return Chain{name: "chain"}.addAll(resolvers)
}

// NewLIFO returns a chain consulting the most recently added resolver first.
func NewLIFO(resolvers ...value.Resolver) Chain {
	return Chain{name: "chain", lifo: true}.addAll(resolvers)
}

// As returns a copy of c reported under name in diagnostics.
func (c Chain) As(name string) Chain {
	c.name = name
	return c
}

// Name implements value.Named.
func (c Chain) Name() string {
	return c.name
}

// Add returns a chain that also consults r. The receiver is unchanged.
func (c Chain) Add(r value.Resolver) Chain {
	if r == nil {
		return c
	}
	// full slice expression: append always copies.
	c.resolvers = append(c.resolvers[:len(c.resolvers):len(c.resolvers)], r)
	return c
}

func (c Chain) addAll(resolvers []value.Resolver) Chain {
	for _, r := range resolvers {
		c = c.Add(r)
	}
	return c
}

// Len returns the number of members.
func (c Chain) Len() int {
	return len(c.resolvers)
}

// LIFO reports whether the newest member is consulted first.
func (c Chain) LIFO() bool {
	return c.lifo
}

// Resolvers returns the members in consultation order.
func (c Chain) Resolvers() []value.Resolver {
	out := make([]value.Resolver, 0, len(c.resolvers))
	c.each(func(r value.Resolver) bool {
		out = append(out, r)
		return true
	})
	return out
}

func (c Chain) each(fn func(value.Resolver) bool) {
	if c.lifo {
		for i := len(c.resolvers) - 1; i >= 0; i-- {
			if !fn(c.resolvers[i]) {
				return
			}
		}
		return
	}
	for _, r := range c.resolvers {
		if !fn(r) {
			return
		}
	}
}

// Resolve implements value.Resolver.
func (c Chain) Resolve(ctx context.Context, node *value.Node) (any, error) {
	var (
		result   any
		fatal    error
		resolved bool
		failures []failure
	)
	c.each(func(r value.Resolver) bool {
		out, err := r.Resolve(ctx, node)
		if err == nil {
			result, resolved = out, true
			if node != nil {
				node.SetSource(value.NameOf(r))
			}
			return false
		}
		if ferrors.IsFatal(err) {
			fatal = err
			return false
		}
		failures = append(failures, failure{resolver: value.NameOf(r), err: err})
		return true
	})
	if fatal != nil {
		return nil, fatal
	}
	if resolved {
		return result, nil
	}
	return nil, exhausted(c.name, node, failures)
}

type failure struct {
	resolver string
	err      error
}

func exhausted(chainName string, node *value.Node, failures []failure) error {
	name, typ := "", "<nil>"
	if node != nil {
		name = node.Name()
		if node.Type() != nil {
			typ = node.Type().String()
		}
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "no suitable resolver found for %s (%s):", name, typ)
	resolvers := make([]string, 0, len(failures))
	causes := make([]error, 0, len(failures))
	for _, f := range failures {
		fmt.Fprintf(&msg, "\n\t%s: %s", f.resolver, reason(f.err))
		resolvers = append(resolvers, f.resolver)
		causes = append(causes, f.err)
	}
	if len(failures) == 0 {
		msg.WriteString(" no resolvers configured")
	}

	return ferrors.WrapCause(ferrors.ErrNoResolverFound, msg.String(), map[string]any{
		ferrors.MetaName:      name,
		ferrors.MetaType:      typ,
		ferrors.MetaResolver:  chainName,
		ferrors.MetaResolvers: resolvers,
	}, causes...)
}

// reason renders the message of a rich error without its source chain.
func reason(err error) string {
	if rich, ok := ferrors.As(err); ok && rich.Message != "" {
		return strings.ReplaceAll(rich.Message, "\n", "\n\t")
	}
	return err.Error()
}

var _ value.Resolver = Chain{}
