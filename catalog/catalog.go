package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-autobuild/ferrors"
	"github.com/goliatone/go-autobuild/value"
)

// Definition advertises a resolver plugin. New is called once per registry
// initialization.
type Definition struct {
	Name        string
	Description string
	New         func() value.Resolver
}

// Catalog lists advertised plugins in advertisement order.
type Catalog struct {
	mu    sync.RWMutex
	defs  []Definition
	index map[string]int
}

// New builds an empty catalog.
func New() *Catalog {
	return &Catalog{index: map[string]int{}}
}

// NewStatic builds a catalog from defs, skipping invalid entries.
func NewStatic(defs ...Definition) *Catalog {
	c := New()
	for _, def := range defs {
		_ = c.Advertise(def)
	}
	return c
}

// Advertise adds def to the catalog.
func (c *Catalog) Advertise(def Definition) error {
	if c == nil {
		return ferrors.ErrStoreRequired
	}
	def.Name = strings.TrimSpace(def.Name)
	def.Description = strings.TrimSpace(def.Description)
	if def.Name == "" {
		return ferrors.WrapSentinel(ferrors.ErrInvalidName, "plugin name required", nil)
	}
	if def.New == nil {
		return ferrors.WrapSentinel(ferrors.ErrResolverRequired,
			fmt.Sprintf("plugin %s has no constructor", def.Name),
			map[string]any{ferrors.MetaPlugin: def.Name})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.index = map[string]int{}
	}
	if _, ok := c.index[def.Name]; ok {
		return ferrors.WrapSentinel(ferrors.ErrDuplicatePlugin,
			fmt.Sprintf("plugin %s already advertised", def.Name),
			map[string]any{ferrors.MetaPlugin: def.Name})
	}
	c.index[def.Name] = len(c.defs)
	c.defs = append(c.defs, def)
	return nil
}

// MustAdvertise is like Advertise but panics on error. It is meant for
// package init functions.
func (c *Catalog) MustAdvertise(def Definition) {
	if err := c.Advertise(def); err != nil {
		panic(err)
	}
}

// Get returns the definition advertised under name.
func (c *Catalog) Get(name string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// List returns the definitions in advertisement order.
func (c *Catalog) List() []Definition {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Definition(nil), c.defs...)
}

// Default is the process-wide catalog plugins advertise into.
var Default = New()

// Advertise adds def to Default.
func Advertise(def Definition) error {
	return Default.Advertise(def)
}

// MustAdvertise adds def to Default and panics on error.
func MustAdvertise(def Definition) {
	Default.MustAdvertise(def)
}
