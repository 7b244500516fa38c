package commander

import (
	"errors"
	"sort"
)

// Provider loads command definitions.
type Provider interface {
	// Load returns the factory of name under root, or ErrNotExist.
	Load(root, name string) (Factory, error)
}

// anyRoot registers a catalog entry for every root.
const anyRoot = ""

// Catalog is a compile-time registry of factories keyed by root and name.
type Catalog struct {
	entries map[string]map[string]Factory
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]map[string]Factory)}
}

// Register adds a factory. An empty root matches any root.
func (c *Catalog) Register(root, name string, f Factory) *Catalog {
	if c.entries[root] == nil {
		c.entries[root] = make(map[string]Factory)
	}
	c.entries[root][name] = f
	return c
}

// Load implements Provider.
func (c *Catalog) Load(root, name string) (Factory, error) {
	if f, ok := c.entries[root][name]; ok {
		return f, nil
	}
	if f, ok := c.entries[anyRoot][name]; ok {
		return f, nil
	}
	return nil, ErrNotExist
}

// Names lists the commands available under root, sorted.
func (c *Catalog) Names(root string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range []string{root, anyRoot} {
		for name := range c.entries[r] {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Chain tries providers in order; the first one that does not report
// ErrNotExist decides.
type Chain []Provider

// Load implements Provider.
func (c Chain) Load(root, name string) (Factory, error) {
	for _, p := range c {
		f, err := p.Load(root, name)
		if errors.Is(err, ErrNotExist) {
			continue
		}
		return f, err
	}
	return nil, ErrNotExist
}
