package schema

import (
	"github.com/footprint-tools/comfort/internal/options"
)

// BuiltinRoot is the option root of the built-in commands. It is not a
// filesystem path; built-in schemas are compiled in.
const BuiltinRoot = "builtin:option"

// Source loads the schema of a command from a root.
type Source interface {
	// Load returns (nil, nil) when the command has no schema under root.
	Load(command, root string) (*options.Schema, error)
}

// StaticSource serves compiled schemas keyed by command name. The root is
// ignored.
type StaticSource map[string]*options.Schema

// Load implements Source.
func (s StaticSource) Load(command, _ string) (*options.Schema, error) {
	return s[command], nil
}

// Chain tries each source in order and returns the first schema found.
type Chain []Source

// Load implements Source.
func (c Chain) Load(command, root string) (*options.Schema, error) {
	for _, src := range c {
		s, err := src.Load(command, root)
		if err != nil || s != nil {
			return s, err
		}
	}
	return nil, nil
}

// Cache memoizes a source per command name for the life of an engine.
// Absent schemas are cached too; errors are not.
type Cache struct {
	source  Source
	entries map[string]*options.Schema
}

// NewCache wraps src.
func NewCache(src Source) *Cache {
	return &Cache{source: src, entries: make(map[string]*options.Schema)}
}

// Load returns the cached schema for command, loading it from root once.
func (c *Cache) Load(command, root string) (*options.Schema, error) {
	if s, ok := c.entries[command]; ok {
		return s, nil
	}
	s, err := c.source.Load(command, root)
	if err != nil {
		return nil, err
	}
	c.entries[command] = s
	return s, nil
}
