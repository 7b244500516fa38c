// Package registry enumerates the commands an engine can dispatch to.
package registry

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Builtins are the commands shipped with the engine. Read-only.
var builtins = []string{"help", "version"}

// Builtins returns a copy of the built-in command names.
func Builtins() []string {
	return slices.Clone(builtins)
}

// IsBuiltin reports whether name is a built-in command.
func IsBuiltin(name string) bool {
	return slices.Contains(builtins, name)
}

// IsCommand reports whether token is shaped like a command name: non-empty
// and not starting with "-".
func IsCommand(token string) bool {
	return token != "" && !strings.HasPrefix(token, "-")
}

// Registry lists the normal commands found in a command root, or serves an
// explicit list. Not safe for concurrent use; an engine owns one.
type Registry struct {
	fs      afero.Fs
	root    string
	pattern string

	commands []string
	loaded   bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithCommands makes the registry serve names verbatim and skip scanning.
func WithCommands(names []string) Option {
	return func(r *Registry) {
		if names != nil {
			r.commands = slices.Clone(names)
			r.loaded = true
		}
	}
}

// WithPattern overrides the glob used to find command files (default "*.*").
func WithPattern(pattern string) Option {
	return func(r *Registry) {
		r.pattern = pattern
	}
}

// New returns a registry scanning root on fsys.
func New(fsys afero.Fs, root string, opts ...Option) *Registry {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	r := &Registry{fs: fsys, root: root, pattern: "*.*"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the normal command names, scanning the command root on first
// use. A missing root lists nothing. A failed scan is returned and not cached.
func (r *Registry) List() ([]string, error) {
	if r.loaded {
		return r.commands, nil
	}

	if r.root == "" {
		r.commands, r.loaded = []string{}, true
		return r.commands, nil
	}

	// A missing root is an empty registry; other stat failures are not.
	if _, err := r.fs.Stat(r.root); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("scan commands in %s: %w", r.root, err)
		}
		r.commands, r.loaded = []string{}, true
		return r.commands, nil
	}

	matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(r.fs, r.root)), r.pattern,
		doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("scan commands in %s: %w", r.root, err)
	}

	seen := make(map[string]bool, len(matches))
	commands := make([]string, 0, len(matches))
	for _, m := range matches {
		name := stripExtensions(m)
		if !IsCommand(name) || seen[name] {
			continue
		}
		seen[name] = true
		commands = append(commands, name)
	}
	sort.Strings(commands)

	r.commands, r.loaded = commands, true
	return r.commands, nil
}

// IsNormal reports whether name is a listed normal command. The registry
// must have been listed first.
func (r *Registry) IsNormal(name string) bool {
	return slices.Contains(r.commands, name)
}

// stripExtensions drops everything from the first dot of the base name:
// "build.sh" -> "build", "a.b.sh" -> "a".
func stripExtensions(path string) string {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}
