package commander

import (
	"context"
	"errors"
	"io"
	"maps"

	"github.com/footprint-tools/comfort/internal/domain"
	"github.com/footprint-tools/comfort/internal/options"
)

// BuiltinRoot is the command root of the built-in commands.
const BuiltinRoot = "builtin:command"

// ErrNotExist is returned by a Provider that has no command under the
// requested name.
var ErrNotExist = errors.New("command does not exist")

// Handler runs a command with its parsed options.
type Handler interface {
	Run(ctx context.Context, opts options.Values) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, opts options.Values) error

// Run implements Handler.
func (f HandlerFunc) Run(ctx context.Context, opts options.Values) error {
	return f(ctx, opts)
}

// Env is the per-instance environment an engine hands to its handlers.
type Env struct {
	// Name is the tool name.
	Name string

	// Context is this instance's copy of the engine's shared context.
	Context map[string]any

	Logger domain.Logger
	Stdout io.Writer
	Stderr io.Writer

	// Schema looks up the option schema of another command (builtins use
	// the built-in root). Used by help.
	Schema func(command string) (*options.Schema, error)

	// Commands lists the engine's normal commands.
	Commands func() ([]string, error)
}

// clone copies e with an independent Context map.
func (e Env) clone() Env {
	c := e
	c.Context = maps.Clone(e.Context)
	if c.Context == nil {
		c.Context = make(map[string]any)
	}
	return c
}

// Attacher is implemented by handlers that want the engine environment.
type Attacher interface {
	Attach(env Env)
}

// Factory builds a fresh handler instance.
type Factory func() Handler

// Func returns a Factory for a stateless handler function.
func Func(fn func(ctx context.Context, opts options.Values) error) Factory {
	return func() Handler {
		return HandlerFunc(fn)
	}
}

// Cloner is implemented by templates that hold maps, slices or pointers an
// instance may mutate.
type Cloner[T any] interface {
	Clone() T
}

// Prototype returns a Factory that copies tmpl for every instance. tmpl is
// never handed out itself, so it stays a read-only template. The copy is
// shallow unless T implements Cloner.
func Prototype[T any, PT interface {
	*T
	Handler
}](tmpl T) Factory {
	return func() Handler {
		c := tmpl
		if cl, ok := any(tmpl).(Cloner[T]); ok {
			c = cl.Clone()
		}
		return PT(&c)
	}
}
