// Package dispatchers turns an argument vector into one command invocation:
// a built-in, a normal command served by a provider, or an external plugin.
package dispatchers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/spf13/afero"

	"github.com/footprint-tools/comfort/internal/builtin"
	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/domain"
	"github.com/footprint-tools/comfort/internal/events"
	"github.com/footprint-tools/comfort/internal/log"
	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/plugin"
	"github.com/footprint-tools/comfort/internal/registry"
	"github.com/footprint-tools/comfort/internal/schema"
	"github.com/footprint-tools/comfort/internal/scripts"
	"github.com/footprint-tools/comfort/internal/usage"
)

// ErrNegativeOffset is returned by New for a negative argv offset.
var ErrNegativeOffset = errors.New("argv offset must not be negative")

// Config configures an Engine. It is copied by New and never changed
// afterwards.
type Config struct {
	// Name is the tool name. Plugins are looked up as "{Name}-{command}".
	Name string

	// CommandRoot holds the normal commands; OptionRoot their schemas.
	CommandRoot string
	OptionRoot  string

	// Offset is the number of leading argv slots before user arguments.
	// Zero means options.DefaultOffset.
	Offset int

	// Context is shared with every handler instance as a private copy.
	Context map[string]any

	// Commands, when non-nil, replaces scanning CommandRoot.
	Commands []string

	// Strict makes an unknown command a COMMAND_NOT_FOUND error instead of
	// a plugin lookup.
	Strict bool

	// Root is handed to the version command as its "root" option.
	Root string

	// Info and Version feed the default built-in commands.
	Info    string
	Version string

	Fs afero.Fs

	// Provider serves normal commands. Defaults to shell scripts under
	// CommandRoot.
	Provider commander.Provider

	// Builtins serves the built-in commands. Defaults to builtin.Catalog.
	Builtins commander.Provider

	// Schemas serves normal command schemas. Defaults to files under
	// OptionRoot.
	Schemas schema.Source

	// BuiltinSchemas serves built-in command schemas.
	BuiltinSchemas schema.Source

	// Path is the plugin search path. Defaults to $PATH.
	Path string

	// Spawn runs plugins. Defaults to plugin.Spawn.
	Spawn plugin.SpawnFunc

	// CommandPattern is the glob naming command files under CommandRoot.
	// Defaults to the script extensions when Provider is unset, else "*.*".
	CommandPattern string

	Logger domain.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Engine dispatches invocations for one tool. An engine is meant to be
// driven by a single caller; separate engines share no mutable state.
type Engine struct {
	cfg    Config
	offset int

	registry *registry.Registry
	schemas  *schema.Cache
	builtins *schema.Cache
	resolver *commander.Resolver
	plugins  *plugin.Runner
	bus      *events.Bus
	logger   domain.Logger

	setup   []func(ctx context.Context, e *Engine) error
	started bool
}

// New returns an engine for cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Offset < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeOffset, cfg.Offset)
	}

	offset := cfg.Offset
	if offset == 0 {
		offset = options.DefaultOffset
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NopLogger{}
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Path == "" {
		cfg.Path = os.Getenv("PATH")
	}
	if cfg.Spawn == nil {
		cfg.Spawn = plugin.Spawn
	}
	if cfg.Provider == nil {
		dir, _ := os.Getwd()
		cfg.Provider = &scripts.Provider{Fs: cfg.Fs, Environ: os.Environ(), Dir: dir, Stdin: cfg.Stdin}
		if cfg.CommandPattern == "" {
			cfg.CommandPattern = scripts.Pattern()
		}
	}
	if cfg.Builtins == nil {
		cfg.Builtins = builtin.Catalog(builtin.Config{Info: cfg.Info, Version: cfg.Version, Fs: cfg.Fs})
	}
	if cfg.Schemas == nil {
		cfg.Schemas = schema.NewFileSource(cfg.Fs)
	}
	if cfg.BuiltinSchemas == nil {
		cfg.BuiltinSchemas = builtin.Schemas()
	}
	cfg.Context = maps.Clone(cfg.Context)
	if cfg.Context == nil {
		cfg.Context = make(map[string]any)
	}

	e := &Engine{
		cfg:      cfg,
		offset:   offset,
		registry: newRegistry(cfg),
		schemas:  schema.NewCache(cfg.Schemas),
		builtins: schema.NewCache(cfg.BuiltinSchemas),
		bus:      events.NewBus(),
		logger:   cfg.Logger,
	}
	e.cfg.Context["commander"] = e

	e.resolver = commander.NewResolver(cfg.Provider, cfg.Builtins, cfg.CommandRoot, commander.Env{
		Name:     cfg.Name,
		Context:  e.cfg.Context,
		Logger:   cfg.Logger,
		Stdout:   cfg.Stdout,
		Stderr:   cfg.Stderr,
		Schema:   e.Schema,
		Commands: e.Commands,
	})

	e.plugins = &plugin.Runner{
		Name:   cfg.Name,
		Path:   cfg.Path,
		Fs:     cfg.Fs,
		Bus:    e.bus,
		Logger: cfg.Logger,
		Stdio:  plugin.Stdio{Stdin: cfg.Stdin, Stdout: unwrap(cfg.Stdout), Stderr: unwrap(cfg.Stderr)},
		Spawn:  cfg.Spawn,
	}

	e.bus.SetDefault(events.Complete, e.defaultComplete)
	e.bus.SetDefault(events.Error, e.defaultError)

	return e, nil
}

func newRegistry(cfg Config) *registry.Registry {
	opts := []registry.Option{registry.WithCommands(cfg.Commands)}
	if cfg.CommandPattern != "" {
		opts = append(opts, registry.WithPattern(cfg.CommandPattern))
	}
	return registry.New(cfg.Fs, cfg.CommandRoot, opts...)
}

// unwrap peels output wrappers so plugins inherit the process streams.
func unwrap(w io.Writer) io.Writer {
	for {
		u, ok := w.(interface{ Unwrap() io.Writer })
		if !ok {
			return w
		}
		w = u.Unwrap()
	}
}

// Name returns the tool name.
func (e *Engine) Name() string { return e.cfg.Name }

// Offset returns the effective argv offset.
func (e *Engine) Offset() int { return e.offset }

// Events returns the engine's event bus.
func (e *Engine) Events() *events.Bus { return e.bus }

// On subscribes fn to events of type t and returns the unsubscribe func.
func (e *Engine) On(t events.Type, fn events.Subscriber) func() {
	return e.bus.Subscribe(t, fn)
}

// WithContext merges values into the shared context. Handlers instantiated
// afterwards see them; existing instances keep their copy.
func (e *Engine) WithContext(values map[string]any) *Engine {
	maps.Copy(e.cfg.Context, values)
	return e
}

// Setup registers a hook run once before the first CLI dispatch. Hooks run
// in registration order; the first error aborts the invocation.
func (e *Engine) Setup(fn func(ctx context.Context, e *Engine) error) *Engine {
	e.setup = append(e.setup, fn)
	return e
}

// Commands lists the normal commands.
func (e *Engine) Commands() ([]string, error) {
	return e.registry.List()
}

// Commander returns the handler instance of name.
func (e *Engine) Commander(ctx context.Context, name string) (commander.Handler, error) {
	return e.resolver.Resolve(ctx, name)
}

// CommandExists reports whether name resolves to a normal or built-in
// command.
func (e *Engine) CommandExists(name string) bool {
	return e.resolver.Exists(name)
}

// Schema returns the option schema of command, nil if it has none.
// Built-in commands read from the built-in root.
func (e *Engine) Schema(command string) (*options.Schema, error) {
	var (
		s    *options.Schema
		err  error
		root = e.cfg.OptionRoot
	)
	if registry.IsBuiltin(command) {
		root = schema.BuiltinRoot
		s, err = e.builtins.Load(command, root)
	} else {
		s, err = e.schemas.Load(command, root)
	}
	if err != nil {
		var ue *usage.Error
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, usage.FailReadOption(command, root, err)
	}
	return s, nil
}

// Close releases the event bus.
func (e *Engine) Close() error {
	return e.bus.Close()
}

func (e *Engine) runSetup(ctx context.Context) error {
	if e.started {
		return nil
	}
	e.started = true
	for _, fn := range e.setup {
		if err := fn(ctx, e); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	return nil
}
