package commander

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/footprint-tools/comfort/internal/registry"
	"github.com/footprint-tools/comfort/internal/usage"
)

// Resolver builds and caches one handler instance per command name. It is
// owned by a single engine and is not safe for concurrent use.
type Resolver struct {
	provider Provider
	builtins Provider
	root     string
	env      Env

	cache map[string]Handler
}

// NewResolver returns a resolver loading normal commands from provider under
// root and built-in commands from builtins under BuiltinRoot. env is cloned
// into every instance.
func NewResolver(provider, builtins Provider, root string, env Env) *Resolver {
	return &Resolver{
		provider: provider,
		builtins: builtins,
		root:     root,
		env:      env,
		cache:    make(map[string]Handler),
	}
}

// Resolve returns the handler instance for name, creating it on first use.
// An absent command is COMMAND_NOT_FOUND; a command that fails to load,
// including by panicking, is FAIL_READ_COMMAND.
func (r *Resolver) Resolve(_ context.Context, name string) (Handler, error) {
	if h, ok := r.cache[name]; ok {
		return h, nil
	}

	provider, root := r.provider, r.root
	if registry.IsBuiltin(name) {
		provider, root = r.builtins, BuiltinRoot
	}
	if provider == nil {
		return nil, usage.UnknownCommand(r.env.Name, name)
	}

	h, err := instantiate(provider, root, name)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil, usage.UnknownCommand(r.env.Name, name)
		}
		var ue *usage.Error
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, usage.FailReadCommand(name, filepath.Join(root, name), err)
	}

	if a, ok := h.(Attacher); ok {
		a.Attach(r.env.clone())
	}

	r.cache[name] = h
	return h, nil
}

// Exists reports whether name can be resolved, without instantiating it.
func (r *Resolver) Exists(name string) bool {
	if _, ok := r.cache[name]; ok {
		return true
	}
	provider, root := r.provider, r.root
	if registry.IsBuiltin(name) {
		provider, root = r.builtins, BuiltinRoot
	}
	if provider == nil || !registry.IsCommand(name) {
		return false
	}
	f, err := provider.Load(root, name)
	return err == nil && f != nil
}

func instantiate(p Provider, root, name string) (h Handler, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h, err = nil, fmt.Errorf("panic while loading: %v", rec)
		}
	}()

	f, err := p.Load(root, name)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("provider returned no factory")
	}

	h = f()
	if h == nil {
		return nil, errors.New("factory returned no handler")
	}
	return h, nil
}
