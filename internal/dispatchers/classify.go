package dispatchers

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/footprint-tools/comfort/internal/events"
	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/registry"
	"github.com/footprint-tools/comfort/internal/schema"
)

// Kind says where a command is served from.
type Kind int

const (
	KindNormal Kind = iota
	KindBuiltin
	KindPlugin
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindPlugin:
		return "plugin"
	default:
		return "normal"
	}
}

// Invocation is the outcome of classifying one argument vector.
type Invocation struct {
	// ID correlates log lines, events and history rows of one invocation.
	ID string

	Argv    []string
	Command string
	Kind    Kind

	// Options is nil for plugins.
	Options options.Values

	// Details holds the per-field parse errors.
	Details options.Details

	// IsEntry is set for a bare invocation.
	IsEntry bool
}

// Args returns the user arguments, argv from the offset on.
func (inv *Invocation) Args(offset int) []string {
	if offset >= len(inv.Argv) {
		return []string{}
	}
	return slices.Clone(inv.Argv[offset:])
}

// Parse classifies argv using the engine's strict setting.
func (e *Engine) Parse(ctx context.Context, argv []string) (*Invocation, error) {
	return e.parse(ctx, argv, e.cfg.Strict)
}

// ParseStrict classifies argv, rejecting unknown commands instead of
// treating them as plugins.
func (e *Engine) ParseStrict(ctx context.Context, argv []string) (*Invocation, error) {
	return e.parse(ctx, argv, true)
}

// parse applies the fixed precedence plugin, version, help, then normal or
// built-in dispatch. The first match wins.
//
// On an option parse failure the invocation is returned with the values
// that did parse, alongside the error.
func (e *Engine) parse(ctx context.Context, argv []string, strict bool) (*Invocation, error) {
	commands, err := e.registry.List()
	if err != nil {
		return nil, err
	}

	pos := e.offset - 1
	var token string
	if pos < len(argv) {
		token = argv[pos]
	}

	inv := &Invocation{
		ID:      uuid.NewString(),
		Argv:    argv,
		IsEntry: len(argv) <= pos,
	}
	isCommand := registry.IsCommand(token)

	if isCommand && !registry.IsBuiltin(token) && !slices.Contains(commands, token) {
		if strict {
			return nil, e.notFound(token, commands)
		}
		inv.Command, inv.Kind = token, KindPlugin
		e.logger.Debug("dispatch: [%s] %q is a plugin", inv.ID, token)
		return inv, nil
	}

	flags := argv[min(pos, len(argv)):]

	if token == "version" || slices.Contains(flags, "-v") || slices.Contains(flags, "--version") {
		inv.Command, inv.Kind = "version", kindOf("version")
		inv.Options = options.Values{"root": e.cfg.Root}
		e.logger.Debug("dispatch: [%s] version requested", inv.ID)
		return inv, nil
	}

	short, long := slices.Index(argv, "-h"), slices.Index(argv, "--help")
	if short >= 0 || long >= 0 || inv.IsEntry || !isCommand {
		var target string
		if short != pos && long != pos && isCommand {
			target = token
		}

		inv.Command, inv.Kind = "help", KindBuiltin
		inv.Options = options.Values{
			"command": target,
			"entry":   inv.IsEntry,
		}.Merge(e.helpContext(commands))

		if inv.IsEntry {
			e.bus.Publish(events.Event{Type: events.Entry, ID: inv.ID, Name: e.cfg.Name})
		}
		e.logger.Debug("dispatch: [%s] help requested for %q", inv.ID, target)
		return inv, nil
	}

	inv.Command, inv.Kind = token, kindOf(token)

	s, err := e.Schema(token)
	if err != nil {
		return nil, err
	}

	values, details, err := options.Parse(ctx, token, s, argv, e.offset)
	inv.Options, inv.Details = values, details
	if err != nil {
		return inv, err
	}

	if token == "help" {
		inv.Options = inv.Options.Merge(e.helpContext(commands))
	}

	e.logger.Debug("dispatch: [%s] %s command %q", inv.ID, inv.Kind, token)
	return inv, nil
}

// helpContext is the registry knowledge the help command needs.
func (e *Engine) helpContext(commands []string) map[string]any {
	return map[string]any{
		"commands":     slices.Clone(commands),
		"builtins":     registry.Builtins(),
		"name":         e.cfg.Name,
		"normal_root":  e.cfg.OptionRoot,
		"builtin_root": schema.BuiltinRoot,
	}
}

func kindOf(command string) Kind {
	if registry.IsBuiltin(command) {
		return KindBuiltin
	}
	return KindNormal
}

// String renders the invocation for log lines.
func (inv *Invocation) String() string {
	return fmt.Sprintf("%s %s (%s)", inv.Kind, inv.Command, inv.ID)
}
