package dispatchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/footprint-tools/comfort/internal/events"
	"github.com/footprint-tools/comfort/internal/registry"
	"github.com/footprint-tools/comfort/internal/ui/style"
	"github.com/footprint-tools/comfort/internal/usage"
)

// Run classifies argv and dispatches it: plugins go to the plugin runner
// with the user arguments, everything else to its handler instance. Any
// classification or resolution error is returned before a handler runs.
func (e *Engine) Run(ctx context.Context, argv []string) error {
	inv, err := e.Parse(ctx, argv)
	if err != nil {
		return err
	}
	return e.dispatch(ctx, inv)
}

func (e *Engine) dispatch(ctx context.Context, inv *Invocation) error {
	if inv.Kind == KindPlugin {
		err := e.plugins.Run(ctx, inv.ID, inv.Command, inv.Args(e.offset))
		if errors.Is(err, usage.ErrNotFound) {
			commands, _ := e.registry.List()
			return e.notFound(inv.Command, commands)
		}
		return err
	}

	h, err := e.resolver.Resolve(ctx, inv.Command)
	if err != nil {
		return err
	}

	e.logger.Debug("dispatch: [%s] running %s", inv.ID, inv.Command)
	return h.Run(ctx, inv.Options)
}

// CLI is the top-level run loop of a tool: it runs the setup hooks once,
// dispatches argv and reports the outcome on the event bus. Every finished
// invocation publishes complete, followed by error or finish.
func (e *Engine) CLI(ctx context.Context, argv []string) error {
	start := time.Now()

	inv := &Invocation{Argv: argv}
	err := e.runSetup(ctx)
	if err == nil {
		var parsed *Invocation
		parsed, err = e.Parse(ctx, argv)
		if parsed != nil {
			inv = parsed
		}
		if err == nil {
			err = e.dispatch(ctx, inv)
		}
	}
	if inv.Command == "" {
		if pos := e.offset - 1; pos < len(argv) {
			inv.Command = argv[pos]
		}
	}

	e.bus.Publish(events.Event{
		Type:    events.Complete,
		ID:      inv.ID,
		Name:    e.cfg.Name,
		Command: inv.Command,
		Args:    inv.Args(e.offset),
		Err:     err,
		Elapsed: time.Since(start),
	})

	if err != nil {
		e.bus.Publish(events.Event{Type: events.Error, ID: inv.ID, Name: e.cfg.Name, Command: inv.Command, Err: err})
		return err
	}
	e.bus.Publish(events.Event{Type: events.Finish, ID: inv.ID, Name: e.cfg.Name, Command: inv.Command})
	return nil
}

// notFound builds the COMMAND_NOT_FOUND error for command with the closest
// known commands as suggestions.
func (e *Engine) notFound(command string, commands []string) error {
	known := append(registry.Builtins(), commands...)
	return usage.UnknownCommand(e.cfg.Name, command, FindSimilarCommands(command, known, maxSuggestions)...)
}

func (e *Engine) defaultComplete(ev events.Event) {
	if ev.Err != nil {
		e.logger.Error("dispatch: [%s] %s failed after %s: %v", ev.ID, ev.Command, ev.Elapsed, ev.Err)
		return
	}
	if ev.Command == "help" {
		return
	}
	e.logger.Info("dispatch: [%s] %s OK! (%s)", ev.ID, ev.Command, ev.Elapsed)
}

// defaultError prints usage errors. A plugin exit status is not printed;
// the plugin owned the terminal and said what it had to say.
func (e *Engine) defaultError(ev events.Event) {
	var exit *usage.ExitError
	if ev.Err == nil || errors.As(ev.Err, &exit) {
		return
	}
	fmt.Fprintln(e.cfg.Stderr, style.Error(ev.Err.Error()))
}
