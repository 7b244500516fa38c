package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/footprint-tools/comfort/internal/app"
	"github.com/footprint-tools/comfort/internal/ui"
	"github.com/footprint-tools/comfort/internal/usage"
)

// runtimeSlot stands in for the interpreter entry of the argv layout the
// engine expects: runtime, program, command.
const runtimeSlot = "comfort"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := app.DefaultOptions()
	// Enable styling only when stdout is a terminal
	opts.StyleEnabled = ui.IsTerminal(stdout)
	opts.Stdout = stdout
	opts.Stderr = stderr

	a, err := app.New(ctx, opts)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	defer func() { _ = app.Close(a) }()

	return exitCode(a.Run(ctx, engineArgv(args)))
}

// engineArgv prefixes the process arguments with the runtime slot, so the
// command lands at the default offset.
func engineArgv(args []string) []string {
	return append([]string{runtimeSlot}, args...)
}

// exitCode maps a run error to the process exit status. A plugin's status
// is relayed unchanged.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exit *usage.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}

	var ue *usage.Error
	if errors.As(err, &ue) {
		return ue.GetExitCode()
	}
	return 1
}
