// Package plugin runs external "{tool}-{command}" executables found on PATH.
package plugin

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/footprint-tools/comfort/internal/domain"
	"github.com/footprint-tools/comfort/internal/events"
	"github.com/footprint-tools/comfort/internal/log"
	"github.com/footprint-tools/comfort/internal/usage"
)

// Stdio is the set of streams a plugin inherits.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// SpawnFunc starts the executable at path and waits for it, returning its
// exit status.
type SpawnFunc func(ctx context.Context, path string, args []string, stdio Stdio) (int, error)

// Runner locates and runs plugin executables.
type Runner struct {
	// Name is the tool name; plugins are named "{Name}-{command}".
	Name string

	// Path is the search path, in the format of the PATH variable.
	Path string

	Fs     afero.Fs
	Bus    *events.Bus
	Logger domain.Logger
	Stdio  Stdio
	Spawn  SpawnFunc
}

// NewRunner returns a runner searching the process PATH on the OS filesystem.
func NewRunner(name string, bus *events.Bus) *Runner {
	return &Runner{
		Name:   name,
		Path:   os.Getenv("PATH"),
		Fs:     afero.NewOsFs(),
		Bus:    bus,
		Logger: log.NopLogger{},
		Stdio:  Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
		Spawn:  Spawn,
	}
}

// Candidates returns the paths probed for command, in search order. An empty
// PATH entry stands for the current directory.
func (r *Runner) Candidates(command string) []string {
	bin := r.Name + "-" + command

	dirs := filepath.SplitList(r.Path)
	candidates := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		candidates = append(candidates, filepath.Join(dir, bin))
	}
	return candidates
}

// Find returns the first candidate that is a regular file. Candidates are
// probed one at a time and the search stops at the first match.
func (r *Runner) Find(command string) (string, error) {
	for _, candidate := range r.Candidates(command) {
		info, err := r.Fs.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return candidate, nil
	}
	return "", usage.UnknownCommand(r.Name, command)
}

// Run publishes the plugin event, then locates and runs the plugin for
// command with args. A non-zero exit status is returned as a
// *usage.ExitError carrying the raw code.
func (r *Runner) Run(ctx context.Context, id, command string, args []string) error {
	if r.Bus != nil {
		r.Bus.Publish(events.Event{
			Type:    events.Plugin,
			ID:      id,
			Name:    r.Name,
			Command: command,
			Args:    args,
		})
	}

	found, err := r.Find(command)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(found) {
		if abs, err := filepath.Abs(found); err == nil {
			found = abs
		}
	}

	r.logger().Debug("plugin: [%s] spawning %s %s", id, found, strings.Join(args, " "))

	code, err := r.Spawn(ctx, found, args, r.Stdio)
	if err != nil {
		return err
	}

	r.logger().Debug("plugin: [%s] %s exited with %d", id, found, code)
	return usage.Exit(code)
}

func (r *Runner) logger() domain.Logger {
	if r.Logger == nil {
		return log.NopLogger{}
	}
	return r.Logger
}

// Spawn runs path with inherited stdio and no timeout. A process killed by a
// signal reports status 1.
func Spawn(_ context.Context, path string, args []string, stdio Stdio) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		return 1, nil
	}
	return 0, err
}
