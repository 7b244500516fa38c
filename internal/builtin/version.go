package builtin

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/afero"

	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/usage"
)

// VersionFile is read from the root when no version is configured.
const VersionFile = "VERSION"

// Version prints the tool version.
type Version struct {
	version string
	fs      afero.Fs
	env     commander.Env
}

// Attach implements commander.Attacher.
func (v *Version) Attach(env commander.Env) { v.env = env }

// Run implements commander.Handler. The version comes from configuration,
// then from {root}/VERSION, then from the build info of the binary.
func (v *Version) Run(_ context.Context, opts options.Values) error {
	version, err := v.resolve(opts.String("root", ""))
	if err != nil {
		return err
	}

	out := v.env.Stdout
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintln(out, version)
	return nil
}

func (v *Version) resolve(root string) (string, error) {
	if v.version != "" {
		return v.version, nil
	}

	if root != "" {
		file := filepath.Join(root, VersionFile)
		data, err := afero.ReadFile(v.fs, file)
		if err != nil {
			return "", &usage.Error{
				Kind:    usage.ErrUnknown,
				Message: fmt.Sprintf("fails to read %q: %v", file, err),
				Data:    map[string]any{"file": file},
				Err:     err,
			}
		}
		version := strings.TrimSpace(string(data))
		if version == "" {
			return "", &usage.Error{
				Kind:    usage.ErrUnknown,
				Message: fmt.Sprintf("No version found in %q", file),
				Data:    map[string]any{"file": file},
			}
		}
		return version, nil
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version, nil
	}
	return "(devel)", nil
}
