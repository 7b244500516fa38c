// Package builtin implements the commands every tool gets for free: help and
// version.
package builtin

import (
	"github.com/spf13/afero"

	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/schema"
)

// Config carries the tool-level data the built-in commands print.
type Config struct {
	// Info is the one-line description shown at the top of the overview.
	Info string

	// Version is printed by the version command. When empty, the command
	// reads a VERSION file under the root it is given.
	Version string

	Fs afero.Fs
}

// Catalog returns the built-in command definitions, registered under
// commander.BuiltinRoot.
func Catalog(cfg Config) *commander.Catalog {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	return commander.NewCatalog().
		Register(commander.BuiltinRoot, "help", commander.Prototype(Help{info: cfg.Info})).
		Register(commander.BuiltinRoot, "version", commander.Prototype(Version{version: cfg.Version, fs: cfg.Fs}))
}

// Schemas returns the option schemas of the built-in commands, served from
// schema.BuiltinRoot.
func Schemas() schema.StaticSource {
	return schema.StaticSource{
		"help":    helpSchema(),
		"version": versionSchema(),
	}
}
