// Package scripts serves normal commands written as shell scripts.
//
// A command root holding build.sh makes "build" a command. The script is
// parsed once per engine and interpreted in-process; its options arrive as
// COMFORT_OPT_<NAME> variables and its positional arguments as "$@".
package scripts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/syntax"

	"github.com/footprint-tools/comfort/internal/commander"
)

// Extensions lists the script file extensions tried, in order.
var Extensions = []string{".sh", ".bash"}

// Pattern returns the registry glob matching script files, e.g.
// "*.{sh,bash}".
func Pattern() string {
	exts := make([]string, len(Extensions))
	for i, ext := range Extensions {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return "*.{" + strings.Join(exts, ",") + "}"
}

// Provider loads script commands from a command root.
type Provider struct {
	Fs afero.Fs

	// Environ is the base environment of every script, as KEY=value pairs.
	Environ []string

	// Dir is the working directory scripts start in.
	Dir string

	Stdin io.Reader
}

// NewProvider returns a provider reading scripts from the OS filesystem
// with the process environment.
func NewProvider() *Provider {
	dir, _ := os.Getwd()
	return &Provider{
		Fs:      afero.NewOsFs(),
		Environ: os.Environ(),
		Dir:     dir,
		Stdin:   os.Stdin,
	}
}

// Load implements commander.Provider. A script that does not parse is a load
// error.
func (p *Provider) Load(root, name string) (commander.Factory, error) {
	file, err := p.find(root, name)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(p.Fs, file)
	if err != nil {
		return nil, err
	}

	prog, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(data), file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	tmpl := Script{
		name:    name,
		file:    file,
		prog:    prog,
		environ: p.Environ,
		dir:     p.Dir,
		stdin:   p.Stdin,
	}
	return commander.Prototype(tmpl), nil
}

func (p *Provider) find(root, name string) (string, error) {
	for _, ext := range Extensions {
		file := filepath.Join(root, name+ext)
		info, err := p.Fs.Stat(file)
		if err == nil && info.Mode().IsRegular() {
			return file, nil
		}
	}
	return "", commander.ErrNotExist
}
