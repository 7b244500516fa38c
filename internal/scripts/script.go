package scripts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/usage"
)

// OptionPrefix prefixes the environment variable of every option.
const OptionPrefix = "COMFORT_OPT_"

// Script is one script command. The parsed program is shared by every
// instance and never modified.
type Script struct {
	name    string
	file    string
	prog    *syntax.File
	environ []string
	dir     string
	stdin   io.Reader

	env commander.Env
}

// Attach implements commander.Attacher.
func (s *Script) Attach(env commander.Env) { s.env = env }

// Run interprets the script. A non-zero exit status is returned as a
// *usage.ExitError.
func (s *Script) Run(ctx context.Context, opts options.Values) error {
	runner, err := interp.New(
		interp.StdIO(s.stdin, s.env.Stdout, s.env.Stderr),
		interp.Env(expand.ListEnviron(s.environment(opts)...)),
		interp.Dir(s.dir),
		interp.Params(append([]string{"--"}, opts.Args()...)...),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", s.file, err)
	}

	if s.env.Logger != nil {
		s.env.Logger.Debug("scripts: running %s", s.file)
	}

	err = runner.Run(ctx, s.prog)

	var status interp.ExitStatus
	if errors.As(err, &status) {
		return usage.Exit(int(status))
	}
	return err
}

// environment is the base environment plus the tool name, the command name
// and one variable per option, sorted for stable output.
func (s *Script) environment(opts options.Values) []string {
	pairs := slices.Clone(s.environ)
	pairs = append(pairs,
		"COMFORT_NAME="+s.env.Name,
		"COMFORT_COMMAND="+s.name,
	)

	names := make([]string, 0, len(opts))
	for name := range opts {
		if name != options.ArgsKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		pairs = append(pairs, VarName(name)+"="+format(opts[name]))
	}
	return pairs
}

// VarName returns the environment variable carrying option name:
// "dry-run" becomes COMFORT_OPT_DRY_RUN.
func VarName(name string) string {
	upper := strings.ToUpper(name)
	return OptionPrefix + strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, upper)
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, " ")
	default:
		return fmt.Sprint(x)
	}
}
