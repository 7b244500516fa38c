package dispatchers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/events"
	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/plugin"
	"github.com/footprint-tools/comfort/internal/schema"
	"github.com/footprint-tools/comfort/internal/testutil"
	"github.com/footprint-tools/comfort/internal/ui"
	"github.com/footprint-tools/comfort/internal/usage"
)

// recorder remembers the options of every run and counts them in its
// private context.
type recorder struct {
	env  commander.Env
	runs []options.Values
}

func (r *recorder) Attach(env commander.Env) { r.env = env }

func (r *recorder) Run(_ context.Context, opts options.Values) error {
	r.runs = append(r.runs, opts)
	r.env.Context["runs"] = len(r.runs)
	return nil
}

func buildSchema() *options.Schema {
	return &options.Schema{
		Info:  "Build the project",
		Usage: []string{"{{name}} build [options]"},
		Fields: []*options.Field{
			{Name: "force", Type: options.Boolean},
			{Name: "watch", Type: options.Boolean, Default: true},
			{
				Name:    "retry",
				Type:    options.Number,
				Default: float64(0),
				Set: func(_ context.Context, value any, _ options.Values) (any, error) {
					if n, ok := value.(float64); ok && n >= 10 {
						return nil, errors.New("must be less than 10")
					}
					return value, nil
				},
			},
		},
		Shorthands: map[string]string{"f": "force", "w": "watch"},
	}
}

type failingSource struct{ err error }

func (s failingSource) Load(string, string) (*options.Schema, error) { return nil, s.err }

type spawnCall struct {
	path string
	args []string
}

type fixture struct {
	engine *Engine
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	spawns []spawnCall
	stdio  plugin.Stdio
	code   int
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()

	f := &fixture{
		fs:     afero.NewMemMapFs(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}

	cfg := Config{
		Name:        "tool",
		CommandRoot: "/cmd",
		OptionRoot:  "/opt",
		Commands:    []string{"build", "clean"},
		Root:        "/srv/tool",
		Version:     "1.2.3",
		Context:     map[string]any{"cwd": "/work"},
		Fs:          f.fs,
		Provider: commander.NewCatalog().
			Register("/cmd", "build", commander.Prototype(recorder{})).
			Register("/cmd", "clean", commander.Prototype(recorder{})),
		Schemas: schema.StaticSource{"build": buildSchema()},
		Path:    "/bin",
		Spawn: func(_ context.Context, path string, args []string, stdio plugin.Stdio) (int, error) {
			f.spawns = append(f.spawns, spawnCall{path: path, args: args})
			f.stdio = stdio
			return f.code, nil
		},
		Stdout: f.stdout,
		Stderr: f.stderr,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	f.engine = e
	return f
}

func argv(args ...string) []string {
	return append([]string{"node", "/usr/bin/tool"}, args...)
}

func TestNew_NegativeOffset(t *testing.T) {
	_, err := New(Config{Name: "tool", Offset: -1})

	require.ErrorIs(t, err, ErrNegativeOffset)
}

func TestNew_DefaultOffset(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, options.DefaultOffset, f.engine.Offset())
}

func TestParse_Version(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{name: "short flag", argv: argv("-v")},
		{name: "long flag", argv: argv("--version")},
		{name: "version token", argv: argv("version")},
		{name: "flag after known command", argv: argv("build", "-v")},
		{name: "version wins over help", argv: argv("-h", "-v")},
		{name: "version token with help flag", argv: argv("version", "--help")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			inv, err := f.engine.Parse(context.Background(), tt.argv)

			require.NoError(t, err)
			require.Equal(t, "version", inv.Command)
			require.Equal(t, KindBuiltin, inv.Kind)
			require.Equal(t, options.Values{"root": "/srv/tool"}, inv.Options)
		})
	}
}

func TestParse_UnknownCommandIsPlugin(t *testing.T) {
	f := newFixture(t)

	inv, err := f.engine.Parse(context.Background(), argv("unknownthing", "--flag"))

	require.NoError(t, err)
	require.Equal(t, "unknownthing", inv.Command)
	require.Equal(t, KindPlugin, inv.Kind)
	require.Nil(t, inv.Options)
}

func TestParse_PluginCheckRunsBeforeVersion(t *testing.T) {
	f := newFixture(t)

	inv, err := f.engine.Parse(context.Background(), argv("deploy", "-v"))

	require.NoError(t, err)
	require.Equal(t, KindPlugin, inv.Kind)
	require.Equal(t, []string{"-v"}, inv.Args(f.engine.Offset()))
}

func TestParse_BareInvocationIsEntry(t *testing.T) {
	f := newFixture(t)

	var entries []events.Event
	f.engine.On(events.Entry, func(e events.Event) { entries = append(entries, e) })

	inv, err := f.engine.Parse(context.Background(), argv())

	require.NoError(t, err)
	require.True(t, inv.IsEntry)
	require.Equal(t, "help", inv.Command)
	require.Equal(t, KindBuiltin, inv.Kind)
	require.Equal(t, "", inv.Options["command"])
	require.Equal(t, true, inv.Options["entry"])
	require.Equal(t, []string{"build", "clean"}, inv.Options["commands"])
	require.Equal(t, []string{"help", "version"}, inv.Options["builtins"])
	require.Equal(t, "tool", inv.Options["name"])
	require.Equal(t, "/opt", inv.Options["normal_root"])
	require.Equal(t, schema.BuiltinRoot, inv.Options["builtin_root"])

	require.Len(t, entries, 1)
	require.Equal(t, inv.ID, entries[0].ID)
}

func TestParse_HelpTarget(t *testing.T) {
	tests := []struct {
		name   string
		argv   []string
		target string
	}{
		{name: "short flag after command", argv: argv("build", "-h"), target: "build"},
		{name: "long flag after command", argv: argv("clean", "--force", "--help"), target: "clean"},
		{name: "flag in command position", argv: argv("-h"), target: ""},
		{name: "long flag in command position", argv: argv("--help", "build"), target: ""},
		{name: "malformed command token", argv: argv("--force"), target: ""},
		{name: "builtin target", argv: argv("help", "-h"), target: "help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			inv, err := f.engine.Parse(context.Background(), tt.argv)

			require.NoError(t, err)
			require.Equal(t, "help", inv.Command)
			require.False(t, inv.IsEntry)
			require.Equal(t, tt.target, inv.Options["command"])
			require.Equal(t, false, inv.Options["entry"])
			require.False(t, inv.Options.Has("detail"))
		})
	}
}

func TestParse_HelpCommandMergesContext(t *testing.T) {
	f := newFixture(t)

	inv, err := f.engine.Parse(context.Background(), argv("help", "build"))

	require.NoError(t, err)
	require.Equal(t, "help", inv.Command)
	require.Equal(t, KindBuiltin, inv.Kind)
	require.Equal(t, "build", inv.Options["command"])
	require.Equal(t, true, inv.Options["detail"])
	require.Equal(t, []string{"build", "clean"}, inv.Options["commands"])
	require.NotContains(t, inv.Options, "entry")
}

func TestParse_NormalCommandOptions(t *testing.T) {
	f := newFixture(t)

	inv, err := f.engine.Parse(context.Background(), argv("build", "-f", "--nw", "--retry", "12"))

	require.ErrorIs(t, err, usage.ErrInvalid)
	require.NotNil(t, inv)
	require.Equal(t, KindNormal, inv.Kind)
	require.Equal(t, true, inv.Options["force"])
	require.Equal(t, false, inv.Options["watch"])
	require.NotContains(t, inv.Options, "retry")
	require.EqualError(t, inv.Details["retry"], "must be less than 10")
}

func TestParse_CommandWithoutSchema(t *testing.T) {
	f := newFixture(t)

	inv, err := f.engine.Parse(context.Background(), argv("clean", "--anything"))

	require.NoError(t, err)
	require.Equal(t, KindNormal, inv.Kind)
	require.Empty(t, inv.Options)
}

func TestParseStrict_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ParseStrict(context.Background(), argv("biuld"))

	require.ErrorIs(t, err, usage.ErrNotFound)
	require.Contains(t, err.Error(), `tool: "biuld" is not a "tool" command. See "tool --help".`)
	require.Contains(t, err.Error(), "The most similar command is\n\tbuild")
}

func TestParse_StrictConfig(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Strict = true })

	_, err := f.engine.Parse(context.Background(), argv("deploy"))

	require.ErrorIs(t, err, usage.ErrNotFound)
}

func TestParse_BrokenSchemaFile(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Schemas = nil })
	testutil.WriteFiles(t, f.fs, map[string]string{"/opt/build.yaml": "fields: [\n"})

	_, err := f.engine.Parse(context.Background(), argv("build"))

	require.ErrorIs(t, err, usage.ErrReadOption)
}

func TestParse_RegistryScanError(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Commands = nil
		c.Fs = testutil.StatErrFs{Fs: afero.NewMemMapFs(), Err: os.ErrPermission}
	})

	_, err := f.engine.Parse(context.Background(), argv("build"))

	require.ErrorIs(t, err, os.ErrPermission)
}

func TestParse_MissingCommandRootListsNothing(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Commands = nil
		c.CommandRoot = "commands"
	})
	ctx := context.Background()

	inv, err := f.engine.Parse(ctx, argv())
	require.NoError(t, err)
	require.Equal(t, "help", inv.Command)
	require.Empty(t, inv.Options["commands"])

	inv, err = f.engine.Parse(ctx, argv("-v"))
	require.NoError(t, err)
	require.Equal(t, "version", inv.Command)

	inv, err = f.engine.Parse(ctx, argv("build"))
	require.NoError(t, err)
	require.Equal(t, KindPlugin, inv.Kind)
}

func TestNew_DefaultProviderListsScriptsOnly(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Commands = nil
		c.Provider = nil
	})
	testutil.WriteFiles(t, f.fs, map[string]string{
		"/cmd/build.sh":     "echo built\n",
		"/cmd/build.sh.bak": "echo old\n",
		"/cmd/deploy.py":    "print('deploy')\n",
		"/cmd/README.md":    "# commands\n",
		"/bin/tool-deploy":  "#!/bin/sh\n",
	})
	ctx := context.Background()

	commands, err := f.engine.Commands()
	require.NoError(t, err)
	require.Equal(t, []string{"build"}, commands)

	inv, err := f.engine.Parse(ctx, argv("deploy"))
	require.NoError(t, err)
	require.Equal(t, KindPlugin, inv.Kind)

	require.NoError(t, f.engine.Run(ctx, argv("deploy")))
	require.Equal(t, []spawnCall{{path: "/bin/tool-deploy", args: []string{}}}, f.spawns)
}

func TestSchema_BuiltinReadErrorNamesBuiltinRoot(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.BuiltinSchemas = failingSource{err: errors.New("corrupt")}
	})

	_, err := f.engine.Schema("help")

	var ue *usage.Error
	require.ErrorAs(t, err, &ue)
	require.ErrorIs(t, err, usage.ErrReadOption)
	require.Equal(t, schema.BuiltinRoot, ue.Data["file"])
}

func TestCommands_ScansCommandRoot(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Commands = nil })
	testutil.WriteFiles(t, f.fs, map[string]string{
		"/cmd/clean.sh": "echo clean\n",
		"/cmd/build.sh": "echo build\n",
	})

	commands, err := f.engine.Commands()

	require.NoError(t, err)
	require.Equal(t, []string{"build", "clean"}, commands)
}

func TestRun_NormalCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Run(ctx, argv("build", "--retry", "2", "src")))
	require.NoError(t, f.engine.Run(ctx, argv("build")))

	h, err := f.engine.Commander(ctx, "build")
	require.NoError(t, err)
	rec := h.(*recorder)
	require.Len(t, rec.runs, 2)
	require.Equal(t, float64(2), rec.runs[0]["retry"])
	require.Equal(t, []string{"src"}, rec.runs[0].Args())
	require.Equal(t, "/work", rec.env.Context["cwd"])
	require.Same(t, f.engine, rec.env.Context["commander"])
}

func TestRun_ParseErrorSkipsHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.engine.Run(ctx, argv("build", "--retry", "12"))
	require.ErrorIs(t, err, usage.ErrInvalid)

	h, err := f.engine.Commander(ctx, "build")
	require.NoError(t, err)
	require.Empty(t, h.(*recorder).runs)
}

func TestRun_Version(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Run(context.Background(), argv("-v")))

	require.Equal(t, "1.2.3\n", f.stdout.String())
}

func TestRun_HelpOverview(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Run(context.Background(), argv()))

	require.Contains(t, f.stdout.String(), "where <command> is one of")
	require.Contains(t, f.stdout.String(), "build, clean")
}

func TestRun_BrokenCommandIsFailReadCommand(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Commands = []string{"broken"}
		c.Provider = commander.NewCatalog().
			Register("/cmd", "broken", func() commander.Handler { panic("unexpected token") })
	})

	err := f.engine.Run(context.Background(), argv("broken"))

	require.ErrorIs(t, err, usage.ErrReadCommand)
}

func TestRun_Plugin(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFiles(t, f.fs, map[string]string{"/bin/tool-deploy": "#!/bin/sh\n"})

	var published []events.Event
	f.engine.On(events.Plugin, func(e events.Event) { published = append(published, e) })

	err := f.engine.Run(context.Background(), argv("deploy", "--to", "prod"))

	require.NoError(t, err)
	require.Equal(t, []spawnCall{{path: "/bin/tool-deploy", args: []string{"--to", "prod"}}}, f.spawns)
	require.Len(t, published, 1)
	require.Equal(t, "deploy", published[0].Command)
	require.Equal(t, []string{"--to", "prod"}, published[0].Args)
}

func TestRun_PluginInheritsUnwrappedStreams(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	f := newFixture(t, func(c *Config) {
		c.Stdout = ui.NewWriterTo(stdout, ui.WithPagerDisabled())
		c.Stderr = stderr
	})
	testutil.WriteFiles(t, f.fs, map[string]string{"/bin/tool-deploy": "#!/bin/sh\n"})

	require.NoError(t, f.engine.Run(context.Background(), argv("deploy")))

	require.Same(t, stdout, f.stdio.Stdout)
	require.Same(t, stderr, f.stdio.Stderr)
}

func TestRun_PluginExitCode(t *testing.T) {
	f := newFixture(t)
	f.code = 3
	testutil.WriteFiles(t, f.fs, map[string]string{"/bin/tool-deploy": "#!/bin/sh\n"})

	err := f.engine.Run(context.Background(), argv("deploy"))

	var exit *usage.ExitError
	require.ErrorAs(t, err, &exit)
	require.Equal(t, 3, exit.Code)
}

func TestRun_PluginNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Run(context.Background(), argv("claen"))

	require.ErrorIs(t, err, usage.ErrNotFound)
	require.Contains(t, err.Error(), "\tclean")
	require.Empty(t, f.spawns)
}

func TestEngines_AreIsolated(t *testing.T) {
	a := newFixture(t)
	b := newFixture(t)
	ctx := context.Background()

	require.NoError(t, a.engine.Run(ctx, argv("build")))

	ha, err := a.engine.Commander(ctx, "build")
	require.NoError(t, err)
	hb, err := b.engine.Commander(ctx, "build")
	require.NoError(t, err)

	require.NotSame(t, ha, hb)
	require.Equal(t, 1, ha.(*recorder).env.Context["runs"])
	require.NotContains(t, hb.(*recorder).env.Context, "runs")
	require.Empty(t, hb.(*recorder).runs)
}

func TestCommandExists(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.engine.CommandExists("build"))
	require.True(t, f.engine.CommandExists("help"))
	require.False(t, f.engine.CommandExists("deploy"))
	require.False(t, f.engine.CommandExists("-h"))
}

func TestWithContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.WithContext(map[string]any{"user": "ada"})

	h, err := f.engine.Commander(ctx, "clean")
	require.NoError(t, err)
	require.Equal(t, "ada", h.(*recorder).env.Context["user"])
}
