package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/comfort/internal/config"
	"github.com/footprint-tools/comfort/internal/log"
	"github.com/footprint-tools/comfort/internal/store"
)

func testOptions(t *testing.T, lines ...string) (Options, *bytes.Buffer) {
	t.Helper()

	fs := afero.NewMemMapFs()
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, afero.WriteFile(fs, "/etc/comfort/config", []byte(content), 0o600))

	out := &bytes.Buffer{}
	return Options{
		Sources: config.Sources{
			Fs:      fs,
			File:    "/etc/comfort/config",
			Environ: []string{},
		},
		Fs:            fs,
		PagerDisabled: true,
		Stdout:        out,
		Stderr:        &bytes.Buffer{},
	}, out
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	// StyleEnabled should be true by default
	require.True(t, opts.StyleEnabled)
	require.NotEmpty(t, opts.Sources.File)
}

func TestNew_FromConfigFile(t *testing.T) {
	opts, out := testOptions(t,
		"name=cortex",
		"version=0.4.0",
		"commands=build,clean",
		"enable_log=false",
	)

	app, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer func() { _ = Close(app) }()

	require.Equal(t, "cortex", app.Engine.Name())
	require.IsType(t, log.NopLogger{}, app.Logger)
	require.Nil(t, app.History)

	require.NoError(t, app.Run(context.Background(), []string{"comfort", "cortex", "--version"}))
	require.Equal(t, "0.4.0\n", out.String())
}

func TestNew_InvalidConfig(t *testing.T) {
	opts, _ := testOptions(t, "offset=-2")

	_, err := New(context.Background(), opts)

	require.ErrorContains(t, err, "offset must not be negative")
}

func TestNew_WithLogEnabled(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "comfort.log")
	opts, _ := testOptions(t, "enable_log=true", "log_file="+logFile, "commands=build")

	app, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer func() { _ = Close(app) }()

	require.IsType(t, &log.Logger{}, app.Logger)
}

func TestNew_WithHistory(t *testing.T) {
	historyFile := filepath.Join(t.TempDir(), "data", "history.db")
	opts, _ := testOptions(t,
		"name=cortex",
		"version=1.0.0",
		"commands=build",
		"enable_log=false",
		"history=true",
		"history_file="+historyFile,
	)
	ctx := context.Background()

	app, err := New(ctx, opts)
	require.NoError(t, err)
	defer func() { _ = Close(app) }()
	require.NotNil(t, app.History)

	require.NoError(t, app.Run(ctx, []string{"comfort", "cortex", "version"}))
	require.Error(t, app.Run(ctx, []string{"comfort", "cortex", "deploy"}))

	rows, err := app.History.List(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "deploy", rows[0].Command)
	require.Equal(t, "COMMAND_NOT_FOUND", rows[0].ErrorCode)
	require.Equal(t, "version", rows[1].Command)
	require.Empty(t, rows[1].ErrorCode)
}

func TestClose_Nil(t *testing.T) {
	require.NoError(t, Close(nil))
	require.NoError(t, Close(&Application{}))
}

func TestRun_WithoutCommandRoot(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{name: "bare", argv: []string{"comfort", "cortex"}, want: "cortex help <command>"},
		{name: "help flag", argv: []string{"comfort", "cortex", "--help"}, want: "cortex help <command>"},
		{name: "version flag", argv: []string{"comfort", "cortex", "-v"}, want: "0.4.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, out := testOptions(t, "name=cortex", "version=0.4.0", "enable_log=false")

			app, err := New(context.Background(), opts)
			require.NoError(t, err)
			defer func() { _ = Close(app) }()

			require.NoError(t, app.Run(context.Background(), tt.argv))
			require.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRun_PluginOwnsStdout(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("reads /proc/self/fd")
	}

	dir := t.TempDir()
	plugin := filepath.Join(dir, "cortex-whereami")
	require.NoError(t, os.WriteFile(plugin, []byte("#!/bin/sh\nreadlink /proc/self/fd/1\n"), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	defer func() { _ = stdout.Close() }()

	opts, _ := testOptions(t, "name=cortex", "enable_log=false")
	opts.Fs = afero.NewOsFs()
	opts.Stdout = stdout

	app, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer func() { _ = Close(app) }()

	require.NoError(t, app.Run(context.Background(), []string{"comfort", "cortex", "whereami"}))

	want, err := filepath.EvalSymlinks(stdout.Name())
	require.NoError(t, err)
	got, err := os.ReadFile(stdout.Name())
	require.NoError(t, err)
	require.Equal(t, want+"\n", string(got))
}
