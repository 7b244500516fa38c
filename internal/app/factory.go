package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/config"
	"github.com/footprint-tools/comfort/internal/dispatchers"
	"github.com/footprint-tools/comfort/internal/domain"
	"github.com/footprint-tools/comfort/internal/log"
	"github.com/footprint-tools/comfort/internal/store"
	"github.com/footprint-tools/comfort/internal/ui"
	"github.com/footprint-tools/comfort/internal/ui/style"
)

// Application is a wired engine together with the resources it owns.
type Application struct {
	Config  *config.Config
	Engine  *dispatchers.Engine
	Logger  domain.Logger
	Output  domain.OutputWriter
	History *store.Store

	recorder *store.Recorder
}

// Options configures the application factory.
type Options struct {
	// Sources are the configuration sources.
	Sources config.Sources

	// Fs backs command scanning, schemas and plugin lookup.
	Fs afero.Fs

	// Pager options
	PagerDisabled bool

	// Style options
	StyleEnabled bool

	// Provider overrides the normal command provider.
	Provider commander.Provider

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultOptions returns the default application options.
func DefaultOptions() Options {
	return Options{
		Sources:      config.DefaultSources(),
		StyleEnabled: true,
	}
}

// New creates a new Application with all dependencies wired up.
func New(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.Load(opts.Sources)
	if err != nil {
		return nil, err
	}

	// Initialize logger, falling back to NopLogger on error. Engine lines
	// are prefixed with the tool name.
	var logger, engineLogger domain.Logger = log.NopLogger{}, log.NopLogger{}
	if cfg.EnableLog && cfg.LogFile != "" {
		if l, err := log.New(cfg.LogFile, log.ParseLevel(cfg.LogLevel)); err == nil {
			logger, engineLogger = l, l.WithPrefix(cfg.Name)
		}
	}

	// Initialize style
	style.Init(opts.StyleEnabled && cfg.Color, cfg.Raw)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	var writerOpts []ui.WriterOption
	if opts.PagerDisabled {
		writerOpts = append(writerOpts, ui.WithPagerDisabled())
	}
	if cfg.Pager != "" {
		writerOpts = append(writerOpts, ui.WithPager(cfg.Pager))
	}
	output := ui.NewWriterTo(stdout, writerOpts...)

	engine, err := dispatchers.New(dispatchers.Config{
		Name:        cfg.Name,
		CommandRoot: cfg.CommandRoot,
		OptionRoot:  cfg.OptionRoot,
		Offset:      cfg.Offset,
		Commands:    cfg.Commands,
		Strict:      cfg.Strict,
		Root:        cfg.Root,
		Info:        cfg.Info,
		Version:     cfg.Version,
		Fs:          opts.Fs,
		Provider:    opts.Provider,
		Logger:      engineLogger,
		Stdin:       opts.Stdin,
		Stdout:      output,
		Stderr:      opts.Stderr,
	})
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	app := &Application{
		Config: cfg,
		Engine: engine,
		Logger: logger,
		Output: output,
	}

	if cfg.History && cfg.HistoryFile != "" {
		if err := app.openHistory(ctx); err != nil {
			_ = Close(app)
			return nil, err
		}
	}

	logger.Debug("app: %s ready (commands=%s, options=%s, history=%t)", cfg.Name, cfg.CommandRoot, cfg.OptionRoot, app.History != nil)
	return app, nil
}

func (a *Application) openHistory(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(a.Config.HistoryFile), 0700); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	s, err := store.New(a.Config.HistoryFile)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	a.History = s

	a.recorder = store.NewRecorder(s, a.Logger)
	return a.recorder.Start(ctx, a.Engine.Events())
}

// Run runs one CLI invocation.
func (a *Application) Run(ctx context.Context, argv []string) error {
	return a.Engine.CLI(ctx, argv)
}

// Close cleans up application resources.
func Close(app *Application) error {
	if app == nil {
		return nil
	}
	if app.recorder != nil {
		app.recorder.Stop()
	}
	if app.Engine != nil {
		_ = app.Engine.Close()
	}
	if app.History != nil {
		_ = app.History.Close()
	}
	if app.Logger != nil {
		_ = app.Logger.Close()
	}
	return nil
}
