// Package config loads the engine configuration.
//
// Values are resolved in this order, later sources winning:
//  1. Defaults
//  2. The key=value configuration file
//  3. A dotenv file, if one is given
//  4. COMFORT_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/footprint-tools/comfort/internal/paths"
)

// Config is the resolved engine configuration.
type Config struct {
	Name        string   `env:"COMFORT_NAME"`
	Info        string   `env:"COMFORT_INFO"`
	Version     string   `env:"COMFORT_VERSION"`
	CommandRoot string   `env:"COMFORT_COMMAND_ROOT"`
	OptionRoot  string   `env:"COMFORT_OPTION_ROOT"`
	Root        string   `env:"COMFORT_ROOT"`
	Offset      int      `env:"COMFORT_OFFSET"`
	Commands    []string `env:"COMFORT_COMMANDS" envSeparator:","`
	Strict      bool     `env:"COMFORT_STRICT"`

	EnableLog bool   `env:"COMFORT_ENABLE_LOG"`
	LogLevel  string `env:"COMFORT_LOG_LEVEL"`
	LogFile   string `env:"COMFORT_LOG_FILE"`

	History     bool   `env:"COMFORT_HISTORY"`
	HistoryFile string `env:"COMFORT_HISTORY_FILE"`

	Pager string `env:"COMFORT_PAGER"`
	Color bool   `env:"COMFORT_COLOR"`

	// Raw holds every file value merged over the defaults, including keys
	// that have no field (color_* overrides).
	Raw map[string]string
}

// Sources names where Load reads from. Empty fields are skipped.
type Sources struct {
	Fs afero.Fs

	// File is the key=value configuration file.
	File string

	// DotEnv is an optional dotenv file whose variables apply before the
	// process environment.
	DotEnv string

	// Environ is the process environment as KEY=value pairs.
	Environ []string
}

// DefaultSources reads the user configuration file, a .env file in the
// working directory and the process environment.
func DefaultSources() Sources {
	return Sources{
		Fs:      afero.NewOsFs(),
		File:    paths.ConfigFilePath(),
		DotEnv:  ".env",
		Environ: os.Environ(),
	}
}

// Load resolves the configuration from src.
func Load(src Sources) (*Config, error) {
	if src.Fs == nil {
		src.Fs = afero.NewOsFs()
	}

	raw := make(map[string]string, len(Defaults))
	for key, fn := range Defaults {
		raw[key] = fn()
	}

	if src.File != "" {
		lines, err := ReadLines(src.Fs, src.File)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", src.File, err)
		}
		file, err := Parse(lines)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", src.File, err)
		}
		maps.Copy(raw, file)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	environment := make(map[string]string)
	if src.DotEnv != "" {
		dot, err := readDotEnv(src.Fs, src.DotEnv)
		if err != nil {
			return nil, err
		}
		maps.Copy(environment, dot)
	}
	for _, pair := range src.Environ {
		if k, v, ok := strings.Cut(pair, "="); ok {
			environment[k] = v
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.Offset < 0 {
		return nil, fmt.Errorf("config: offset must not be negative, got %d", cfg.Offset)
	}
	return cfg, nil
}

func readDotEnv(fsys afero.Fs, path string) (map[string]string, error) {
	file, err := fsys.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	vars, err := godotenv.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return vars, nil
}

func fromRaw(raw map[string]string) (*Config, error) {
	cfg := &Config{
		Name:        raw["name"],
		Info:        raw["info"],
		Version:     raw["version"],
		CommandRoot: raw["command_root"],
		OptionRoot:  raw["option_root"],
		Root:        raw["root"],
		LogLevel:    raw["log_level"],
		LogFile:     raw["log_file"],
		HistoryFile: raw["history_file"],
		Pager:       raw["pager"],
		Raw:         raw,
	}

	if list := strings.TrimSpace(raw["commands"]); list != "" {
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Commands = append(cfg.Commands, name)
			}
		}
	}

	var err error
	if cfg.Offset, err = strconv.Atoi(raw["offset"]); err != nil {
		return nil, fmt.Errorf("config: offset: %w", err)
	}

	bools := map[string]*bool{
		"strict":     &cfg.Strict,
		"enable_log": &cfg.EnableLog,
		"history":    &cfg.History,
		"color":      &cfg.Color,
	}
	for key, dst := range bools {
		if *dst, err = strconv.ParseBool(raw[key]); err != nil {
			return nil, fmt.Errorf("config: %s: %w", key, err)
		}
	}

	return cfg, nil
}
