package style

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ColorConfig holds all configurable colors.
// Values can be ANSI color numbers (0-255) or "bold" for bold styling.
type ColorConfig struct {
	Success string
	Warning string
	Error   string
	Info    string
	Muted   string
	Header  string
}

// BaseThemeNames lists available theme bases (auto-detects dark/light).
var BaseThemeNames = []string{"default", "mono", "contrast"}

// Themes contains the built-in color themes.
// Dark themes use bright colors, light themes use dark ones.
var Themes = map[string]ColorConfig{
	"default-dark": {
		Success: "10",
		Warning: "11",
		Error:   "9",
		Info:    "14",
		Muted:   "245",
		Header:  "bold",
	},
	"default-light": {
		Success: "28",
		Warning: "130",
		Error:   "124",
		Info:    "27",
		Muted:   "243",
		Header:  "bold",
	},
	"mono-dark": {
		Success: "50",
		Warning: "229",
		Error:   "210",
		Info:    "50",
		Muted:   "245",
		Header:  "bold",
	},
	"mono-light": {
		Success: "30",
		Warning: "136",
		Error:   "124",
		Info:    "30",
		Muted:   "244",
		Header:  "bold",
	},
	"contrast-dark": {
		Success: "46",
		Warning: "226",
		Error:   "196",
		Info:    "51",
		Muted:   "250",
		Header:  "bold",
	},
	"contrast-light": {
		Success: "22",
		Warning: "94",
		Error:   "88",
		Info:    "18",
		Muted:   "240",
		Header:  "bold",
	},
}

// colorKeys maps config keys to setters on ColorConfig.
var colorKeys = map[string]func(*ColorConfig, string){
	"color_success": func(c *ColorConfig, v string) { c.Success = v },
	"color_warning": func(c *ColorConfig, v string) { c.Warning = v },
	"color_error":   func(c *ColorConfig, v string) { c.Error = v },
	"color_info":    func(c *ColorConfig, v string) { c.Info = v },
	"color_muted":   func(c *ColorConfig, v string) { c.Muted = v },
	"color_header":  func(c *ColorConfig, v string) { c.Header = v },
}

// IsDarkBackground returns true if the terminal has a dark background.
func IsDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// ResolveThemeName appends a -dark or -light suffix to a base theme name,
// based on the terminal background.
func ResolveThemeName(name string) string {
	if strings.HasSuffix(name, "-dark") || strings.HasSuffix(name, "-light") {
		return name
	}
	if IsDarkBackground() {
		return name + "-dark"
	}
	return name + "-light"
}

// LoadColorConfig builds a ColorConfig from the given configuration map.
// Resolution priority:
// 1. Environment variable (COMFORT_COLOR_*)
// 2. Config file value
// 3. Theme value (from color_theme config)
// 4. Default theme (auto-detected based on terminal background)
func LoadColorConfig(cfg map[string]string) ColorConfig {
	themeName := ""
	if envTheme := os.Getenv("COMFORT_COLOR_THEME"); envTheme != "" {
		themeName = envTheme
	} else if cfgTheme := cfg["color_theme"]; cfgTheme != "" {
		themeName = cfgTheme
	} else {
		themeName = "default"
	}

	result, ok := Themes[ResolveThemeName(themeName)]
	if !ok {
		result = Themes["default-dark"]
	}

	for key, set := range colorKeys {
		if v := os.Getenv("COMFORT_" + strings.ToUpper(key)); v != "" {
			set(&result, v)
			continue
		}
		if v := cfg[key]; v != "" {
			set(&result, v)
		}
	}

	return result
}
