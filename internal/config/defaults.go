package config

import (
	"github.com/footprint-tools/comfort/internal/paths"
)

// Defaults holds the value of every key not set in the file (in code, not
// persisted).
var Defaults = map[string]func() string{
	"name":         func() string { return "comfort" },
	"info":         func() string { return "" },
	"version":      func() string { return "" },
	"command_root": func() string { return "commands" },
	"option_root":  func() string { return "options" },
	"root":         func() string { return "." },
	"offset":       func() string { return "3" },
	"commands":     func() string { return "" },
	"strict":       func() string { return "false" },
	"enable_log":   func() string { return "true" },
	"log_level":    func() string { return "info" },
	"log_file":     func() string { return paths.LogFilePath() },
	"history":      func() string { return "false" },
	"history_file": func() string { return paths.HistoryFilePath() },
	"pager":        func() string { return "less -FRSX" },
	"color":        func() string { return "true" },
	"color_theme":  func() string { return "default" }, // auto-detects -dark/-light
}
