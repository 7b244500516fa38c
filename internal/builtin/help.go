package builtin

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/footprint-tools/comfort/internal/commander"
	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/registry"
	"github.com/footprint-tools/comfort/internal/ui/style"
)

// Help prints the command overview, the quick help of one command
// ("tool build -h") or its detailed help ("tool help build").
type Help struct {
	info string
	env  commander.Env
}

// Attach implements commander.Attacher.
func (h *Help) Attach(env commander.Env) { h.env = env }

// Run implements commander.Handler.
func (h *Help) Run(_ context.Context, opts options.Values) error {
	name := opts.String("name", h.env.Name)
	command := opts.String("command", "")

	if command == "" || command == AllCommands {
		commands, err := h.commands(opts)
		if err != nil {
			return err
		}
		h.print(overview(name, h.info, commands))
		return nil
	}

	data := map[string]string{"name": name, "command": command}

	var s *options.Schema
	if h.env.Schema != nil {
		var err error
		if s, err = h.env.Schema(command); err != nil {
			return err
		}
	}

	if s == nil {
		commands, err := h.commands(opts)
		if err != nil {
			return err
		}
		if slices.Contains(commands, command) || registry.IsBuiltin(command) {
			h.print(style.Render(`No help info for "{{name}} {{command}}"`, data) + "\n")
		} else {
			h.print(style.Render(`{{name}}: "{{command}}" is not a {{name}} command. See "{{name}} --help".`, data) + "\n")
		}
		return nil
	}

	if opts.Bool("detail") {
		h.page(detail(s, data))
		return nil
	}
	h.print(quick(s, data))
	return nil
}

// commands prefers the list the engine injected into the options.
func (h *Help) commands(opts options.Values) ([]string, error) {
	if list, ok := opts["commands"].([]string); ok {
		return list, nil
	}
	if h.env.Commands == nil {
		return nil, nil
	}
	return h.env.Commands()
}

func (h *Help) out() io.Writer {
	if h.env.Stdout == nil {
		return io.Discard
	}
	return h.env.Stdout
}

func (h *Help) print(text string) {
	fmt.Fprint(h.out(), text)
}

func (h *Help) page(text string) {
	if p, ok := h.out().(interface{ Pager(string) }); ok {
		p.Pager(text)
		return
	}
	h.print(text)
}

func overview(name, info string, commands []string) string {
	var b strings.Builder
	data := map[string]string{"name": name}

	if info != "" {
		b.WriteString("\n" + info + "\n\n")
	}
	lines := []string{
		"{{bold Usage}}: {{name}} <command>",
		"",
		"where <command> is one of",
		"    " + strings.Join(commands, ", "),
		"",
		"{{name}} --help            show {{name}} help",
		"{{name}} <command> -h      quick help on <command>",
		"{{name}} help <command>    help on <command> in detail",
		"",
	}
	for _, line := range lines {
		b.WriteString(style.Render(line, data) + "\n")
	}
	return b.String()
}

func quick(s *options.Schema, data map[string]string) string {
	var b strings.Builder
	for _, line := range s.Usage {
		b.WriteString(style.Render(line, data) + "\n")
	}
	b.WriteString(style.Render(`View help info in detail, see: "{{name}} help {{command}}"`, data) + "\n")
	return b.String()
}

func detail(s *options.Schema, data map[string]string) string {
	const indent = "    "
	var b strings.Builder

	title := style.Bold(data["name"]) + " " + style.Bold(data["command"])
	if s.Info != "" {
		title += ": " + style.Render(s.Info, data)
	}
	b.WriteString(title + "\n\n")

	b.WriteString(style.Bold("Usage:") + "\n")
	for _, line := range s.Usage {
		b.WriteString(indent + style.Render(line, data) + "\n")
	}

	if rows := optionTable(s); len(rows) > 0 {
		b.WriteString(style.Bold("Options:") + "\n")
		for _, row := range rows {
			b.WriteString(indent + row + "\n")
		}
	}
	return b.String()
}

// optionTable renders one aligned line per option:
//
//	--force, --no-force, -f    Overwrite existing files.
//	--retry <retry>            Default to `3`
func optionTable(s *options.Schema) []string {
	type row struct{ flags, info string }

	rows := make([]row, 0, len(s.Fields))
	width := 0
	for _, f := range s.Fields {
		r := row{flags: flagColumn(f), info: infoColumn(f)}
		width = max(width, style.Width(r.flags))
		rows = append(rows, r)
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		gap := strings.Repeat(" ", 4+width-style.Width(r.flags))
		lines[i] = strings.TrimRight(r.flags+gap+r.info, " ")
	}
	return lines
}

func flagColumn(f *options.Field) string {
	var unit, flags string
	switch f.Type {
	case options.Boolean:
		flags = "--" + f.Name + ", --no-" + f.Name
	case options.Path:
		unit = " <" + style.Underline("path") + ">"
	case options.URL:
		unit = " <" + style.Underline("url") + ">"
	default:
		unit = " <" + f.Name + ">"
	}
	if flags == "" {
		flags = "--" + f.Name + unit
	}

	if f.Short != "" {
		flags += ", -" + f.Short
		if len(f.ShortPattern) < 2 {
			flags += unit
		}
	}
	if len(f.ShortPattern) > 0 {
		flags += "(" + strings.Join(f.ShortPattern, " ") + ")"
	}
	return flags
}

func infoColumn(f *options.Field) string {
	info := f.Info
	if f.Default != nil {
		if info != "" {
			info += " "
		}
		info += fmt.Sprintf("Default to `%v`", f.Default)
	}
	return info
}
