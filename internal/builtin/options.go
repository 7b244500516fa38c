package builtin

import (
	"context"

	"github.com/footprint-tools/comfort/internal/options"
)

// AllCommands is the help target meaning "every command".
const AllCommands = "*"

func helpSchema() *options.Schema {
	return &options.Schema{
		Info: "Show help manual",
		Usage: []string{
			"{{name}} help [--command <command>]",
			"{{name}} help <command>",
		},
		Fields: []*options.Field{
			{
				Name: "command",
				Type: options.String,
				Info: "specify which command to show help.",
				// "help build" is "help --command build"; no target at all
				// means every command.
				Set: func(_ context.Context, value any, parsed options.Values) (any, error) {
					if s, _ := value.(string); s != "" {
						return s, nil
					}
					if args := parsed.Args(); len(args) > 0 && args[0] != "" {
						return args[0], nil
					}
					return AllCommands, nil
				},
			},
			{
				Name:    "detail",
				Type:    options.Boolean,
				Default: true,
				Info:    "whether show detail help information.",
				// The overview never shows details; otherwise only
				// --no-detail turns them off.
				Set: func(_ context.Context, value any, parsed options.Values) (any, error) {
					if parsed.String("command", "") == AllCommands {
						return false, nil
					}
					if b, ok := value.(bool); ok && !b {
						return false, nil
					}
					return true, nil
				},
			},
		},
	}
}

func versionSchema() *options.Schema {
	return &options.Schema{
		Info:  "Show version",
		Usage: []string{"{{name}} version", "{{name}} -v, --version"},
	}
}
