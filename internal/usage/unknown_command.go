package usage

import (
	"fmt"
	"strings"
)

// UnknownCommand is returned when a command is neither registered nor
// available as a plugin executable.
func UnknownCommand(name, command string, suggestions ...string) *Error {
	msg := fmt.Sprintf("%s: %q is not a %q command. See \"%s --help\".", name, command, name, name)

	if len(suggestions) == 1 {
		msg += fmt.Sprintf("\n\nThe most similar command is\n\t%s", suggestions[0])
	} else if len(suggestions) > 1 {
		msg += "\n\nThe most similar commands are\n\t" + strings.Join(suggestions, "\n\t")
	}

	return &Error{
		Kind:    ErrCommandNotFound,
		Message: msg,
		Data: map[string]any{
			"name":    name,
			"command": command,
		},
	}
}
