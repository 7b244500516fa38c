package usage

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidOptions is returned when one or more option values were rejected.
// details maps option names to the reason each was rejected.
func InvalidOptions(command string, details map[string]error) *Error {
	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("Error parsing option \"--%s\": %v", name, details[name]))
	}

	return &Error{
		Kind:    ErrInvalidOption,
		Message: strings.Join(lines, "\n"),
		Data: map[string]any{
			"command": command,
			"options": names,
		},
	}
}
