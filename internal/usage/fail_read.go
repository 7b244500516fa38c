package usage

import "fmt"

// FailReadOption is returned when an option schema file exists but cannot be
// loaded.
func FailReadOption(command, file string, err error) *Error {
	return &Error{
		Kind:    ErrFailReadOption,
		Message: fmt.Sprintf("Fails to read option file %q: %v", file, err),
		Data: map[string]any{
			"command": command,
			"file":    file,
		},
		Err: err,
	}
}

// FailReadCommand is returned when a command handler exists but cannot be
// loaded.
func FailReadCommand(command, file string, err error) *Error {
	return &Error{
		Kind:    ErrFailReadCommand,
		Message: fmt.Sprintf("Fails to read command file %q: %v", file, err),
		Data: map[string]any{
			"command": command,
			"file":    file,
		},
		Err: err,
	}
}
