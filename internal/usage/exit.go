package usage

import "fmt"

// ExitError relays the raw exit status of a plugin process. It is not
// decorated with a message; callers decide how to present it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exit returns nil for a zero status and an *ExitError otherwise.
func Exit(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}
