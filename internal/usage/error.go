package usage

// ErrorKind represents the type of usage error.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrCommandNotFound
	ErrFailReadOption
	ErrFailReadCommand
	ErrInvalidOption
)

// Exit codes:
//
//	Exit 1: Environment/system errors
//	  - Unknown errors
//	  - Command not found
//	  - Unreadable option schema
//	  - Unreadable command
//
//	Exit 2: User input errors
//	  - Invalid option value
var exitCodes = map[ErrorKind]int{
	ErrUnknown:         1,
	ErrCommandNotFound: 1,
	ErrFailReadOption:  1,
	ErrFailReadCommand: 1,
	ErrInvalidOption:   2,
}

var codes = map[ErrorKind]string{
	ErrUnknown:         "UNKNOWN",
	ErrCommandNotFound: "COMMAND_NOT_FOUND",
	ErrFailReadOption:  "FAIL_READ_OPTION",
	ErrFailReadCommand: "FAIL_READ_COMMAND",
	ErrInvalidOption:   "INVALID_OPTION",
}

// Error represents a user-facing usage error with semantic type information.
// Data carries the structured payload (tool name, command, file, ...) that
// listeners receive alongside the message.
type Error struct {
	Kind     ErrorKind
	Message  string
	Data     map[string]any
	Err      error
	ExitCode int // overrides the code derived from Kind when non-zero
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable string code of the error kind.
func (e *Error) Code() string {
	if c, ok := codes[e.Kind]; ok {
		return c
	}
	return codes[ErrUnknown]
}

// GetExitCode returns the appropriate exit code for this error.
// If ExitCode is explicitly set, it is returned; otherwise, the code is derived from Kind.
func (e *Error) GetExitCode() int {
	if e.ExitCode != 0 {
		return e.ExitCode
	}
	if code, ok := exitCodes[e.Kind]; ok {
		return code
	}
	return 1
}

// Is reports whether target is a usage error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrNotFound    = &Error{Kind: ErrCommandNotFound}
	ErrReadOption  = &Error{Kind: ErrFailReadOption}
	ErrReadCommand = &Error{Kind: ErrFailReadCommand}
	ErrInvalid     = &Error{Kind: ErrInvalidOption}
)

// Verify Error implements the error interface.
var _ error = (*Error)(nil)
