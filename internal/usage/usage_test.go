package usage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnknownCommand_Message(t *testing.T) {
	err := UnknownCommand("cortex", "biuld")

	require.Equal(t, `cortex: "biuld" is not a "cortex" command. See "cortex --help".`, err.Error())
	require.Equal(t, "COMMAND_NOT_FOUND", err.Code())
	require.Equal(t, 1, err.GetExitCode())
	require.Equal(t, "biuld", err.Data["command"])
	require.Equal(t, "cortex", err.Data["name"])
}

func TestUnknownCommand_Suggestions(t *testing.T) {
	single := UnknownCommand("cortex", "biuld", "build")
	require.Contains(t, single.Error(), "The most similar command is\n\tbuild")

	multi := UnknownCommand("cortex", "cln", "clean", "clone")
	require.Contains(t, multi.Error(), "The most similar commands are\n\tclean\n\tclone")
}

func TestFailRead_WrapsCause(t *testing.T) {
	cause := errors.New("yaml: line 3: did not find expected key")

	optErr := FailReadOption("build", "/opt/build.yaml", cause)
	require.Equal(t, "FAIL_READ_OPTION", optErr.Code())
	require.ErrorIs(t, optErr, cause)
	require.Contains(t, optErr.Error(), "/opt/build.yaml")

	cmdErr := FailReadCommand("build", "/cmd/build.sh", cause)
	require.Equal(t, "FAIL_READ_COMMAND", cmdErr.Code())
	require.ErrorIs(t, cmdErr, cause)
}

func TestError_IsKind(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", UnknownCommand("tool", "nope"))

	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrReadCommand)
}

func TestInvalidOptions_SortedLines(t *testing.T) {
	err := InvalidOptions("blah", map[string]error{
		"retry": errors.New("must be less than 10"),
		"cwd":   errors.New("not a directory"),
	})

	require.Equal(t, "INVALID_OPTION", err.Code())
	require.Equal(t, 2, err.GetExitCode())
	require.Equal(t,
		"Error parsing option \"--cwd\": not a directory\nError parsing option \"--retry\": must be less than 10",
		err.Error())
}

func TestExit(t *testing.T) {
	require.NoError(t, Exit(0))

	err := Exit(3)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Code)
	require.Equal(t, "exit status 3", err.Error())
}

func TestGetExitCode_Override(t *testing.T) {
	err := &Error{Kind: ErrCommandNotFound, ExitCode: 127}
	require.Equal(t, 127, err.GetExitCode())
}
