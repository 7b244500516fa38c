package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/footprint-tools/comfort/internal/usage"
)

// Type identifies an engine notification.
type Type string

const (
	// Plugin is published before an external plugin process is spawned.
	Plugin Type = "plugin"
	// Entry is published when the tool is run without any argument.
	Entry Type = "entry"
	// Complete is published after every dispatched invocation, success or not.
	Complete Type = "complete"
	// Error is published by the CLI run loop when an invocation fails.
	Error Type = "error"
	// Finish is published by the CLI run loop when an invocation succeeds.
	Finish Type = "finish"
)

// Event is a notification published on a Bus.
type Event struct {
	Type Type

	// ID correlates the event with the invocation that produced it.
	ID string

	Name    string
	Command string

	// Args holds the arguments forwarded to a plugin.
	Args []string

	Err     error
	Elapsed time.Duration
	Data    map[string]any
}

// Record is the wire form of an Event on the message stream.
type Record struct {
	Type      Type           `json:"type"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Command   string         `json:"command,omitempty"`
	Args      []string       `json:"args,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	ExitCode  int            `json:"exit_code"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Data      map[string]any `json:"data,omitempty"`
}

// Record converts e to its wire form.
func (e Event) Record() Record {
	r := Record{
		Type:      e.Type,
		ID:        e.ID,
		Name:      e.Name,
		Command:   e.Command,
		Args:      e.Args,
		ElapsedMS: e.Elapsed.Milliseconds(),
		Data:      e.Data,
	}
	if e.Err != nil {
		r.Error = e.Err.Error()
		r.ExitCode = 1

		var ue *usage.Error
		var xe *usage.ExitError
		switch {
		case errors.As(e.Err, &ue):
			r.ErrorCode = ue.Code()
			r.ExitCode = ue.GetExitCode()
		case errors.As(e.Err, &xe):
			r.ExitCode = xe.Code
		}
	}
	return r
}

// Decode parses a wire record.
func Decode(payload []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(payload, &r)
	return r, err
}
