package options

import (
	"context"
	"fmt"
	"strings"
)

// FieldType is the value type of an option.
type FieldType int

const (
	String FieldType = iota
	Boolean
	Number
	Path
	URL
	Custom
)

func (t FieldType) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case Path:
		return "path"
	case URL:
		return "url"
	case Custom:
		return "custom"
	default:
		return "string"
	}
}

// ParseFieldType converts a declared type name to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "", "string":
		return String, nil
	case "boolean", "bool":
		return Boolean, nil
	case "number", "int", "float":
		return Number, nil
	case "path":
		return Path, nil
	case "url":
		return URL, nil
	case "custom":
		return Custom, nil
	default:
		return String, fmt.Errorf("unknown option type %q", s)
	}
}

// Field describes a single option.
type Field struct {
	Name string
	Type FieldType

	// Short is the shorthand flag without dashes. When ShortPattern is set,
	// the shorthand expands to those tokens instead of --Name.
	Short        string
	ShortPattern []string

	// Default is applied when the option is absent.
	Default any

	// Generate computes the value from the current one and the values parsed
	// so far. It always runs, after Default.
	Generate func(current any, parsed Values) any

	// Set transforms or rejects the value. It always runs, last; value is
	// nil when the option is absent.
	Set func(ctx context.Context, value any, parsed Values) (any, error)

	// Parse coerces the raw text of a Custom field.
	Parse func(raw string) (any, error)

	Info string
}

// Schema is the option declaration of one command.
type Schema struct {
	// Fields in declaration order. Defaults and generators run in this order.
	Fields []*Field

	// Shorthands maps a shorthand (without dashes) to an option name, or to
	// "no-<name>" for a negated boolean.
	Shorthands map[string]string

	Usage []string
	Info  string
}

// Field returns the field declared under name.
func (s *Schema) Field(name string) (*Field, bool) {
	if s == nil {
		return nil, false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Names returns the option names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Details collects per-option errors produced while parsing.
type Details map[string]error
