package options

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/footprint-tools/comfort/internal/usage"
)

// DefaultOffset is the number of leading argv slots (runtime, program,
// command) before user flags begin.
const DefaultOffset = 3

// rawValue captures the text given for a flag; coercion happens after
// pflag is done so a bad value becomes a per-field error rather than an
// aborted parse.
type rawValue struct {
	field *Field
	text  string
	set   bool
	seq   int
	clock *int
}

func (r *rawValue) String() string { return r.text }

func (r *rawValue) Set(s string) error {
	*r.clock++
	r.text = s
	r.set = true
	r.seq = *r.clock
	return nil
}

func (r *rawValue) Type() string { return r.field.Type.String() }

// Parse parses argv[offset:] against s. A nil schema means the command takes
// no structured options and yields empty values.
//
// The returned values hold every option that parsed; rejected options are
// reported in Details, and a non-empty Details also yields an
// INVALID_OPTION error naming them.
func Parse(ctx context.Context, command string, s *Schema, argv []string, offset int) (Values, Details, error) {
	if s == nil {
		return Values{}, nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(argv) {
		offset = len(argv)
	}

	fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	var clock int
	positive := make(map[string]*rawValue, len(s.Fields))
	negative := make(map[string]*rawValue)
	shorts := singleShorts(s)

	for _, f := range s.Fields {
		rv := &rawValue{field: f, clock: &clock}
		flag := fs.VarPF(rv, f.Name, shorts[f.Name], f.Info)
		positive[f.Name] = rv

		if f.Type == Boolean {
			flag.NoOptDefVal = "true"
			neg := &rawValue{field: f, clock: &clock}
			fs.VarPF(neg, "no-"+f.Name, "", "").NoOptDefVal = "true"
			negative[f.Name] = neg
		}
	}

	table := shorthandTable(s)
	if err := fs.Parse(expand(stripHelp(argv[offset:], s), table, s)); err != nil {
		return nil, nil, &usage.Error{
			Kind:    usage.ErrInvalidOption,
			Message: fmt.Sprintf("%s: %v", command, err),
			Data:    map[string]any{"command": command},
			Err:     err,
		}
	}

	values := Values{ArgsKey: fs.Args()}
	details := Details{}

	for _, f := range s.Fields {
		value, present, err := resolve(f, positive[f.Name], negative[f.Name])
		if err != nil {
			details[f.Name] = err
			continue
		}

		if !present && f.Default != nil {
			value, present = f.Default, true
		}

		if f.Generate != nil {
			var current any
			if present {
				current = value
			}
			value = f.Generate(current, values)
			present = value != nil
		}

		if f.Set != nil {
			var current any
			if present {
				current = value
			}
			value, err = f.Set(ctx, current, values)
			if err != nil {
				details[f.Name] = err
				continue
			}
			present = value != nil
		}

		if present {
			values[f.Name] = value
		}
	}

	if len(details) > 0 {
		return values, details, usage.InvalidOptions(command, details)
	}
	return values, nil, nil
}

// resolve picks the last of --name / --no-name and coerces it.
func resolve(f *Field, pos, neg *rawValue) (any, bool, error) {
	if neg != nil && neg.set && (!pos.set || neg.seq > pos.seq) {
		b, err := coerceBool(neg.text)
		if err != nil {
			return nil, false, err
		}
		return !b, true, nil
	}
	if !pos.set {
		return nil, false, nil
	}
	v, err := coerce(f, pos.text)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// singleShorts returns the one-letter shorthand registered with pflag for
// each field, so clusters like -fw work. Multi-letter shorthands and
// patterns go through the expansion table instead.
func singleShorts(s *Schema) map[string]string {
	out := make(map[string]string)
	used := make(map[string]bool)

	for _, f := range s.Fields {
		if len(f.Short) == 1 && len(f.ShortPattern) == 0 && !used[f.Short] {
			out[f.Name] = f.Short
			used[f.Short] = true
		}
	}

	for short, target := range s.Shorthands {
		if len(short) != 1 || used[short] {
			continue
		}
		f, ok := s.Field(target)
		if !ok || out[f.Name] != "" || len(f.ShortPattern) > 0 {
			continue
		}
		out[f.Name] = short
		used[short] = true
	}

	return out
}

// shorthandTable maps every shorthand to the tokens it stands for. For each
// shorthand of a boolean option, "n<short>" is added as its negation
// (-f/--force gives --nf for --no-force) unless already taken.
func shorthandTable(s *Schema) map[string][]string {
	table := make(map[string][]string)

	for short, target := range s.Shorthands {
		tokens := strings.Fields(target)
		if len(tokens) == 0 {
			continue
		}
		if !strings.HasPrefix(tokens[0], "-") {
			tokens[0] = "--" + tokens[0]
		}
		table[short] = tokens
	}

	for _, f := range s.Fields {
		if f.Short == "" {
			continue
		}
		if len(f.ShortPattern) > 0 {
			table[f.Short] = append([]string(nil), f.ShortPattern...)
		} else if _, ok := table[f.Short]; !ok {
			table[f.Short] = []string{"--" + f.Name}
		}
	}

	for short, tokens := range table {
		if len(tokens) != 1 {
			continue
		}
		f, ok := s.Field(strings.TrimPrefix(tokens[0], "--"))
		if !ok || f.Type != Boolean {
			continue
		}
		neg := "n" + short
		if _, taken := table[neg]; !taken {
			table[neg] = []string{"--no-" + f.Name}
		}
	}

	return table
}

// expand replaces "-k" and "--k" tokens found in table with their
// expansions. Declared long names win over shorthands; "--" stops expansion.
func expand(args []string, table map[string][]string, s *Schema) []string {
	out := make([]string, 0, len(args))

	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.Contains(arg, "=") {
			out = append(out, arg)
			continue
		}

		key := strings.TrimLeft(arg, "-")
		if strings.HasPrefix(arg, "--") {
			if _, declared := s.Field(key); declared {
				out = append(out, arg)
				continue
			}
		}

		if tokens, ok := table[key]; ok {
			out = append(out, tokens...)
			continue
		}
		out = append(out, arg)
	}

	return out
}

// stripHelp drops -h/--help, which pflag would otherwise turn into ErrHelp.
// Help is routed by the classifier before options are parsed.
func stripHelp(args []string, s *Schema) []string {
	if _, declared := s.Field("help"); declared {
		return args
	}
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if arg == "-h" || arg == "--help" {
			continue
		}
		out = append(out, arg)
	}
	return out
}
