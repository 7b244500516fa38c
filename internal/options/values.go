package options

import (
	"fmt"
	"strconv"
)

// ArgsKey holds the positional arguments left after option parsing.
const ArgsKey = "_"

// Values is the parsed option set handed to a command handler.
type Values map[string]any

// Has returns true if the option was set, by the user or by a default.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Bool returns the boolean value of an option, or false if absent.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// String returns the value of an option, or defaultVal if not present.
func (v Values) String(name, defaultVal string) string {
	raw, ok := v[name]
	if !ok || raw == nil {
		return defaultVal
	}
	switch s := raw.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// Number returns the numeric value of an option, or defaultVal if not present or invalid.
func (v Values) Number(name string, defaultVal float64) float64 {
	switch n := v[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return defaultVal
		}
		return f
	default:
		return defaultVal
	}
}

// Int returns the integer value of an option, or defaultVal if not present or invalid.
func (v Values) Int(name string, defaultVal int) int {
	if !v.Has(name) {
		return defaultVal
	}
	return int(v.Number(name, float64(defaultVal)))
}

// Args returns the positional arguments.
func (v Values) Args() []string {
	args, _ := v[ArgsKey].([]string)
	return args
}

// Merge copies every entry of other into v, overwriting existing keys.
func (v Values) Merge(other map[string]any) Values {
	for k, val := range other {
		v[k] = val
	}
	return v
}
