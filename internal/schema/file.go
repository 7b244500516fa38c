package schema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/footprint-tools/comfort/internal/options"
	"github.com/footprint-tools/comfort/internal/usage"
)

var extensions = []string{".yaml", ".yml", ".json", ".jsonc"}

// FileSource reads schema files from a filesystem.
type FileSource struct {
	Fs afero.Fs
}

// NewFileSource returns a FileSource on fs, or on the OS filesystem if fs is nil.
func NewFileSource(fs afero.Fs) *FileSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSource{Fs: fs}
}

// Load implements Source.
func (f *FileSource) Load(command, root string) (*options.Schema, error) {
	if command == "" || root == "" {
		return nil, nil
	}

	for _, ext := range extensions {
		file := filepath.Join(root, command+ext)

		info, err := f.Fs.Stat(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, usage.FailReadOption(command, file, err)
		}
		if info.IsDir() {
			continue
		}

		data, err := afero.ReadFile(f.Fs, file)
		if err != nil {
			return nil, usage.FailReadOption(command, file, err)
		}

		// JSON schemas may carry comments and trailing commas.
		if ext == ".json" || ext == ".jsonc" {
			data = jsonc.ToJSON(data)
		}

		s, err := Decode(data)
		if err != nil {
			return nil, usage.FailReadOption(command, file, err)
		}
		return s, nil
	}

	return nil, nil
}

type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = []string{n.Value}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

type fileSchema struct {
	Info       string            `yaml:"info"`
	Usage      stringList        `yaml:"usage"`
	Shorthands map[string]string `yaml:"shorthands"`
	Options    yaml.Node         `yaml:"options"`
}

type fileField struct {
	Type         string     `yaml:"type"`
	Short        string     `yaml:"short"`
	ShortPattern stringList `yaml:"short_pattern"`
	Default      yaml.Node  `yaml:"default"`
	Info         string     `yaml:"info"`

	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Enum     []string `yaml:"enum"`
	Pattern  string   `yaml:"pattern"`
	Required bool     `yaml:"required"`
}

// Decode parses a YAML or JSON schema document.
func Decode(data []byte) (*options.Schema, error) {
	var doc fileSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	s := &options.Schema{
		Info:       doc.Info,
		Usage:      doc.Usage,
		Shorthands: doc.Shorthands,
	}

	if doc.Options.Kind == 0 {
		return s, nil
	}
	if doc.Options.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: options must be a mapping", doc.Options.Line)
	}

	for i := 0; i+1 < len(doc.Options.Content); i += 2 {
		key, value := doc.Options.Content[i], doc.Options.Content[i+1]

		var ff fileField
		if err := value.Decode(&ff); err != nil {
			return nil, fmt.Errorf("option %q: %w", key.Value, err)
		}

		field, err := compileField(key.Value, ff)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", key.Value, err)
		}
		s.Fields = append(s.Fields, field)
	}

	return s, nil
}

func compileField(name string, ff fileField) (*options.Field, error) {
	typ, err := options.ParseFieldType(ff.Type)
	if err != nil {
		return nil, err
	}

	field := &options.Field{
		Name:         name,
		Type:         typ,
		Short:        ff.Short,
		ShortPattern: ff.ShortPattern,
		Info:         ff.Info,
	}

	if ff.Default.Kind != 0 {
		def, err := decodeDefault(typ, &ff.Default)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		field.Default = def
	}

	set, err := compileConstraints(ff)
	if err != nil {
		return nil, err
	}
	field.Set = set

	return field, nil
}

func decodeDefault(typ options.FieldType, n *yaml.Node) (any, error) {
	switch typ {
	case options.Boolean:
		var b bool
		err := n.Decode(&b)
		return b, err
	case options.Number:
		var f float64
		err := n.Decode(&f)
		return f, err
	default:
		var s string
		err := n.Decode(&s)
		return s, err
	}
}

// compileConstraints turns the declarative checks into a setter. Checks are
// skipped for absent values except required.
func compileConstraints(ff fileField) (func(context.Context, any, options.Values) (any, error), error) {
	if ff.Min == nil && ff.Max == nil && len(ff.Enum) == 0 && ff.Pattern == "" && !ff.Required {
		return nil, nil
	}

	var re *regexp.Regexp
	if ff.Pattern != "" {
		var err error
		re, err = regexp.Compile(ff.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
	}

	return func(_ context.Context, value any, _ options.Values) (any, error) {
		if value == nil {
			if ff.Required {
				return nil, errors.New("is required")
			}
			return nil, nil
		}

		if n, ok := value.(float64); ok {
			if ff.Min != nil && n < *ff.Min {
				return nil, fmt.Errorf("must be at least %v", *ff.Min)
			}
			if ff.Max != nil && n > *ff.Max {
				return nil, fmt.Errorf("must be at most %v", *ff.Max)
			}
		}

		if s, ok := value.(string); ok {
			if len(ff.Enum) > 0 && !slices.Contains(ff.Enum, s) {
				return nil, fmt.Errorf("must be one of %v", ff.Enum)
			}
			if re != nil && !re.MatchString(s) {
				return nil, fmt.Errorf("must match %s", ff.Pattern)
			}
		}

		return value, nil
	}, nil
}
