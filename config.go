package dimensions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// rootKey is the settings key the dimension tree lives under. Documents
// without it are read as the dimension mapping itself.
const rootKey = "contentDimensions"

// EnvDefaultPrefix prefixes environment variables that replace a dimension's
// default value, e.g. DIMENSIONS_DEFAULT_LANGUAGE=de.
const EnvDefaultPrefix = "DIMENSIONS_DEFAULT_"

var (
	// ErrDimensionNameRequired indicates a dimension without a name.
	ErrDimensionNameRequired = errors.New("dimensions: dimension name must be provided")
	// ErrDuplicateDimension indicates the same dimension name configured twice.
	ErrDuplicateDimension = errors.New("dimensions: dimension names must be unique")
	// ErrPresetValuesRequired indicates a preset with an empty values list.
	ErrPresetValuesRequired = errors.New("dimensions: preset values must not be empty")
)

// NewConfig builds a Config from dims in the given order.
func NewConfig(dims ...Dimension) Config {
	cfg := Config{Dimensions: make([]Dimension, 0, len(dims))}
	for _, dim := range dims {
		cfg.Dimensions = append(cfg.Dimensions, cloneDimension(dim))
	}
	return cfg
}

// Len returns the number of configured dimensions.
func (c Config) Len() int {
	return len(c.Dimensions)
}

// Names returns dimension names in configuration order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Dimensions))
	for _, dim := range c.Dimensions {
		names = append(names, dim.Name)
	}
	return names
}

// Dimension looks up a dimension by name.
func (c Config) Dimension(name string) (Dimension, bool) {
	for _, dim := range c.Dimensions {
		if dim.Name == name {
			return cloneDimension(dim), true
		}
	}
	return Dimension{}, false
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := Config{SnapshotID: c.SnapshotID}
	if c.Dimensions == nil {
		return out
	}
	out.Dimensions = make([]Dimension, len(c.Dimensions))
	for i, dim := range c.Dimensions {
		out.Dimensions[i] = cloneDimension(dim)
	}
	return out
}

// Validate reports authoring errors. Resolution itself never validates; this
// runs when configuration is loaded.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Dimensions))
	for i, dim := range c.Dimensions {
		if strings.TrimSpace(dim.Name) == "" {
			return fmt.Errorf("%w: position %d", ErrDimensionNameRequired, i)
		}
		if _, ok := seen[dim.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDimension, dim.Name)
		}
		seen[dim.Name] = struct{}{}
		for j, preset := range dim.Presets {
			if len(preset.Values) == 0 {
				return fmt.Errorf("%w: %s preset %s", ErrPresetValuesRequired, dim.Name, presetLabel(preset, j))
			}
		}
	}
	return nil
}

// LoadConfig reads a YAML or JSON dimension configuration from path, applies
// environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg, err := readConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err = finalizeConfig(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("dimensions: load config %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes raw as format ("yaml", "yml" or "json"), applies
// environment overrides, assigns a snapshot id and validates.
func ParseConfig(raw []byte, format string) (Config, error) {
	cfg, err := decodeConfig(raw, format)
	if err != nil {
		return Config{}, err
	}
	return finalizeConfig(cfg)
}

func readConfigFile(path string) (Config, error) {
	// #nosec G304 -- path comes from trusted flags or environment.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("dimensions: read config %q: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := decodeConfig(raw, format)
	if err != nil {
		return Config{}, fmt.Errorf("dimensions: load config %q: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(raw []byte, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("dimensions: decode yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("dimensions: decode json: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("dimensions: unsupported config format %q", format)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	for i := range cfg.Dimensions {
		key := EnvDefaultPrefix + envName(cfg.Dimensions[i].Name)
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.Dimensions[i].Default = v
		}
	}
}

func envName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, name)
}

// UnmarshalYAML decodes the dimension mapping keeping its order.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if isNullNode(node) {
		*c = Config{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("dimensions: line %d: expected mapping of dimensions", node.Line)
	}
	if inner := mappingValue(node, rootKey); inner != nil {
		node = inner
		if isNullNode(node) {
			*c = Config{}
			return nil
		}
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("dimensions: line %d: %s must be a mapping", node.Line, rootKey)
		}
	}

	dims := make([]Dimension, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		dim, err := decodeYAMLDimension(name, node.Content[i+1])
		if err != nil {
			return err
		}
		dims = append(dims, dim)
	}
	c.Dimensions = dims
	return nil
}

type yamlDimension struct {
	Label         string    `yaml:"label"`
	Default       string    `yaml:"default"`
	DefaultPreset string    `yaml:"defaultPreset"`
	Presets       yaml.Node `yaml:"presets"`
}

func decodeYAMLDimension(name string, node *yaml.Node) (Dimension, error) {
	var doc yamlDimension
	if err := node.Decode(&doc); err != nil {
		return Dimension{}, fmt.Errorf("dimensions: dimension %q: %w", name, err)
	}
	dim := Dimension{
		Name:          name,
		Label:         doc.Label,
		Default:       doc.Default,
		DefaultPreset: doc.DefaultPreset,
	}

	presets := &doc.Presets
	switch presets.Kind {
	case 0:
	case yaml.ScalarNode:
		if !isNullNode(presets) {
			return Dimension{}, fmt.Errorf("dimensions: dimension %q: presets must be a mapping or sequence", name)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(presets.Content); i += 2 {
			value := presets.Content[i+1]
			// A null preset disables an inherited preset.
			if isNullNode(value) {
				dim.removedPresets = append(dim.removedPresets, presets.Content[i].Value)
				continue
			}
			var preset Preset
			if err := value.Decode(&preset); err != nil {
				return Dimension{}, fmt.Errorf("dimensions: dimension %q preset %q: %w", name, presets.Content[i].Value, err)
			}
			preset.Name = presets.Content[i].Value
			dim.Presets = append(dim.Presets, preset)
		}
	case yaml.SequenceNode:
		for i, value := range presets.Content {
			var preset Preset
			if err := value.Decode(&preset); err != nil {
				return Dimension{}, fmt.Errorf("dimensions: dimension %q preset #%d: %w", name, i, err)
			}
			dim.Presets = append(dim.Presets, preset)
		}
	default:
		return Dimension{}, fmt.Errorf("dimensions: dimension %q: presets must be a mapping or sequence", name)
	}
	return dim, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func isNullNode(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

// UnmarshalJSON decodes the dimension object keeping its key order.
func (c *Config) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Config{}
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if inner, ok := probe[rootKey]; ok {
		data = bytes.TrimSpace(inner)
		if bytes.Equal(data, []byte("null")) {
			*c = Config{}
			return nil
		}
	}

	var dims []Dimension
	err := walkObject(data, func(name string, raw json.RawMessage) error {
		dim, err := decodeJSONDimension(name, raw)
		if err != nil {
			return err
		}
		dims = append(dims, dim)
		return nil
	})
	if err != nil {
		return err
	}
	c.Dimensions = dims
	return nil
}

type jsonDimension struct {
	Label         string          `json:"label"`
	Default       string          `json:"default"`
	DefaultPreset string          `json:"defaultPreset"`
	Presets       json.RawMessage `json:"presets"`
}

func decodeJSONDimension(name string, raw json.RawMessage) (Dimension, error) {
	var doc jsonDimension
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Dimension{}, fmt.Errorf("dimensions: dimension %q: %w", name, err)
	}
	dim := Dimension{
		Name:          name,
		Label:         doc.Label,
		Default:       doc.Default,
		DefaultPreset: doc.DefaultPreset,
	}

	presets := bytes.TrimSpace(doc.Presets)
	switch {
	case len(presets) == 0 || bytes.Equal(presets, []byte("null")):
	case presets[0] == '[':
		if err := json.Unmarshal(presets, &dim.Presets); err != nil {
			return Dimension{}, fmt.Errorf("dimensions: dimension %q presets: %w", name, err)
		}
	case presets[0] == '{':
		err := walkObject(presets, func(key string, value json.RawMessage) error {
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				dim.removedPresets = append(dim.removedPresets, key)
				return nil
			}
			var preset Preset
			if err := json.Unmarshal(value, &preset); err != nil {
				return fmt.Errorf("dimensions: dimension %q preset %q: %w", name, key, err)
			}
			preset.Name = key
			dim.Presets = append(dim.Presets, preset)
			return nil
		})
		if err != nil {
			return Dimension{}, err
		}
	default:
		return Dimension{}, fmt.Errorf("dimensions: dimension %q: presets must be an object or array", name)
	}
	return dim, nil
}

// walkObject visits the members of a JSON object in document order.
func walkObject(data []byte, visit func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dimensions: expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("dimensions: expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := visit(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func cloneDimension(dim Dimension) Dimension {
	out := dim
	out.removedPresets = cloneStrings(dim.removedPresets)
	if dim.Presets == nil {
		return out
	}
	out.Presets = make([]Preset, len(dim.Presets))
	for i, preset := range dim.Presets {
		preset.Values = cloneStrings(preset.Values)
		out.Presets[i] = preset
	}
	return out
}

func presetLabel(preset Preset, index int) string {
	if preset.Name != "" {
		return fmt.Sprintf("%q", preset.Name)
	}
	return fmt.Sprintf("#%d", index)
}
