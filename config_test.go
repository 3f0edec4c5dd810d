package dimensions

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const yamlConfig = `
contentDimensions:
  market:
    label: Market
    default: global
    defaultPreset: global
    presets:
      global:
        label: Global
        uriSegment: global
        values: [global]
      ch:
        resolutionHost: example.ch
        values: [ch, global]
      retired: ~
  language:
    default: en
    presets:
      - name: de
        uriSegment: de
        values: [de, en]
      - name: en
        uriSegment: en
        values: [en]
`

func TestParseConfigYAMLKeepsOrder(t *testing.T) {
	cfg, err := ParseConfig([]byte(yamlConfig), "yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cfg.Names(); !reflect.DeepEqual(got, []string{"market", "language"}) {
		t.Fatalf("expected document order, got %v", got)
	}

	market, ok := cfg.Dimension("market")
	if !ok {
		t.Fatalf("expected market dimension")
	}
	if market.Label != "Market" || market.Default != "global" || market.DefaultPreset != "global" {
		t.Fatalf("unexpected market fields %+v", market)
	}
	if len(market.Presets) != 2 {
		t.Fatalf("expected null preset to be skipped, got %d presets", len(market.Presets))
	}
	if market.Presets[0].Name != "global" || market.Presets[1].Name != "ch" {
		t.Fatalf("expected preset order global, ch; got %q, %q", market.Presets[0].Name, market.Presets[1].Name)
	}
	if market.Presets[1].ResolutionHost != "example.ch" {
		t.Fatalf("expected resolution host, got %q", market.Presets[1].ResolutionHost)
	}

	language, _ := cfg.Dimension("language")
	if language.Presets[0].Name != "de" || !reflect.DeepEqual(language.Presets[0].Values, []string{"de", "en"}) {
		t.Fatalf("unexpected sequence preset %+v", language.Presets[0])
	}
	if cfg.SnapshotID == "" {
		t.Fatalf("expected snapshot id to be assigned")
	}
}

func TestParseConfigJSONKeepsOrder(t *testing.T) {
	raw := `{
		"zeta": {"default": "z", "presets": {"b": {"uriSegment": "b", "values": ["b"]}, "a": {"uriSegment": "a", "values": ["a"]}}},
		"alpha": {"default": "a", "presets": [{"uriSegment": "x", "values": ["x"]}]}
	}`
	cfg, err := ParseConfig([]byte(raw), "json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cfg.Names(); !reflect.DeepEqual(got, []string{"zeta", "alpha"}) {
		t.Fatalf("expected document order, got %v", got)
	}
	zeta, _ := cfg.Dimension("zeta")
	if zeta.Presets[0].Name != "b" || zeta.Presets[1].Name != "a" {
		t.Fatalf("expected preset order b, a; got %+v", zeta.Presets)
	}

	result := Resolve(cfg, Input{Path: "/a_x"})
	if got := result.TargetDimensions; !reflect.DeepEqual(got, map[string]string{"zeta": "a", "alpha": "x"}) {
		t.Fatalf("unexpected targets %v", got)
	}
}

func TestParseConfigEmptyDocument(t *testing.T) {
	for _, raw := range []string{"", "contentDimensions: ~", "{}"} {
		cfg, err := ParseConfig([]byte(raw), "yaml")
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if cfg.Len() != 0 {
			t.Fatalf("expected no dimensions for %q, got %d", raw, cfg.Len())
		}
		if !Resolve(cfg, Input{Path: "/de"}).IsEmpty() {
			t.Fatalf("expected empty result for %q", raw)
		}
	}
}

func TestParseConfigEnvOverridesDefault(t *testing.T) {
	t.Setenv(EnvDefaultPrefix+"LANGUAGE", "de")

	cfg, err := ParseConfig([]byte(yamlConfig), "yml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	language, _ := cfg.Dimension("language")
	if language.Default != "de" {
		t.Fatalf("expected env default de, got %q", language.Default)
	}
	if got := Resolve(cfg, Input{Path: "/nowhere"}).TargetDimensions["language"]; got != "de" {
		t.Fatalf("expected fallback to env default, got %q", got)
	}
}

func TestParseConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "empty values",
			raw:  "language:\n  default: en\n  presets:\n    de:\n      uriSegment: de\n      values: []\n",
			want: ErrPresetValuesRequired,
		},
		{
			name: "blank name",
			raw:  "'':\n  default: en\n",
			want: ErrDimensionNameRequired,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.raw), "yaml")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateDuplicateNames(t *testing.T) {
	cfg := NewConfig(Dimension{Name: "language"}, Dimension{Name: "language"})
	if err := cfg.Validate(); !errors.Is(err, ErrDuplicateDimension) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestParseConfigRejectsUnknownFormat(t *testing.T) {
	_, err := ParseConfig([]byte("{}"), "toml")
	if err == nil || !strings.Contains(err.Error(), "unsupported config format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestLoadConfigPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "dimensions.yaml")
	if err := os.WriteFile(yamlPath, []byte(yamlConfig), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	jsonPath := filepath.Join(dir, "dimensions.json")
	if err := os.WriteFile(jsonPath, []byte(`{"contentDimensions": {"language": {"default": "en"}}}`), 0o600); err != nil {
		t.Fatalf("write json: %v", err)
	}

	cfg, err := LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if cfg.Len() != 2 {
		t.Fatalf("expected 2 dimensions, got %d", cfg.Len())
	}

	cfg, err = LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if got := cfg.Names(); !reflect.DeepEqual(got, []string{"language"}) {
		t.Fatalf("unexpected names %v", got)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	cfg := languageConfig()
	clone := cfg.Clone()
	clone.Dimensions[0].Presets[0].Values[0] = "changed"
	clone.Dimensions[0].Default = "changed"

	if cfg.Dimensions[0].Presets[0].Values[0] != "de" || cfg.Dimensions[0].Default != "en" {
		t.Fatalf("expected original config untouched, got %+v", cfg.Dimensions[0])
	}
}
