package dimensions

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MergeConfigs composes configuration layers ordered from strongest to
// weakest. Dimensions keep the position they have in the weakest layer that
// declares them; dimensions first declared by a stronger layer are appended.
// Non-empty scalar fields from stronger layers win, presets are replaced by
// name, and a preset set to null in a stronger layer removes the inherited
// one. The merged config carries the strongest layer's SnapshotID.
func MergeConfigs(layers ...Config) Config {
	if len(layers) == 0 {
		return Config{}
	}

	merged := layers[len(layers)-1].Clone()
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeConfig(layers[i], merged)
	}
	return merged
}

func mergeConfig(strong, weak Config) Config {
	out := weak.Clone()
	if strong.SnapshotID != "" {
		out.SnapshotID = strong.SnapshotID
	}
	for _, dim := range strong.Dimensions {
		index := -1
		for i := range out.Dimensions {
			if out.Dimensions[i].Name == dim.Name {
				index = i
				break
			}
		}
		if index < 0 {
			clone := cloneDimension(dim)
			clone.removedPresets = nil
			out.Dimensions = append(out.Dimensions, clone)
			continue
		}
		out.Dimensions[index] = mergeDimension(dim, out.Dimensions[index])
	}
	return out
}

func mergeDimension(strong, weak Dimension) Dimension {
	out := cloneDimension(weak)
	if strong.Label != "" {
		out.Label = strong.Label
	}
	if strong.Default != "" {
		out.Default = strong.Default
	}
	if strong.DefaultPreset != "" {
		out.DefaultPreset = strong.DefaultPreset
	}

	for _, name := range strong.removedPresets {
		out.Presets = removePreset(out.Presets, name)
	}
	for _, preset := range strong.Presets {
		preset.Values = cloneStrings(preset.Values)
		replaced := false
		if preset.Name != "" {
			for i := range out.Presets {
				if out.Presets[i].Name == preset.Name {
					out.Presets[i] = preset
					replaced = true
					break
				}
			}
		}
		if !replaced {
			out.Presets = append(out.Presets, preset)
		}
	}
	out.removedPresets = nil
	return out
}

func removePreset(presets []Preset, name string) []Preset {
	out := presets[:0]
	for _, preset := range presets {
		if preset.Name == name {
			continue
		}
		out = append(out, preset)
	}
	return out
}

// LoadConfigLayers reads every path in order, later files overriding earlier
// ones, then applies environment overrides and validates the merged result.
func LoadConfigLayers(paths ...string) (Config, error) {
	if len(paths) == 0 {
		return Config{}, fmt.Errorf("dimensions: no config paths given")
	}
	layers := make([]Config, len(paths))
	for i, path := range paths {
		layer, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		// MergeConfigs expects the strongest layer first.
		layers[len(paths)-1-i] = layer
	}
	return finalizeConfig(MergeConfigs(layers...))
}

// SplitConfigPaths splits a comma separated list of config paths, dropping
// blanks.
func SplitConfigPaths(raw string) []string {
	parts := strings.Split(raw, ",")
	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			paths = append(paths, part)
		}
	}
	return paths
}

func finalizeConfig(cfg Config) (Config, error) {
	applyEnvOverrides(&cfg)
	if cfg.SnapshotID == "" {
		cfg.SnapshotID = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
