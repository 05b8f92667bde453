package gltfconv

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ImportOptions tunes document import.
type ImportOptions struct {
	// Scale multiplies every imported position and bone translation.
	Scale float32 `yaml:"scale"`
	// NormalizeWeights renormalizes skin weights after import.
	NormalizeWeights bool `yaml:"normalizeWeights"`
}

// ExportOptions tunes document export.
type ExportOptions struct {
	Scale float32 `yaml:"scale"`
	// ForceUnlit drops metallic/roughness to the unlit look some
	// viewers expect for stylized assets.
	ForceUnlit bool `yaml:"forceUnlit"`
}

// Preset bundles both option sets for loading from a YAML file.
type Preset struct {
	Import ImportOptions `yaml:"import"`
	Export ExportOptions `yaml:"export"`
}

func DefaultPreset() *Preset {
	return &Preset{
		Import: ImportOptions{Scale: 1},
		Export: ExportOptions{Scale: 1},
	}
}

// LoadPreset reads a YAML preset file. Omitted scales default to 1.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gltfconv: preset %s: %w", path, err)
	}
	p := DefaultPreset()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("gltfconv: preset %s: %w", path, err)
	}
	if p.Import.Scale == 0 {
		p.Import.Scale = 1
	}
	if p.Export.Scale == 0 {
		p.Export.Scale = 1
	}
	return p, nil
}
