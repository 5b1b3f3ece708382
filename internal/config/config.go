// Package config handles meshport configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/meshport/pkg/encoding"
)

// Config holds all converter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Import  ImportConfig  `yaml:"import"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig controls writing OBJ/MTL/PNG files.
type ExportConfig struct {
	OutputDir         string     `yaml:"output_dir"`
	MeshName          string     `yaml:"mesh_name"`
	WriteCoefficients bool       `yaml:"write_coefficients"`
	Ambient           [3]float32 `yaml:"ambient,flow"`
	Diffuse           [3]float32 `yaml:"diffuse,flow"`
	Specular          [3]float32 `yaml:"specular,flow"`
	MaxTextureSize    int        `yaml:"max_texture_size"` // 0 keeps source size
	Charset           string     `yaml:"charset"`
}

// ImportConfig controls reading OBJ/MTL files.
type ImportConfig struct {
	InputDir       string  `yaml:"input_dir"`
	OBJFile        string  `yaml:"obj_file"`
	MTLBaseDir     string  `yaml:"mtl_base_dir"` // empty: next to the OBJ
	FlipNormals    bool    `yaml:"flip_normals"`
	PositionScale  float32 `yaml:"position_scale"`
	VertexColors   bool    `yaml:"vertex_colors"`
	MaxTextureSize int     `yaml:"max_texture_size"` // 0 keeps source size
	Charset        string  `yaml:"charset"`
}

// SceneConfig holds the directory of OBJ files loaded into the scene.
type SceneConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir:         "export",
			WriteCoefficients: true,
			Ambient:           [3]float32{0.2, 0.2, 0.2},
			Diffuse:           [3]float32{0.6, 0.6, 0.6},
			Specular:          [3]float32{0.9, 0.9, 0.9},
			MaxTextureSize:    0,
			Charset:           encoding.DefaultCharset,
		},
		Import: ImportConfig{
			InputDir:      ".",
			PositionScale: 1,
			VertexColors:  true,
			Charset:       encoding.DefaultCharset,
		},
		Scene: SceneConfig{
			Dir: "scene",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the converter cannot run with.
func (c *Config) Validate() error {
	if c.Export.MaxTextureSize < 0 {
		return fmt.Errorf("export.max_texture_size must not be negative, got %d", c.Export.MaxTextureSize)
	}
	if c.Import.MaxTextureSize < 0 {
		return fmt.Errorf("import.max_texture_size must not be negative, got %d", c.Import.MaxTextureSize)
	}
	if c.Import.PositionScale <= 0 {
		return fmt.Errorf("import.position_scale must be positive, got %g", c.Import.PositionScale)
	}
	if _, err := encoding.Lookup(c.Export.Charset); err != nil {
		return fmt.Errorf("export.charset: %w", err)
	}
	if _, err := encoding.Lookup(c.Import.Charset); err != nil {
		return fmt.Errorf("import.charset: %w", err)
	}
	return nil
}
