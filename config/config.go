// Package config holds the tunables shared by the browser build and the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/cubeforge/export"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

const (
	// EnvConfig names a YAML file to load when no path is given.
	EnvConfig = "CUBEFORGE_CONFIG"
	// EnvUnitMM overrides the voxel edge length.
	EnvUnitMM = "CUBEFORGE_UNIT_MM"
)

type Config struct {
	UnitSizeMM   float64     `yaml:"unit_size_mm"`
	SolidName    string      `yaml:"solid_name"`
	DefaultColor string      `yaml:"default_color"`
	Palette      []string    `yaml:"palette"`
	Anchor       [3]int      `yaml:"anchor"`
	Storage      StorageConf `yaml:"storage"`
}

type StorageConf struct {
	Key string `yaml:"key"`
	// Compression is none, zlib or zstd; anything but none writes packed blobs.
	Compression string `yaml:"compression"`
	// Dir is where the CLI writes generated state files.
	Dir string `yaml:"dir"`
	// SQLite is the database sqlite2stl reads when none is named.
	SQLite string `yaml:"sqlite"`
}

// Default returns the built-in settings.
func Default() *Config {
	palette := make([]string, len(voxel.Palette))
	for i, c := range voxel.Palette {
		palette[i] = string(c)
	}
	return &Config{
		UnitSizeMM:   export.DefaultUnitSizeMM,
		SolidName:    export.SolidName,
		DefaultColor: string(voxel.DefaultColor),
		Palette:      palette,
		Storage: StorageConf{
			Key:         store.StorageKey,
			Compression: "none",
			Dir:         ".",
			SQLite:      "cubeforge.db",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to
// $CUBEFORGE_CONFIG, and to the defaults alone when that is unset too.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if v := os.Getenv(EnvUnitMM); v != "" {
		if mm, err := strconv.ParseFloat(v, 64); err == nil && mm > 0 {
			cfg.UnitSizeMM = mm
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values a YAML file could have broken.
func (c *Config) Validate() error {
	if !(c.UnitSizeMM > 0) {
		return fmt.Errorf("unit_size_mm must be positive, got %v", c.UnitSizeMM)
	}
	if strings.TrimSpace(c.SolidName) == "" || strings.ContainsAny(c.SolidName, "\r\n") {
		return fmt.Errorf("solid_name must be a single non-empty line")
	}
	if _, err := voxel.ParseHexColor(voxel.Color(c.DefaultColor)); err != nil {
		return fmt.Errorf("default_color: %w", err)
	}
	for _, p := range c.Palette {
		if _, err := voxel.ParseHexColor(voxel.Color(p)); err != nil {
			return fmt.Errorf("palette: %w", err)
		}
	}
	if _, err := store.ParseCompression(c.Storage.Compression); err != nil {
		return fmt.Errorf("storage.compression: %w", err)
	}
	anchor := voxel.IVec3{X: c.Anchor[0], Y: c.Anchor[1], Z: c.Anchor[2]}
	if !voxel.InBounds(anchor) {
		return fmt.Errorf("anchor %v is outside the grid", anchor)
	}
	return nil
}

// AnchorCell returns the seed cell.
func (c *Config) AnchorCell() voxel.IVec3 {
	return voxel.IVec3{X: c.Anchor[0], Y: c.Anchor[1], Z: c.Anchor[2]}
}

// Compression returns the parsed storage compression.
func (c *Config) Compression() store.Compression {
	comp, _ := store.ParseCompression(c.Storage.Compression)
	return comp
}

// Store keeps state in kv under key, or the configured key when key is
// empty. Blobs are packed when a compression other than none is configured.
func (c *Config) Store(kv store.KV, key string) *store.BlobStore {
	if key == "" {
		key = c.Storage.Key
	}
	st := store.NewBlobStore(kv, key)
	if comp := c.Compression(); comp != store.CompNone {
		st.Packed(comp)
	}
	return st
}
