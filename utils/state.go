package utils

import (
	"os"

	"github.com/voxelsplace/cubeforge/api"
	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/store"
)

// RunState2STL converts a saved state file (plain or packed) to ASCII STL
// with the configured unit size and solid name.
func RunState2STL(inPath, outPath string, cfg *config.Config) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.StateToSTL(data, cfg.UnitSizeMM, cfg.SolidName)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

// RunState2GLB converts a saved state file to a binary glTF preview.
func RunState2GLB(inPath, outPath string, cfg *config.Config) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.StateToGLB(data, cfg.UnitSizeMM)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

// RunPackState frames a state file with the named compression.
func RunPackState(inPath, outPath, compression string) error {
	comp, err := store.ParseCompression(compression)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.PackState(data, comp)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

// RunUnpackState writes the plain JSON form of a packed state file.
func RunUnpackState(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	out, err := api.UnpackState(data)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}
