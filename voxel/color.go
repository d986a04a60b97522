package voxel

import (
	"fmt"
	"strconv"
)

// Color is an opaque color identifier, normally a "#rrggbb" hex string.
type Color string

// DefaultColor is the color of the seed cube in a fresh session.
const DefaultColor Color = "#ef4444"

// Palette is the toolbar palette offered to users.
var Palette = []Color{
	"#ffffff", "#f1f5f9", "#e2e8f0", "#94a3b8", "#64748b", "#475569",
	"#334155", "#1e293b", "#ef4444", "#f97316", "#f59e0b", "#eab308",
	"#84cc16", "#22c55e", "#10b981", "#14b8a6", "#06b6d4", "#0ea5e9",
	"#3b82f6", "#6366f1", "#8b5cf6", "#a855f7", "#d946ef", "#ec4899",
}

// ParseHexColor converts "#rrggbb" or "#rrggbbaa" into RGBA in [0,1].
func ParseHexColor(c Color) ([4]float32, error) {
	hex := string(c)
	if len(hex) == 0 || hex[0] != '#' {
		return [4]float32{}, fmt.Errorf("invalid hex color: %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return [4]float32{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	rgba := [4]float32{1, 1, 1, 1}
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return [4]float32{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		rgba[i] = float32(v) / 255
	}
	return rgba, nil
}
