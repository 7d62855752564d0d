package core

import (
	"fmt"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/gjson"
)

// ColorTableSize is the number of entries in a host color table.
const ColorTableSize = 16

// ColorTable is the host's indexed color palette. Indexed render engines
// map every color through this table before emitting escape codes.
type ColorTable [ColorTableSize]Color

// DefaultColorTable returns the legacy console palette.
func DefaultColorTable() ColorTable {
	return ColorTable{
		{R: 0, G: 0, B: 0},       // black
		{R: 0, G: 0, B: 128},     // dark blue
		{R: 0, G: 128, B: 0},     // dark green
		{R: 0, G: 128, B: 128},   // dark cyan
		{R: 128, G: 0, B: 0},     // dark red
		{R: 128, G: 0, B: 128},   // dark magenta
		{R: 128, G: 128, B: 0},   // dark yellow
		{R: 192, G: 192, B: 192}, // gray
		{R: 128, G: 128, B: 128}, // dark gray
		{R: 0, G: 0, B: 255},     // blue
		{R: 0, G: 255, B: 0},     // green
		{R: 0, G: 255, B: 255},   // cyan
		{R: 255, G: 0, B: 0},     // red
		{R: 255, G: 0, B: 255},   // magenta
		{R: 255, G: 255, B: 0},   // yellow
		{R: 255, G: 255, B: 255}, // white
	}
}

// NearestIndex returns the table index whose entry is perceptually closest
// to the given color. Distance is measured in CIE-Lab space, which tracks
// perception far better than a plain RGB distance. Colors already indexed
// into the table are returned as-is.
func (t ColorTable) NearestIndex(c Color) int {
	if c.Indexed && int(c.R) < ColorTableSize {
		return int(c.R)
	}

	r, g, b := c.RGB()
	target := rgbToColorful(r, g, b)

	best := 0
	bestDist := -1.0
	for i, entry := range t {
		dist := target.DistanceLab(rgbToColorful(entry.R, entry.G, entry.B))
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func rgbToColorful(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

// LoadPalette reads a color table from a JSON palette file. The file must
// contain a "colors" array of exactly ColorTableSize hex color strings:
//
//	{"colors": ["#000000", "#000080", ...]}
func LoadPalette(path string) (ColorTable, error) {
	var table ColorTable

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read palette: %w", err)
	}

	colors := gjson.GetBytes(data, "colors")
	if !colors.IsArray() {
		return table, fmt.Errorf("palette %s: missing \"colors\" array", path)
	}

	entries := colors.Array()
	if len(entries) != ColorTableSize {
		return table, fmt.Errorf("palette %s: expected %d colors, got %d", path, ColorTableSize, len(entries))
	}

	for i, entry := range entries {
		c, err := ColorFromHex(entry.String())
		if err != nil {
			return table, fmt.Errorf("palette %s: entry %d: %w", path, i, err)
		}
		table[i] = c
	}
	return table, nil
}
