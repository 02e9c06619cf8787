package renderer

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a small precomputed color wheel indexed by phase.
type Palette struct {
	colors []color.RGBA
}

// NewPalette builds n colors evenly spaced around the hue wheel starting at
// hueOffset degrees.
func NewPalette(n int, hueOffset, saturation, value float64) Palette {
	colors := make([]color.RGBA, n)
	for i := range colors {
		hue := hueOffset + 360*float64(i)/float64(n)
		for hue >= 360 {
			hue -= 360
		}
		r, g, b := colorful.Hsv(hue, saturation, value).Clamped().RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return Palette{colors: colors}
}

// Len returns the number of palette entries.
func (p Palette) Len() int {
	return len(p.colors)
}

// At returns entry i, wrapping in both directions.
func (p Palette) At(i int) color.RGBA {
	n := len(p.colors)
	i %= n
	if i < 0 {
		i += n
	}
	return p.colors[i]
}
