package pattern

import (
	"strings"

	"github.com/pthm-cable/murmur/config"
)

// ASCII is a provider built from rows of character art.
// '#' marks a target pixel; every other rune is empty.
type ASCII []string

// ParseASCII splits a multi-line string into ASCII rows.
func ParseASCII(art string) ASCII {
	art = strings.Trim(art, "\n")
	if art == "" {
		return nil
	}
	return ASCII(strings.Split(art, "\n"))
}

// TargetPixels returns the art centered on the canvas.
func (a ASCII) TargetPixels(width, height int) (TargetSet, error) {
	var points []Point
	for y, row := range a {
		for x, r := range []rune(row) {
			if r == '#' {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}

	centered, err := center(points, width, height)
	if err != nil {
		return TargetSet{}, err
	}
	return NewTargetSet(centered), nil
}

// FromConfig returns the provider selected by the pattern configuration.
func FromConfig(pc config.PatternConfig) Provider {
	if pc.Source == "ascii" {
		return ASCII(pc.ASCII)
	}
	return Text{Message: pc.Text, LineSpacing: pc.LineSpacing}
}
