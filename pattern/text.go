package pattern

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text is a provider that rasterizes a message with a bitmap font.
// Lines are separated by '\n' and centered horizontally against each other.
type Text struct {
	Message     string
	LineSpacing int
	Face        font.Face // nil selects basicfont.Face7x13
}

// TargetPixels rasterizes the message and centers it on the canvas.
func (t Text) TargetPixels(width, height int) (TargetSet, error) {
	if strings.TrimSpace(t.Message) == "" {
		return NewTargetSet(nil), nil
	}

	face := t.Face
	if face == nil {
		face = basicfont.Face7x13
	}

	lines := strings.Split(t.Message, "\n")
	metrics := face.Metrics()
	lineH := metrics.Height.Ceil() + t.LineSpacing
	ascent := metrics.Ascent.Ceil()

	maxW := 0
	for _, line := range lines {
		maxW = max(maxW, font.MeasureString(face, line).Ceil())
	}

	img := image.NewAlpha(image.Rect(0, 0, maxW, lineH*len(lines)))
	d := &font.Drawer{Dst: img, Src: image.Opaque, Face: face}
	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		d.Dot = fixed.P((maxW-w)/2, i*lineH+ascent)
		d.DrawString(line)
	}

	var points []Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.AlphaAt(x, y).A >= 0x80 {
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
