// Package renderer composites captured text and agents into frames and
// presents them on a display sink.
package renderer

import (
	"image"
	"image/color"
	"image/draw"
)

// Sink is a pixel display. Present shows everything written since the last
// Present.
type Sink interface {
	SetPixel(x, y int, c color.RGBA)
	Fill(c color.RGBA)
	Present() error
}

// BlitSink is a Sink that can take a whole frame in one call.
type BlitSink interface {
	Sink
	Blit(frame *image.RGBA) error
}

// MemorySink keeps the presented frame in memory. It supports both the
// per-pixel and the bitmap path.
type MemorySink struct {
	back     *image.RGBA
	front    *image.RGBA
	Presents int
	Blits    int
	Pixels   int // SetPixel calls since creation
}

// NewMemorySink creates a memory sink of the given size.
func NewMemorySink(width, height int) *MemorySink {
	r := image.Rect(0, 0, width, height)
	return &MemorySink{back: image.NewRGBA(r), front: image.NewRGBA(r)}
}

// SetPixel writes one pixel; off-canvas writes are ignored.
func (m *MemorySink) SetPixel(x, y int, c color.RGBA) {
	m.Pixels++
	if !(image.Point{X: x, Y: y}).In(m.back.Rect) {
		return
	}
	m.back.SetRGBA(x, y, c)
}

// Fill sets every pixel to c.
func (m *MemorySink) Fill(c color.RGBA) {
	draw.Draw(m.back, m.back.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Blit copies a whole frame.
func (m *MemorySink) Blit(frame *image.RGBA) error {
	m.Blits++
	draw.Draw(m.back, m.back.Rect, frame, frame.Rect.Min, draw.Src)
	return nil
}

// Present makes the written pixels visible.
func (m *MemorySink) Present() error {
	m.Presents++
	copy(m.front.Pix, m.back.Pix)
	return nil
}

// At returns the presented color at (x, y).
func (m *MemorySink) At(x, y int) color.RGBA {
	return m.front.RGBAAt(x, y)
}

// Frame returns the last presented frame. The image is reused by later presents.
func (m *MemorySink) Frame() *image.RGBA {
	return m.front
}
