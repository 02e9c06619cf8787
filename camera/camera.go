// Package camera maps the pixel canvas onto a window.
package camera

// Viewport scales the canvas by a whole number and centers it in the window,
// letterboxing the remainder.
type Viewport struct {
	// Canvas dimensions in pixels
	CanvasW, CanvasH int

	// Window dimensions in screen pixels
	ScreenW, ScreenH int

	// Scale is the current integer magnification
	Scale int

	// MaxScale is the largest scale that fits the window
	MaxScale int

	offsetX, offsetY int
}

// NewViewport creates a viewport at the largest scale that fits.
func NewViewport(canvasW, canvasH, screenW, screenH int) *Viewport {
	v := &Viewport{CanvasW: canvasW, CanvasH: canvasH}
	v.Resize(screenW, screenH)
	v.SetScale(v.MaxScale)
	return v
}

// Resize updates the window size. The scale shrinks if it no longer fits.
func (v *Viewport) Resize(screenW, screenH int) {
	v.ScreenW = screenW
	v.ScreenH = screenH
	v.MaxScale = max(min(screenW/max(v.CanvasW, 1), screenH/max(v.CanvasH, 1)), 1)
	v.SetScale(v.Scale)
}

// SetScale sets the magnification, clamped to [1, MaxScale].
func (v *Viewport) SetScale(scale int) {
	v.Scale = clamp(scale, 1, v.MaxScale)
	v.offsetX = (v.ScreenW - v.CanvasW*v.Scale) / 2
	v.offsetY = (v.ScreenH - v.CanvasH*v.Scale) / 2
}

// ZoomBy changes the scale by delta steps.
func (v *Viewport) ZoomBy(delta int) {
	v.SetScale(v.Scale + delta)
}

// Fit restores the largest scale that fits.
func (v *Viewport) Fit() {
	v.SetScale(v.MaxScale)
}

// Dest returns the screen rectangle covered by the canvas.
func (v *Viewport) Dest() (x, y, w, h float32) {
	return float32(v.offsetX), float32(v.offsetY), float32(v.CanvasW * v.Scale), float32(v.CanvasH * v.Scale)
}

// CanvasToScreen returns the screen position of a canvas pixel's top-left corner.
func (v *Viewport) CanvasToScreen(cx, cy int) (sx, sy float32) {
	return float32(v.offsetX + cx*v.Scale), float32(v.offsetY + cy*v.Scale)
}

// ScreenToCanvas returns the canvas pixel under a screen position. ok is
// false in the letterbox.
func (v *Viewport) ScreenToCanvas(sx, sy float32) (cx, cy int, ok bool) {
	fx := (sx - float32(v.offsetX)) / float32(v.Scale)
	fy := (sy - float32(v.offsetY)) / float32(v.Scale)
	if fx < 0 || fy < 0 {
		return 0, 0, false
	}
	cx, cy = int(fx), int(fy)
	if cx >= v.CanvasW || cy >= v.CanvasH {
		return 0, 0, false
	}
	return cx, cy, true
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
