package ui

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/murmur/camera"
	"github.com/pthm-cable/murmur/game"
)

// hudWidth is the control panel width in screen pixels.
const hudWidth = 260

// commandQueue buffers host commands between polls.
type commandQueue struct {
	cmds []game.Command
}

func (q *commandQueue) push(c game.Command) {
	if c != game.CommandNone {
		q.cmds = append(q.cmds, c)
	}
}

func (q *commandQueue) pop() game.Command {
	if len(q.cmds) == 0 {
		return game.CommandNone
	}
	c := q.cmds[0]
	q.cmds = q.cmds[1:]
	return c
}

// Window is a raylib display sink. Frames are uploaded to a texture and drawn
// at an integer scale; the HUD is drawn on top.
type Window struct {
	width, height int
	view          *camera.Viewport
	tex           rl.Texture2D
	pixels        []color.RGBA
	dirty         bool

	hud     *HUD
	showHUD bool
	status  func() Status
	paused  bool
	closed  bool
	queue   commandQueue
}

// NewWindow opens a resizable window showing a canvasW x canvasH canvas at
// the given scale. It must be called from the main goroutine.
func NewWindow(canvasW, canvasH, scale, fps int, title string) *Window {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(canvasW*scale), int32(canvasH*scale), title)
	rl.SetTargetFPS(int32(fps))

	img := rl.GenImageColor(canvasW, canvasH, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterPoint)

	return &Window{
		width:   canvasW,
		height:  canvasH,
		view:    camera.NewViewport(canvasW, canvasH, rl.GetScreenWidth(), rl.GetScreenHeight()),
		tex:     tex,
		pixels:  make([]color.RGBA, canvasW*canvasH),
		hud:     NewHUD(hudWidth),
		showHUD: true,
	}
}

// SetStatus sets the source of the HUD status line.
func (w *Window) SetStatus(fn func() Status) {
	w.status = fn
}

// SetPixel sets one canvas pixel for the next present.
func (w *Window) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return
	}
	w.pixels[y*w.width+x] = c
	w.dirty = true
}

// Fill sets every canvas pixel.
func (w *Window) Fill(c color.RGBA) {
	for i := range w.pixels {
		w.pixels[i] = c
	}
	w.dirty = true
}

// Blit uploads a whole frame.
func (w *Window) Blit(frame *image.RGBA) error {
	b := frame.Bounds()
	for y := 0; y < w.height && y < b.Dy(); y++ {
		row := frame.Pix[y*frame.Stride:]
		for x := 0; x < w.width && x < b.Dx(); x++ {
			i := x * 4
			w.pixels[y*w.width+x] = color.RGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}
		}
	}
	w.dirty = true
	return nil
}

// Present draws the canvas and HUD and handles window input.
func (w *Window) Present() error {
	if rl.WindowShouldClose() {
		w.closed = true
	}
	if rl.IsWindowResized() {
		w.view.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}
	w.handleKeys()

	if w.dirty {
		rl.UpdateTexture(w.tex, w.pixels)
		w.dirty = false
	}

	rl.BeginDrawing()
	rl.ClearBackground(w.hud.theme.Letterbox)

	x, y, dw, dh := w.view.Dest()
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(w.width), Height: float32(w.height)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: dw, Height: dh}
	rl.DrawTexturePro(w.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)

	if w.showHUD {
		var s Status
		if w.status != nil {
			s = w.status()
		}
		s.Paused = w.paused
		s.FPS = rl.GetFPS()
		w.queue.push(w.hud.Draw(10, 10, s))
	}

	rl.EndDrawing()
	return nil
}

func (w *Window) handleKeys() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		w.queue.push(game.CommandTogglePause)
	case rl.IsKeyPressed(rl.KeyR):
		w.queue.push(game.CommandReset)
	case rl.IsKeyPressed(rl.KeyH):
		w.showHUD = !w.showHUD
	case rl.IsKeyPressed(rl.KeyEqual):
		w.view.ZoomBy(1)
	case rl.IsKeyPressed(rl.KeyMinus):
		w.view.ZoomBy(-1)
	case rl.IsKeyPressed(rl.KeyZero):
		w.view.Fit()
	}
}

// Poll returns the next pending command. Closing the window quits.
func (w *Window) Poll() game.Command {
	if w.closed {
		return game.CommandQuit
	}
	c := w.queue.pop()
	if c == game.CommandTogglePause {
		w.paused = !w.paused
	}
	return c
}

// Speed returns the HUD speed multiplier.
func (w *Window) Speed() float64 {
	return w.hud.Speed()
}

// Close releases the texture and closes the window.
func (w *Window) Close() {
	rl.UnloadTexture(w.tex)
	rl.CloseWindow()
}
