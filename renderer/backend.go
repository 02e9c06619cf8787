package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pthm-cable/murmur/config"
)

// Backend owns the persistent render state and draws one frame per tick.
// Layer order is fixed: background, then agents, then captured text on top.
//
// The text layer is updated incrementally as pixels are captured, but Compose
// rebuilds the whole frame every tick, so per-frame cost is O(W*H) for the
// background plus one plot per visible sprite and per lit pixel.
type Backend struct {
	sink Sink
	blit BlitSink // nil when the sink lacks the bitmap path

	width, height int
	background    color.RGBA
	phaseSpeed    float64
	plus          bool

	text     *TextLayer
	sprites  *SpritePool
	textPal  Palette
	agentPal Palette

	frame *image.RGBA
}

// NewBackend creates a backend drawing to sink.
func NewBackend(cfg *config.Config, sink Sink) *Backend {
	rc := cfg.Render
	b := &Backend{
		sink:       sink,
		width:      cfg.Canvas.Width,
		height:     cfg.Canvas.Height,
		background: cfg.Derived.Background,
		phaseSpeed: rc.PhaseSpeed,
		plus:       rc.SpriteShape == "plus",
		text:       NewTextLayer(cfg.Canvas.Width, cfg.Canvas.Height, rc.PositionStride, rc.PaletteSize),
		sprites:    NewSpritePool(cfg.Spawn.MaxAgents),
		textPal:    NewPalette(rc.PaletteSize, 0, rc.TextSaturation, rc.TextValue),
		agentPal:   NewPalette(rc.PaletteSize, rc.AgentHueOffset, rc.AgentSaturation, rc.AgentValue),
		frame:      image.NewRGBA(image.Rect(0, 0, cfg.Canvas.Width, cfg.Canvas.Height)),
	}
	if bs, ok := sink.(BlitSink); ok {
		b.blit = bs
	}
	return b
}

// Text returns the captured-pixel layer.
func (b *Backend) Text() *TextLayer {
	return b.text
}

// Sprites returns the agent sprite pool.
func (b *Backend) Sprites() *SpritePool {
	return b.sprites
}

// Reset clears the text layer and parks every sprite.
func (b *Backend) Reset() {
	b.text.Clear()
	b.sprites.HideAll()
}

// Phase returns the palette rotation for a simulated time.
func (b *Backend) Phase(simTime float64) int {
	return int(simTime * b.phaseSpeed)
}

// Compose redraws every layer into the backend's frame and returns it. The
// palette phase moves with simTime, so lit pixels are recolored each call.
func (b *Backend) Compose(simTime float64) *image.RGBA {
	phase := b.Phase(simTime)

	// Background
	bg := b.background
	for i := 0; i < len(b.frame.Pix); i += 4 {
		b.frame.Pix[i] = bg.R
		b.frame.Pix[i+1] = bg.G
		b.frame.Pix[i+2] = bg.B
		b.frame.Pix[i+3] = bg.A
	}

	// Agents
	for i := 0; i < b.sprites.Cap(); i++ {
		s := b.sprites.slots[i]
		if !s.Visible {
			continue
		}
		c := b.agentPal.At(i + phase)
		b.plot(s.X, s.Y, c)
		if b.plus {
			b.plot(s.X-1, s.Y, c)
			b.plot(s.X+1, s.Y, c)
			b.plot(s.X, s.Y-1, c)
			b.plot(s.X, s.Y+1, c)
		}
	}

	// Captured text always wins over agents
	for _, p := range b.text.lit {
		idx := int(b.text.Index(p.X, p.Y)) - 1
		b.frame.SetRGBA(p.X, p.Y, b.textPal.At(idx+phase))
	}

	return b.frame
}

// Render composes a frame and presents it on the sink exactly once.
func (b *Backend) Render(simTime float64) error {
	frame := b.Compose(simTime)

	if b.blit != nil {
		if err := b.blit.Blit(frame); err != nil {
			return fmt.Errorf("blit frame: %w", err)
		}
	} else {
		b.sink.Fill(b.background)
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				if c := frame.RGBAAt(x, y); c != b.background {
					b.sink.SetPixel(x, y, c)
				}
			}
		}
	}

	if err := b.sink.Present(); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

// plot writes one pixel if it lies on the canvas.
func (b *Backend) plot(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.frame.SetRGBA(x, y, c)
}
