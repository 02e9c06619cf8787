package renderer

import "github.com/pthm-cable/murmur/pattern"

// TextLayer is a persistent indexed-color bitmap of captured pixels.
// A pixel's index is fixed when it is lit; color animation comes from
// rotating the palette, so existing pixels are never rewritten.
type TextLayer struct {
	width, height int
	stride        int
	colors        int // usable palette entries
	bits          []uint8
	lit           []pattern.Point
}

// NewTextLayer creates an empty layer. stride controls how quickly the base
// color index changes along the diagonal.
func NewTextLayer(width, height, stride, colors int) *TextLayer {
	return &TextLayer{
		width:  width,
		height: height,
		stride: max(stride, 1),
		colors: max(colors, 1),
		bits:   make([]uint8, width*height),
	}
}

// Light marks p as captured. It returns false for off-canvas or already lit pixels.
func (l *TextLayer) Light(p pattern.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= l.width || p.Y >= l.height {
		return false
	}
	i := p.Y*l.width + p.X
	if l.bits[i] != 0 {
		return false
	}
	// 0 means unlit, so indices are stored one-based
	l.bits[i] = uint8(1 + ((p.X+p.Y)/l.stride)%l.colors)
	l.lit = append(l.lit, p)
	return true
}

// Apply lights every point in delta and returns how many were new.
func (l *TextLayer) Apply(delta []pattern.Point) int {
	n := 0
	for _, p := range delta {
		if l.Light(p) {
			n++
		}
	}
	return n
}

// Index returns the one-based palette index at (x, y), or 0 if unlit.
func (l *TextLayer) Index(x, y int) uint8 {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0
	}
	return l.bits[y*l.width+x]
}

// Lit returns the lit pixels in the order they were lit.
func (l *TextLayer) Lit() []pattern.Point {
	return l.lit
}

// Len returns the number of lit pixels.
func (l *TextLayer) Len() int {
	return len(l.lit)
}

// Clear unlights every pixel.
func (l *TextLayer) Clear() {
	clear(l.bits)
	l.lit = l.lit[:0]
}

// Hidden sprite position, outside any canvas.
const (
	HiddenX = -10
	HiddenY = -10
)

// Sprite is one slot of the agent sprite pool.
type Sprite struct {
	X, Y    int
	Visible bool
}

// SpritePool is a fixed set of agent sprites sized to the agent cap.
// Slots are repositioned every frame and parked off-canvas when unused;
// they are never created or destroyed after construction.
type SpritePool struct {
	slots []Sprite
	free  []int // stack of free slot indices, lowest on top
}

// NewSpritePool creates n hidden sprites.
func NewSpritePool(n int) *SpritePool {
	p := &SpritePool{
		slots: make([]Sprite, n),
		free:  make([]int, 0, n),
	}
	p.HideAll()
	return p
}

// Acquire reserves a free slot. ok is false when every slot is in use.
func (p *SpritePool) Acquire() (slot int, ok bool) {
	if len(p.free) == 0 {
		return -1, false
	}
	slot = p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.slots[slot].Visible = true
	return slot, true
}

// Release hides slot and returns it to the pool.
func (p *SpritePool) Release(slot int) {
	if slot < 0 || slot >= len(p.slots) || !p.slots[slot].Visible {
		return
	}
	p.slots[slot] = Sprite{X: HiddenX, Y: HiddenY}
	p.free = append(p.free, slot)
}

// Move repositions a slot.
func (p *SpritePool) Move(slot, x, y int) {
	if slot < 0 || slot >= len(p.slots) {
		return
	}
	p.slots[slot].X = x
	p.slots[slot].Y = y
}

// HideAll parks every slot and frees the whole pool.
func (p *SpritePool) HideAll() {
	p.free = p.free[:0]
	for i := len(p.slots) - 1; i >= 0; i-- {
		p.slots[i] = Sprite{X: HiddenX, Y: HiddenY}
		p.free = append(p.free, i)
	}
}

// Cap returns the pool size.
func (p *SpritePool) Cap() int {
	return len(p.slots)
}

// InUse returns the number of acquired slots.
func (p *SpritePool) InUse() int {
	return len(p.slots) - len(p.free)
}

// Slot returns a copy of slot i.
func (p *SpritePool) Slot(i int) Sprite {
	return p.slots[i]
}
