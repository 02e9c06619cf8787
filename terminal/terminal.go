// Package terminal hosts the engine in a terminal. Each canvas pixel is two
// character cells wide so pixels come out roughly square.
package terminal

import (
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/murmur/game"
)

// cellsPerPixel is the number of columns one canvas pixel occupies.
const cellsPerPixel = 2

// Screen is a tcell display sink and input source.
type Screen struct {
	screen        tcell.Screen
	width, height int
	events        chan tcell.Event
	status        func() string
	closed        bool

	done      chan struct{} // Closed by Close to release the event pump
	pumpDone  chan struct{} // Closed when the event pump exits
	closeOnce sync.Once
}

// Open initializes the controlling terminal for a width x height canvas.
func Open(width, height int) (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen, width, height)
}

// New wraps an uninitialized screen. Tests pass a simulation screen.
func New(screen tcell.Screen, width, height int) (*Screen, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	screen.Clear()

	t := &Screen{
		screen: screen,
		width:  width,
		height: height,
		events:   make(chan tcell.Event, 100),
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	go t.pump()
	return t, nil
}

// pump forwards terminal events until the screen is finalized or Close is
// called. A full buffer never blocks it past Close.
func (t *Screen) pump() {
	defer close(t.pumpDone)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// Fini was called
			close(t.events)
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// SetStatus sets the source of the line drawn under the canvas.
func (t *Screen) SetStatus(fn func() string) {
	t.status = fn
}

func pixelStyle(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

// SetPixel paints one canvas pixel.
func (t *Screen) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	style := pixelStyle(c)
	for i := 0; i < cellsPerPixel; i++ {
		t.screen.SetContent(x*cellsPerPixel+i, y, ' ', nil, style)
	}
}

// Fill paints the whole canvas area.
func (t *Screen) Fill(c color.RGBA) {
	style := pixelStyle(c)
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width*cellsPerPixel; x++ {
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// Present draws the status line and shows the frame.
func (t *Screen) Present() error {
	if t.status != nil {
		t.drawStatus(t.status())
	}
	t.screen.Show()
	return nil
}

func (t *Screen) drawStatus(line string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	cols := t.width * cellsPerPixel
	x := 0
	for _, r := range line {
		if x >= cols {
			break
		}
		t.screen.SetContent(x, t.height, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		t.screen.SetContent(x, t.height, ' ', nil, tcell.StyleDefault)
	}
}

// Poll drains pending terminal events and returns the first command found.
func (t *Screen) Poll() game.Command {
	if t.closed {
		return game.CommandQuit
	}
	select {
	case <-t.done:
		t.closed = true
		return game.CommandQuit
	default:
	}
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				t.closed = true
				return game.CommandQuit
			}
			if cmd := t.handleEvent(ev); cmd != game.CommandNone {
				return cmd
			}
		default:
			return game.CommandNone
		}
	}
}

func (t *Screen) handleEvent(ev tcell.Event) game.Command {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return commandForKey(ev)
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return game.CommandNone
}

func commandForKey(ev *tcell.EventKey) game.Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.CommandQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return game.CommandQuit
		case 'r', 'R':
			return game.CommandReset
		case ' ', 'p':
			return game.CommandTogglePause
		}
	}
	return game.CommandNone
}

// Close restores the terminal and releases the event pump. It is safe to
// call more than once.
func (t *Screen) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
		t.screen.Fini()
	})
}
