// Package term shows frames in a terminal. Every character cell carries two
// vertically stacked pixels drawn with an upper half block: the foreground
// is the top pixel and the background the bottom one.
package term

import (
	"fmt"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/surface"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

const halfBlock = '▀'

type Surface struct {
	*surface.Signals

	scr    tcell.Screen
	scaler draw.Scaler

	mu     sync.Mutex
	fbW    int
	fbH    int
	ptr    vmath.Vec2
	hasPtr bool
	img    *image.NRGBA

	done chan struct{}
}

// New opens the controlling terminal.
func New() (*Surface, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("term: %w", err)
	}
	return Open(scr)
}

// Open takes ownership of scr, initialises it and starts reading its events.
func Open(scr tcell.Screen) (*Surface, error) {
	if err := scr.Init(); err != nil {
		return nil, fmt.Errorf("term: init: %w", err)
	}
	scr.EnableMouse(tcell.MouseMotionEvents)
	scr.HideCursor()
	scr.Clear()

	s := &Surface{
		Signals: surface.NewSignals(),
		scr:     scr,
		scaler:  draw.ApproxBiLinear,
		done:    make(chan struct{}),
	}
	go s.pollEvents()
	return s, nil
}

// Cells returns the pixel resolution the terminal can show.
func (s *Surface) Cells() (w, h int) {
	cols, rows := s.scr.Size()
	return cols, rows * 2
}

func (s *Surface) Present(fb *pixel.Framebuffer) error {
	w, h := s.Cells()
	if w == 0 || h == 0 {
		return nil
	}

	s.mu.Lock()
	s.fbW, s.fbH = fb.Width, fb.Height
	if s.img == nil || s.img.Rect.Dx() != w || s.img.Rect.Dy() != h {
		s.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	img := s.img
	s.mu.Unlock()

	if fb.Width == w && fb.Height == h {
		draw.Draw(img, img.Rect, fb.Image(), image.Point{}, draw.Src)
	} else {
		s.scaler.Scale(img, img.Rect, fb.Image(), image.Rect(0, 0, fb.Width, fb.Height), draw.Src, nil)
	}

	for y := 0; y+1 < h; y += 2 {
		for x := 0; x < w; x++ {
			top := img.NRGBAAt(x, y)
			bot := img.NRGBAAt(x, y+1)
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			s.scr.SetContent(x, y/2, halfBlock, nil, st)
		}
	}
	s.scr.Show()
	return nil
}

// Pointer maps the last mouse cell to framebuffer coordinates.
func (s *Surface) Pointer() (vmath.Vec2, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptr, s.hasPtr
}

func (s *Surface) Close() error {
	s.scr.Fini()
	<-s.done
	return nil
}

func (s *Surface) pollEvents() {
	defer close(s.done)
	for {
		ev := s.scr.PollEvent()
		if ev == nil {
			return
		}
		s.handle(ev)
	}
}

func (s *Surface) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			s.RequestQuit()
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			s.RequestQuit()
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'p':
			s.RequestDump()
		}
	case *tcell.EventMouse:
		cx, cy := ev.Position()
		s.movePointer(cx, cy)
	case *tcell.EventResize:
		s.scr.Sync()
		log.Debug().Msg("terminal resized")
	}
}

func (s *Surface) movePointer(cx, cy int) {
	cols, rows := s.scr.Size()
	if cols == 0 || rows == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fbW == 0 || s.fbH == 0 {
		return
	}
	s.ptr = vmath.V2(
		(float32(cx)+0.5)*float32(s.fbW)/float32(cols),
		(float32(cy)+0.5)*float32(s.fbH)/float32(rows),
	)
	s.hasPtr = true
}
