package fake

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

// Surface logs a compact summary of each frame (first pixel & avg) and keeps
// a copy of the last one. Useful headless and in tests.
type Surface struct {
	mu     sync.Mutex
	Count  int
	Last   *pixel.Framebuffer
	Quiet  bool
	ptr    vmath.Vec2
	hasPtr bool
	closed bool
}

func New() *Surface { return &Surface{} }

func (s *Surface) Present(fb *pixel.Framebuffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Count++
	if s.Last == nil || s.Last.Width != fb.Width || s.Last.Height != fb.Height {
		s.Last = fb.Clone()
	} else {
		s.Last.CopyFrom(fb)
	}
	if s.Quiet {
		return nil
	}
	avg := Average(fb)
	log.Debug().
		Int("frame", s.Count).
		Str("avg", avg.Hex()).
		Str("first", fb.At(0, 0).Hex()).
		Msg("fake present")
	return nil
}

func (s *Surface) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Frames returns how many frames were presented.
func (s *Surface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Count
}

// MovePointer simulates cursor motion.
func (s *Surface) MovePointer(p vmath.Vec2) {
	s.mu.Lock()
	s.ptr, s.hasPtr = p, true
	s.mu.Unlock()
}

func (s *Surface) Pointer() (vmath.Vec2, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptr, s.hasPtr
}

// Average returns the mean color of the visible cells.
func Average(fb *pixel.Framebuffer) pixel.Color {
	var r, g, b, n uint64
	for y := 0; y < fb.Height; y++ {
		for _, c := range fb.Row(y) {
			r += uint64(c.R())
			g += uint64(c.G())
			b += uint64(c.B())
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return pixel.RGB(uint8(r/n), uint8(g/n), uint8(b/n))
}
