// Package surface defines where rendered frames are shown. A surface is
// acquired by its constructor, receives frames through Present and releases
// everything it holds on Close.
package surface

import (
	"errors"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

type Surface interface {
	Present(fb *pixel.Framebuffer) error
	Close() error
}

// Pointer is implemented by surfaces that track a cursor. The position is
// in framebuffer coordinates.
type Pointer interface {
	Pointer() (vmath.Vec2, bool)
}

// Events is implemented by surfaces that can ask the app to stop or to dump
// its timing summary.
type Events interface {
	Quit() <-chan struct{}
	Dump() <-chan struct{}
}

// Gate is implemented by surfaces that cannot accept a frame until the
// previous one has been consumed.
type Gate interface {
	Ready() bool
}

// Signals is a ready-made Events implementation. Sends never block; a signal
// already pending absorbs repeats.
type Signals struct {
	quit chan struct{}
	dump chan struct{}
}

func NewSignals() *Signals {
	return &Signals{quit: make(chan struct{}, 1), dump: make(chan struct{}, 1)}
}

func (s *Signals) Quit() <-chan struct{} { return s.quit }
func (s *Signals) Dump() <-chan struct{} { return s.dump }

func (s *Signals) RequestQuit() { notify(s.quit) }
func (s *Signals) RequestDump() { notify(s.dump) }

func notify(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

// Multi presents every frame to each member in order.
type Multi []Surface

func (m Multi) Present(fb *pixel.Framebuffer) error {
	var errs []error
	for _, s := range m {
		if err := s.Present(fb); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pointer returns the first member position that is known.
func (m Multi) Pointer() (vmath.Vec2, bool) {
	for _, s := range m {
		if p, ok := s.(Pointer); ok {
			if v, ok := p.Pointer(); ok {
				return v, true
			}
		}
	}
	return vmath.Vec2{}, false
}

// Ready is true only when every gated member is ready.
func (m Multi) Ready() bool {
	for _, s := range m {
		if g, ok := s.(Gate); ok && !g.Ready() {
			return false
		}
	}
	return true
}

// Events returns the members implementing Events.
func (m Multi) Events() []Events {
	var out []Events
	for _, s := range m {
		if e, ok := s.(Events); ok {
			out = append(out, e)
		}
	}
	return out
}

// EventsOf collects the event sources of s, looking inside Multi.
func EventsOf(s Surface) []Events {
	if m, ok := s.(Multi); ok {
		return m.Events()
	}
	if e, ok := s.(Events); ok {
		return []Events{e}
	}
	return nil
}
