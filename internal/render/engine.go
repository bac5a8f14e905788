package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/timing"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

// Clock names used by RenderOnce.
const (
	ClockTotal   = "TOTAL"
	ClockScene   = "SCENE"
	ClockPresent = "Present"
)

var ErrNoRegistry = errors.New("registry is nil")

// Presenter is where finished frames go.
type Presenter interface {
	Present(fb *pixel.Framebuffer) error
}

// Engine renders frames using an active Scene, an optional next Scene for
// crossfades, then presents the result. It is not safe for concurrent use.
type Engine struct {
	Surf Presenter
	Prof *timing.Profile

	// active + next scene and uniforms
	Active  Scene
	Next    Scene
	UActive *Uniforms
	UNext   *Uniforms

	BufA *pixel.Framebuffer
	BufB *pixel.Framebuffer
	Out  *pixel.Framebuffer

	alpha  float64
	fading bool

	t0 time.Time

	// last durations in ms
	Last struct {
		SceneMS   float64
		PresentMS float64
		TotalMS   float64
	}
}

func NewEngine(width, height int, surf Presenter, s Scene, u *Uniforms) (*Engine, error) {
	a, err := pixel.New(width, height)
	if err != nil {
		return nil, err
	}
	b, _ := pixel.New(width, height)
	out, _ := pixel.New(width, height)
	if u == nil {
		u = NewUniforms()
	}
	return &Engine{
		Surf:    surf,
		Prof:    timing.New(),
		Active:  s,
		UActive: u,
		BufA:    a,
		BufB:    b,
		Out:     out,
		t0:      time.Now(),
	}, nil
}

// Now returns seconds since engine start, scaled by TimeScale.
func (e *Engine) Now() float64 {
	scale := 1.0
	if e.UActive != nil && e.UActive.TimeScale != 0 {
		scale = e.UActive.TimeScale
	}
	return time.Since(e.t0).Seconds() * scale
}

// RenderOnce renders a single frame at absolute time t (seconds).
// If t < 0, it uses Engine.Now().
func (e *Engine) RenderOnce(t float64) error {
	if t < 0 {
		t = e.Now()
	}
	start := time.Now()
	e.Prof.Begin(ClockTotal)
	defer e.Prof.End()

	e.Prof.Begin(ClockScene)
	err := e.renderScenes(t)
	e.Prof.End()
	e.Last.SceneMS = ms(time.Since(start))
	if err != nil {
		return err
	}

	presentStart := time.Now()
	if e.Surf != nil {
		e.Prof.Begin(ClockPresent)
		err = e.Surf.Present(e.Out)
		e.Prof.End()
		if err != nil {
			return fmt.Errorf("present: %w", err)
		}
	}
	e.Last.PresentMS = ms(time.Since(presentStart))
	e.Last.TotalMS = ms(time.Since(start))
	return nil
}

func (e *Engine) renderScenes(t float64) error {
	if e.Active == nil {
		e.Out.Fill(0)
		return nil
	}
	if err := e.Active.Render(e.BufA, t, e.UActive); err != nil {
		return fmt.Errorf("scene %s: %w", e.Active.Name(), err)
	}
	if e.fading && e.Next != nil {
		if err := e.Next.Render(e.BufB, t, e.UNext); err != nil {
			return fmt.Errorf("scene %s: %w", e.Next.Name(), err)
		}
		Mix(e.Out, e.BufA, e.BufB, e.alpha)
		return nil
	}
	e.Out.CopyFrom(e.BufA)
	return nil
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }

// ---- Hooks that match sequence.Hooks ----

// SetScene makes name the active scene immediately.
// If preset != "", ApplyPreset is called on the scene with UActive.
func (e *Engine) SetScene(name, preset string, reg *Registry) error {
	if reg == nil {
		return ErrNoRegistry
	}
	s, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("scene not found: %s", name)
	}
	e.Active = s
	if preset != "" {
		s.ApplyPreset(preset, e.UActive)
	}
	e.fading = false
	e.alpha = 0
	return nil
}

// ArmNext prepares the next scene for a crossfade. The next uniforms start
// as a copy of the active ones.
func (e *Engine) ArmNext(name, preset string, reg *Registry) error {
	if reg == nil {
		return ErrNoRegistry
	}
	s, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("scene not found: %s", name)
	}
	e.Next = s
	e.UNext = e.UActive.Clone()
	if preset != "" {
		s.ApplyPreset(preset, e.UNext)
	}
	e.fading = true
	return nil
}

// SetCrossfade sets mix alpha 0..1. Reaching 1 promotes next to active.
func (e *Engine) SetCrossfade(alpha float64) {
	switch {
	case alpha <= 0:
		e.alpha = 0
		e.fading = false
	case alpha >= 1:
		e.alpha = 0
		e.fading = false
		if e.Next != nil {
			e.Active = e.Next
			e.UActive = e.UNext
		}
		e.Next = nil
		e.UNext = nil
	default:
		e.alpha = alpha
		e.fading = true
	}
}

// Fading reports whether a crossfade is in progress and its alpha.
func (e *Engine) Fading() (bool, float64) { return e.fading, e.alpha }

func (e *Engine) SetParam(name string, v float64) {
	for _, u := range e.uniforms() {
		if u.Params == nil {
			u.Params = map[string]float64{}
		}
		u.Params[name] = v
	}
}

func (e *Engine) SetBool(name string, b bool) {
	for _, u := range e.uniforms() {
		if u.Bools == nil {
			u.Bools = map[string]bool{}
		}
		u.Bools[name] = b
	}
}

// SetPointer records the cursor for both active and next scenes.
func (e *Engine) SetPointer(p vmath.Vec2) {
	for _, u := range e.uniforms() {
		u.Pointer = p
		u.HasPointer = true
	}
}

func (e *Engine) uniforms() []*Uniforms {
	out := make([]*Uniforms, 0, 2)
	if e.UActive != nil {
		out = append(out, e.UActive)
	}
	if e.fading && e.UNext != nil {
		out = append(out, e.UNext)
	}
	return out
}
