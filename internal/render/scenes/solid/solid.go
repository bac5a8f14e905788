package solid

import (
	"math"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
)

// Solid fills the frame with a single color. The optional "PulseHz" param
// modulates brightness toward black.
type Solid struct {
	name    string
	c       pixel.Color
	presets map[string]pixel.Color
	order   []string
}

// New builds a Solid whose presets are the given named colors, plus Black.
func New(name string, c pixel.Color, named map[string]pixel.Color) *Solid {
	s := &Solid{name: name, c: c, presets: map[string]pixel.Color{"Black": 0}}
	for k, v := range named {
		s.presets[k] = v
	}
	for _, k := range []string{"Background", "Ball1", "Ball2", "Black"} {
		if _, ok := s.presets[k]; ok {
			s.order = append(s.order, k)
		}
	}
	return s
}

func (s *Solid) Name() string { return s.name }

func (s *Solid) Presets() []string { return s.order }

func (s *Solid) ApplyPreset(name string, _ *render.Uniforms) {
	if c, ok := s.presets[name]; ok {
		s.c = c
	}
}

func (s *Solid) Render(fb *pixel.Framebuffer, t float64, u *render.Uniforms) error {
	c := s.c
	if hz := u.Param("PulseHz", 0); hz > 0 {
		c = pixel.Lerp(0, s.c, float32(0.5+0.5*math.Sin(2*math.Pi*hz*t)))
	}
	fb.Fill(c)
	return nil
}
