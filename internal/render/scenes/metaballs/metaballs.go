package metaballs

import (
	"math"

	"github.com/coreman2200/funtimes-metaballs/internal/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

// Param and bool keys read from render.Uniforms.
const (
	ParamBall1X     = "Ball1X"
	ParamBall1Y     = "Ball1Y"
	ParamBall2X     = "Ball2X"
	ParamBall2Y     = "Ball2Y"
	ParamOrbitSpeed = "OrbitSpeed"
	ParamKernel     = "Kernel"
	BoolOrbit       = "Orbit"
)

const defaultOrbitSpeed = 4.0

type Options struct {
	Background pixel.Color
	Ball1      metaballs.Source
	Ball2      metaballs.Source
	Kernel     vmath.Kernel
	Workers    int
}

// Scene draws the two-source field. Source1 sits at Ball1X/Ball1Y. Source2
// follows the pointer, or orbits the frame centre when Orbit is set.
type Scene struct {
	name string
	opt  Options
}

func New(name string, opt Options) *Scene { return &Scene{name: name, opt: opt} }

func (s *Scene) Name() string { return s.name }

func (s *Scene) Presets() []string { return []string{"Mouse", "Orbit", "Exact"} }

func (s *Scene) ApplyPreset(name string, u *render.Uniforms) {
	if u == nil {
		return
	}
	u.Ensure(s.defaults())
	if u.Bools == nil {
		u.Bools = map[string]bool{}
	}
	switch name {
	case "Mouse":
		u.Bools[BoolOrbit] = false
	case "Orbit":
		u.Bools[BoolOrbit] = true
		u.Params[ParamOrbitSpeed] = defaultOrbitSpeed
	case "Exact":
		u.Params[ParamKernel] = float64(vmath.KernelExact)
	}
}

func (s *Scene) defaults() map[string]float64 {
	return map[string]float64{
		ParamBall1X:     float64(s.opt.Ball1.Pos.X),
		ParamBall1Y:     float64(s.opt.Ball1.Pos.Y),
		ParamBall2X:     float64(s.opt.Ball2.Pos.X),
		ParamBall2Y:     float64(s.opt.Ball2.Pos.Y),
		ParamOrbitSpeed: defaultOrbitSpeed,
		ParamKernel:     float64(s.opt.Kernel),
	}
}

// Sources resolves both sources for frame time t.
func (s *Scene) Sources(w, h int, t float64, u *render.Uniforms) (metaballs.Source, metaballs.Source) {
	s1 := metaballs.Source{
		Pos:   vmath.V2(float32(u.Param(ParamBall1X, float64(s.opt.Ball1.Pos.X))), float32(u.Param(ParamBall1Y, float64(s.opt.Ball1.Pos.Y)))),
		Color: s.opt.Ball1.Color,
	}
	s2 := metaballs.Source{
		Pos:   vmath.V2(float32(u.Param(ParamBall2X, float64(s.opt.Ball2.Pos.X))), float32(u.Param(ParamBall2Y, float64(s.opt.Ball2.Pos.Y)))),
		Color: s.opt.Ball2.Color,
	}
	switch {
	case u.Bool(BoolOrbit, false):
		s2.Pos = Orbit(w, h, t, u.Param(ParamOrbitSpeed, defaultOrbitSpeed))
	case u != nil && u.HasPointer:
		s2.Pos = u.Pointer
	}
	return s1, s2
}

// Orbit returns the frame centre plus (cos ωt, sin ωt) scaled by a quarter
// of the frame height.
func Orbit(w, h int, t, omega float64) vmath.Vec2 {
	centre := vmath.Scale(vmath.V2(float32(w), float32(h)), 0.5)
	dir := vmath.V2(float32(math.Cos(omega*t)), float32(math.Sin(omega*t)))
	return vmath.Add(centre, vmath.Scale(dir, float32(h)*0.25))
}

// Kernel is the Kernel param, or the configured kernel when it is unset.
func (s *Scene) Kernel(u *render.Uniforms) vmath.Kernel {
	return vmath.Kernel(int(u.Param(ParamKernel, float64(s.opt.Kernel))))
}

func (s *Scene) Render(fb *pixel.Framebuffer, t float64, u *render.Uniforms) error {
	s1, s2 := s.Sources(fb.Width, fb.Height, t, u)
	r := metaballs.Renderer{
		Kernel:  s.Kernel(u),
		Workers: s.opt.Workers,
	}
	return r.Render(fb, s.opt.Background, s1, s2)
}
