package render

import (
	"sort"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

type Uniforms struct {
	TimeScale float64
	Params    map[string]float64
	Bools     map[string]bool

	// Pointer is the latest cursor position in framebuffer space.
	Pointer    vmath.Vec2
	HasPointer bool
}

func NewUniforms() *Uniforms {
	return &Uniforms{TimeScale: 1, Params: map[string]float64{}, Bools: map[string]bool{}}
}

// Clone returns a deep copy of u.
func (u *Uniforms) Clone() *Uniforms {
	if u == nil {
		return NewUniforms()
	}
	c := *u
	c.Params = make(map[string]float64, len(u.Params))
	for k, v := range u.Params {
		c.Params[k] = v
	}
	c.Bools = make(map[string]bool, len(u.Bools))
	for k, v := range u.Bools {
		c.Bools[k] = v
	}
	return &c
}

// Param returns Params[key] or def.
func (u *Uniforms) Param(key string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[key]; ok {
		return v
	}
	return def
}

func (u *Uniforms) Bool(key string, def bool) bool {
	if u == nil || u.Bools == nil {
		return def
	}
	if v, ok := u.Bools[key]; ok {
		return v
	}
	return def
}

// Ensure sets every key of defs that is not already present.
func (u *Uniforms) Ensure(defs map[string]float64) {
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	for k, v := range defs {
		if _, ok := u.Params[k]; !ok {
			u.Params[k] = v
		}
	}
}

type Scene interface {
	Name() string
	Presets() []string
	ApplyPreset(name string, u *Uniforms)
	Render(fb *pixel.Framebuffer, t float64, u *Uniforms) error
}

type Registry struct{ m map[string]Scene }

func NewRegistry() *Registry { return &Registry{m: map[string]Scene{}} }

func (r *Registry) Register(s Scene) {
	if s == nil {
		return
	}
	r.m[s.Name()] = s
}

func (r *Registry) Get(name string) (Scene, bool) { s, ok := r.m[name]; return s, ok }

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
