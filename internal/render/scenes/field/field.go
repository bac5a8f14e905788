// Package field renders the raw falloff sum of both sources as grayscale,
// which makes the threshold contour visible while tuning positions.
package field

import (
	"github.com/coreman2200/funtimes-metaballs/internal/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
	mscene "github.com/coreman2200/funtimes-metaballs/internal/render/scenes/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

// Field positions its sources exactly like the metaballs scene it wraps.
// Cells at or above the threshold are white; below it the level ramps from
// black up to Ceiling.
type Field struct {
	name  string
	balls *mscene.Scene
}

func New(name string, balls *mscene.Scene) *Field { return &Field{name: name, balls: balls} }

func (f *Field) Name() string { return f.name }

func (f *Field) Presets() []string { return f.balls.Presets() }

func (f *Field) ApplyPreset(name string, u *render.Uniforms) { f.balls.ApplyPreset(name, u) }

// Ceiling is the brightest level used outside the threshold contour.
const Ceiling = 0xC0

// Level maps a field total to a gray level.
func Level(total float32) uint8 {
	if total >= metaballs.Threshold {
		return 0xFF
	}
	if !(total > 0) {
		return 0
	}
	return uint8(total / metaballs.Threshold * Ceiling)
}

func (f *Field) Render(fb *pixel.Framebuffer, t float64, u *render.Uniforms) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	s1, s2 := f.balls.Sources(fb.Width, fb.Height, t, u)
	rsqrt := f.balls.Kernel(u).Func()
	for y := 0; y < fb.Height; y++ {
		row := fb.Row(y)
		for x := range row {
			f1, f2 := metaballs.Field(vmath.V2(float32(x), float32(y)), s1, s2, rsqrt)
			g := Level(f1 + f2)
			row[x] = pixel.RGB(g, g, g)
		}
	}
	return nil
}
