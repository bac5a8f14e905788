package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-metaballs/internal/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
	mscene "github.com/coreman2200/funtimes-metaballs/internal/render/scenes/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		total float32
		want  uint8
	}{
		{0, 0},
		{float32(math.NaN()), 0},
		{-1, 0},
		{metaballs.Threshold / 2, Ceiling / 2},
		{metaballs.Threshold, 0xFF},
		{1, 0xFF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.total), "total=%v", tt.total)
	}
}

func TestFieldMatchesThresholdContour(t *testing.T) {
	balls := mscene.New("metaballs", mscene.Options{
		Background: 0x101010,
		Ball1:      metaballs.Source{Pos: vmath.V2(0.5, 0.5), Color: 0xEEEE22},
		Ball2:      metaballs.Source{Pos: vmath.V2(2000, 2000), Color: 0xEE22EE},
		Kernel:     vmath.KernelExact,
	})
	f := New("field", balls)
	assert.Equal(t, balls.Presets(), f.Presets())

	u := render.NewUniforms()
	f.ApplyPreset("Exact", u)

	fb, err := pixel.New(512, 2)
	require.NoError(t, err)
	require.NoError(t, f.Render(fb, 0, u))

	ref, _ := pixel.New(512, 2)
	require.NoError(t, balls.Render(ref, 0, u))

	for x := 0; x < fb.Width; x++ {
		inside := ref.At(x, 0) != 0x101010
		if inside {
			assert.Equal(t, pixel.RGB(0xFF, 0xFF, 0xFF), fb.At(x, 0), "x=%d", x)
		} else {
			assert.Less(t, fb.At(x, 0).R(), uint8(Ceiling+1), "x=%d", x)
		}
	}
}

func TestFieldRejectsInvalidFramebuffer(t *testing.T) {
	f := New("field", mscene.New("metaballs", mscene.Options{}))
	bad := &pixel.Framebuffer{Pix: make([]pixel.Color, 1), Width: 2, Height: 2, Stride: 2}
	assert.ErrorIs(t, f.Render(bad, 0, render.NewUniforms()), pixel.ErrBufferTooSmall)
}

func TestFieldUsesConfiguredKernel(t *testing.T) {
	// both sources off to the left so every cell sits in the graded band
	opt := mscene.Options{
		Ball1:  metaballs.Source{Pos: vmath.V2(-500, 0)},
		Ball2:  metaballs.Source{Pos: vmath.V2(-500, 64)},
		Kernel: vmath.KernelExact,
	}
	f := New("field", mscene.New("metaballs", opt))

	fb, err := pixel.New(256, 64)
	require.NoError(t, err)
	require.NoError(t, f.Render(fb, 0, render.NewUniforms()))

	expect := func(rsqrt func(float32) float32) []pixel.Color {
		out := make([]pixel.Color, 0, len(fb.Pix))
		for y := 0; y < fb.Height; y++ {
			for x := 0; x < fb.Width; x++ {
				f1, f2 := metaballs.Field(vmath.V2(float32(x), float32(y)), opt.Ball1, opt.Ball2, rsqrt)
				g := Level(f1 + f2)
				out = append(out, pixel.RGB(g, g, g))
			}
		}
		return out
	}
	exact := expect(vmath.InvSqrtExact)
	require.NotEqual(t, expect(vmath.InvSqrtFast), exact, "kernels must differ somewhere for this check to mean anything")
	assert.Equal(t, exact, fb.Pix)

	u := render.NewUniforms()
	u.Params[mscene.ParamKernel] = float64(vmath.KernelFast)
	require.NoError(t, f.Render(fb, 0, u))
	assert.Equal(t, expect(vmath.InvSqrtFast), fb.Pix)
}
