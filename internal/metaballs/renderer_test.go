package metaballs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

func TestParallelMatchesSerial(t *testing.T) {
	s1 := src(80, 60, ball1Color)
	s2 := src(20, 140, ball2Color)
	for _, k := range kernels {
		serial, err := pixel.NewStride(160, 120, 165)
		require.NoError(t, err)
		par, err := pixel.NewStride(160, 120, 165)
		require.NoError(t, err)

		require.NoError(t, Renderer{Kernel: k}.Render(serial, background, s1, s2))
		require.NoError(t, Renderer{Kernel: k, Workers: 4}.Render(par, background, s1, s2))
		assert.Equal(t, serial.Pix, par.Pix, k.String())
	}
}

func TestParallelUsesGOMAXPROCSWhenNegative(t *testing.T) {
	fb, err := pixel.New(32, 70)
	require.NoError(t, err)
	for i := range fb.Pix {
		fb.Pix[i] = sentinel
	}
	require.NoError(t, Renderer{Workers: -1}.Render(fb, background, src(1, 1, ball1Color), src(30, 60, ball2Color)))
	for _, c := range fb.Pix {
		assert.NotEqual(t, sentinel, c)
	}
}

func TestRendererMatchesFunction(t *testing.T) {
	s1 := src(5, 5, ball1Color)
	s2 := src(25, 12, ball2Color)
	fb, err := pixel.New(30, 20)
	require.NoError(t, err)
	require.NoError(t, Renderer{Kernel: vmath.KernelExact}.Render(fb, background, s1, s2))

	buf := make([]pixel.Color, 30*20)
	require.NoError(t, Render(buf, 30, 20, 30, background, s1, s2, vmath.KernelExact))
	assert.Equal(t, buf, fb.Pix)
}

func TestRendererRejectsInvalidFramebuffer(t *testing.T) {
	bad := &pixel.Framebuffer{Pix: make([]pixel.Color, 3), Width: 2, Height: 2, Stride: 2}
	assert.ErrorIs(t, Renderer{}.Render(bad, background, src(0, 0, 1), src(1, 1, 2)), pixel.ErrBufferTooSmall)
	assert.ErrorIs(t, Renderer{Workers: 3}.Render(bad, background, src(0, 0, 1), src(1, 1, 2)), pixel.ErrBufferTooSmall)
}

func TestBandCount(t *testing.T) {
	assert.Equal(t, 1, bandCount(10, 8))
	assert.Equal(t, 2, bandCount(32, 8))
	assert.Equal(t, 8, bandCount(900, 8))
	assert.Equal(t, 1, bandCount(900, 0))
}

func BenchmarkRender(b *testing.B) {
	s1 := src(400, 400, ball1Color)
	s2 := src(900, 300, ball2Color)
	for _, k := range kernels {
		for _, workers := range []int{1, -1} {
			fb, _ := pixel.New(1600, 900)
			r := Renderer{Kernel: k, Workers: workers}
			b.Run(fmt.Sprintf("%s/workers=%d", k, workers), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					_ = r.Render(fb, background, s1, s2)
				}
			})
		}
	}
}
