package metaballs

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

// minBandRows keeps bands large enough that goroutine start-up stays small
// next to the per-row work.
const minBandRows = 16

// Renderer binds a kernel choice and a worker count. The zero value renders
// serially with the fast kernel.
type Renderer struct {
	Kernel vmath.Kernel
	// Workers <= 1 renders on the calling goroutine; a negative value uses
	// GOMAXPROCS.
	Workers int
}

func (r Renderer) Render(fb *pixel.Framebuffer, background pixel.Color, s1, s2 Source) error {
	if r.workers() > 1 {
		return r.RenderParallel(fb, background, s1, s2)
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	renderRows(fb.Pix, fb.Width, fb.Stride, 0, fb.Height, background, s1, s2, r.Kernel.Func())
	return nil
}

// RenderParallel splits the frame into horizontal bands and renders them on
// separate goroutines, returning after all of them finish. The output is
// identical to the serial path.
func (r Renderer) RenderParallel(fb *pixel.Framebuffer, background pixel.Color, s1, s2 Source) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	rsqrt := r.Kernel.Func()
	bands := bandCount(fb.Height, r.workers())

	var g errgroup.Group
	for i := 0; i < bands; i++ {
		y0 := fb.Height * i / bands
		y1 := fb.Height * (i + 1) / bands
		g.Go(func() error {
			renderRows(fb.Pix, fb.Width, fb.Stride, y0, y1, background, s1, s2, rsqrt)
			return nil
		})
	}
	return g.Wait()
}

func (r Renderer) workers() int {
	if r.Workers < 0 {
		return runtime.GOMAXPROCS(0)
	}
	return r.Workers
}

func bandCount(height, workers int) int {
	if workers < 1 {
		workers = 1
	}
	n := height / minBandRows
	if n < 1 {
		n = 1
	}
	if n > workers {
		n = workers
	}
	return n
}
