package render

import "github.com/coreman2200/funtimes-metaballs/internal/pixel"

// Mix blends the visible cells of a and b into dst using alpha (0..1).
// All three framebuffers must share dimensions.
func Mix(dst, a, b *pixel.Framebuffer, alpha float64) {
	switch {
	case alpha <= 0:
		dst.CopyFrom(a)
		return
	case alpha >= 1:
		dst.CopyFrom(b)
		return
	}
	w := float32(alpha)
	for y := 0; y < dst.Height; y++ {
		d, ra, rb := dst.Row(y), a.Row(y), b.Row(y)
		for x := range d {
			d[x] = pixel.Lerp(ra[x], rb[x], w)
		}
	}
}
