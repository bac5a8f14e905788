// Package metaballs evaluates the two-source inverse-distance field for every
// pixel of a framebuffer and blends the source colours by their share of it.
//
// The package is pure: it never allocates per frame, never logs and keeps no
// state between calls. Callers own the buffer and decide how it is presented.
package metaballs

import (
	"math"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

// Threshold is the combined field strength at which a pixel counts as inside
// the blob. It sets the visible radius of the sources.
const Threshold float32 = 0.005

// Source is a point contributing a 1/distance field in its colour.
type Source struct {
	Pos   vmath.Vec2
	Color pixel.Color
}

// pixelCenter offsets integer coordinates to the middle of the cell.
var pixelCenter = vmath.V2f(0.5)

// Render fills width×height cells of buf, advancing stride cells per row.
// It returns a pixel error when the descriptor is invalid and writes nothing
// in that case.
func Render(buf []pixel.Color, width, height, stride int, background pixel.Color, s1, s2 Source, k vmath.Kernel) error {
	if err := pixel.CheckDims(len(buf), width, height, stride); err != nil {
		return err
	}
	renderRows(buf, width, stride, 0, height, background, s1, s2, k.Func())
	return nil
}

// Field returns the contribution of each source at the centre of cell (x, y).
func Field(cell vmath.Vec2, s1, s2 Source, rsqrt func(float32) float32) (f1, f2 float32) {
	p := vmath.Add(cell, pixelCenter)
	return rsqrt(vmath.SqrLen(vmath.Sub(p, s1.Pos))), rsqrt(vmath.SqrLen(vmath.Sub(p, s2.Pos)))
}

// renderRows handles rows [y0, y1). Row bands never overlap, so callers may
// run several bands concurrently on the same buffer.
func renderRows(buf []pixel.Color, width, stride, y0, y1 int, background pixel.Color, s1, s2 Source, rsqrt func(float32) float32) {
	for y := y0; y < y1; y++ {
		row := buf[y*stride : y*stride+width]
		for x := range row {
			f1, f2 := Field(vmath.V2(float32(x), float32(y)), s1, s2, rsqrt)
			total := f1 + f2
			if total >= Threshold {
				row[x] = pixel.Lerp(s2.Color, s1.Color, weight(f1, f2, total))
			} else {
				row[x] = background
			}
		}
	}
}

// weight is source1's share of the field. Only called with total >= Threshold,
// so the division is safe; infinities from a zero distance are resolved
// explicitly instead of producing Inf/Inf.
func weight(f1, f2, total float32) float32 {
	inf1 := f1 > maxFinite
	inf2 := f2 > maxFinite
	switch {
	case inf1 && inf2:
		return 0.5
	case inf1:
		return 1
	case inf2:
		return 0
	}
	return f1 / total
}

const maxFinite = float32(math.MaxFloat32)
