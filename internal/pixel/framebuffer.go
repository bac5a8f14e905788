package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	ErrInvalidDimensions = errors.New("framebuffer: width and height must be positive")
	ErrStrideTooSmall    = errors.New("framebuffer: stride smaller than width")
	ErrBufferTooSmall    = errors.New("framebuffer: buffer smaller than stride*height")
)

// Framebuffer is a row-major grid of packed pixels. Stride may exceed Width
// for padded rows; padding cells belong to the owner and are never written
// by renderers.
type Framebuffer struct {
	Pix    []Color
	Width  int
	Height int
	Stride int
}

// CheckDims validates a raw buffer descriptor without building a Framebuffer.
func CheckDims(n, width, height, stride int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w (got %dx%d)", ErrInvalidDimensions, width, height)
	}
	if stride < width {
		return fmt.Errorf("%w (stride %d, width %d)", ErrStrideTooSmall, stride, width)
	}
	// the last row only needs width cells
	if need := stride*(height-1) + width; n < need {
		return fmt.Errorf("%w (have %d, need %d)", ErrBufferTooSmall, n, need)
	}
	return nil
}

func New(width, height int) (*Framebuffer, error) { return NewStride(width, height, width) }

func NewStride(width, height, stride int) (*Framebuffer, error) {
	if err := CheckDims(stride*height, width, height, stride); err != nil {
		return nil, err
	}
	return &Framebuffer{Pix: make([]Color, stride*height), Width: width, Height: height, Stride: stride}, nil
}

// Wrap adopts a caller-owned buffer.
func Wrap(pix []Color, width, height, stride int) (*Framebuffer, error) {
	if err := CheckDims(len(pix), width, height, stride); err != nil {
		return nil, err
	}
	return &Framebuffer{Pix: pix, Width: width, Height: height, Stride: stride}, nil
}

func (f *Framebuffer) Validate() error {
	if f == nil {
		return ErrInvalidDimensions
	}
	return CheckDims(len(f.Pix), f.Width, f.Height, f.Stride)
}

// Row returns the visible cells of row y (padding excluded).
func (f *Framebuffer) Row(y int) []Color {
	off := y * f.Stride
	return f.Pix[off : off+f.Width : off+f.Width]
}

func (f *Framebuffer) At(x, y int) Color { return f.Pix[y*f.Stride+x] }

func (f *Framebuffer) Set(x, y int, c Color) { f.Pix[y*f.Stride+x] = c }

// Fill writes c to every visible cell.
func (f *Framebuffer) Fill(c Color) {
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		for x := range row {
			row[x] = c
		}
	}
}

// CopyFrom copies the visible area of src, which must have the same size.
func (f *Framebuffer) CopyFrom(src *Framebuffer) {
	for y := 0; y < f.Height; y++ {
		copy(f.Row(y), src.Row(y))
	}
}

// Clone returns a tightly packed copy.
func (f *Framebuffer) Clone() *Framebuffer {
	out := &Framebuffer{Pix: make([]Color, f.Width*f.Height), Width: f.Width, Height: f.Height, Stride: f.Width}
	out.CopyFrom(f)
	return out
}

// Image exposes the framebuffer as a read-only image without copying. The
// view implements image.RGBA64Image, which x/image/draw scalers require of
// a source when the destination is a standard image.
func (f *Framebuffer) Image() image.RGBA64Image { return imageView{f} }

type imageView struct{ f *Framebuffer }

func (v imageView) ColorModel() color.Model { return Model }
func (v imageView) Bounds() image.Rectangle { return image.Rect(0, 0, v.f.Width, v.f.Height) }

func (v imageView) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= v.f.Width || y >= v.f.Height {
		return Color(0)
	}
	return v.f.At(x, y)
}

func (v imageView) RGBA64At(x, y int) color.RGBA64 {
	if x < 0 || y < 0 || x >= v.f.Width || y >= v.f.Height {
		return color.RGBA64{}
	}
	r, g, b, a := v.f.At(x, y).RGBA()
	return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)}
}

// ToNRGBA copies the framebuffer into a standard image.
func (f *Framebuffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		o := img.PixOffset(0, y)
		for x, c := range row {
			img.Pix[o+x*4+0] = c.R()
			img.Pix[o+x*4+1] = c.G()
			img.Pix[o+x*4+2] = c.B()
			img.Pix[o+x*4+3] = 0xFF
		}
	}
	return img
}

// RGB24 appends the visible pixels as packed R,G,B bytes to dst.
func (f *Framebuffer) RGB24(dst []byte) []byte {
	for y := 0; y < f.Height; y++ {
		for _, c := range f.Row(y) {
			dst = append(dst, c.R(), c.G(), c.B())
		}
	}
	return dst
}
