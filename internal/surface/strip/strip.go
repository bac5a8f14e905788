// Package strip shows one row of the frame on an addressable LED strip
// driven over SPI. Without a usable SPI port it prints the strip to the
// console instead.
package strip

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
)

const DefaultFreqKHz = 2500

type Options struct {
	// Port is the spireg name; "" picks the first port found.
	Port       string
	Pixels     int
	FreqKHz    int
	Brightness float64
	// Row is the framebuffer row shown on the strip. Negative picks the
	// middle row.
	Row int
}

func (o *Options) defaults() {
	if o.Pixels <= 0 {
		o.Pixels = 100
	}
	if o.FreqKHz <= 0 {
		o.FreqKHz = DefaultFreqKHz
	}
	if o.Brightness <= 0 || o.Brightness > 1 {
		o.Brightness = 1
	}
}

type Surface struct {
	opt     Options
	drawer  display.Drawer
	port    spi.PortCloser
	console bool
	img     *image.NRGBA
}

// New opens the SPI port named in opt. When the host or port is missing it
// logs a warning and falls back to the console strip.
func New(opt Options) (*Surface, error) {
	opt.defaults()
	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; falling back to console strip")
		return NewDrawer(screen.New(opt.Pixels), opt, true), nil
	}
	p, err := spireg.Open(opt.Port)
	if err != nil {
		log.Warn().Err(err).Str("port", opt.Port).Msg("no SPI port; falling back to console strip")
		return NewDrawer(screen.New(opt.Pixels), opt, true), nil
	}
	s, err := NewOnPort(p, opt)
	if err != nil {
		p.Close()
		return nil, err
	}
	s.port = p
	return s, nil
}

// NewOnPort drives WS2812-style LEDs on an already open port.
func NewOnPort(p spi.Port, opt Options) (*Surface, error) {
	opt.defaults()
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: opt.Pixels,
		Channels:  3,
		Freq:      physic.Frequency(opt.FreqKHz) * physic.KiloHertz,
	})
	if err != nil {
		return nil, fmt.Errorf("strip: nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("strip: halt: %w", err)
	}
	log.Info().Str("dev", d.String()).Int("pixels", opt.Pixels).Msg("LED strip ready")
	return NewDrawer(d, opt, false), nil
}

// NewDrawer wraps any periph display.
func NewDrawer(d display.Drawer, opt Options, console bool) *Surface {
	opt.defaults()
	return &Surface{
		opt:     opt,
		drawer:  d,
		console: console,
		img:     image.NewNRGBA(image.Rect(0, 0, opt.Pixels, 1)),
	}
}

// Console reports whether frames go to the console fallback.
func (s *Surface) Console() bool { return s.console }

func (s *Surface) Present(fb *pixel.Framebuffer) error {
	Sample(s.img, fb, s.opt.Row, s.opt.Brightness)
	if err := s.drawer.Draw(s.drawer.Bounds(), s.img, image.Point{}); err != nil {
		return fmt.Errorf("strip: draw: %w", err)
	}
	if s.console {
		fmt.Print("\n")
	}
	return nil
}

func (s *Surface) Close() error {
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Sample scales framebuffer row onto dst (one pixel high) with nearest
// neighbour sampling and applies brightness.
func Sample(dst *image.NRGBA, fb *pixel.Framebuffer, row int, brightness float64) {
	if row < 0 || row >= fb.Height {
		row = fb.Height / 2
	}
	src := image.Rect(0, row, fb.Width, row+1)
	draw.NearestNeighbor.Scale(dst, dst.Rect, fb.Image(), src, draw.Src, nil)
	if brightness >= 1 {
		return
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = uint8(float64(dst.Pix[i+0]) * brightness)
		dst.Pix[i+1] = uint8(float64(dst.Pix[i+1]) * brightness)
		dst.Pix[i+2] = uint8(float64(dst.Pix[i+2]) * brightness)
	}
}
