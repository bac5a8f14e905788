// Package bmpfile snapshots presented frames to BMP files.
package bmpfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"

	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
)

type Options struct {
	// Path may contain one %d verb, which receives the frame number. Without
	// it every snapshot overwrites the same file.
	Path string
	// Every writes every Nth frame. 0 only writes the last frame on Close.
	Every int
}

type Surface struct {
	opt   Options
	count int
	last  *pixel.Framebuffer
}

func New(opt Options) (*Surface, error) {
	if opt.Path == "" {
		return nil, fmt.Errorf("bmpfile: empty path")
	}
	if dir := filepath.Dir(opt.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("bmpfile: %w", err)
		}
	}
	return &Surface{opt: opt}, nil
}

func (s *Surface) Present(fb *pixel.Framebuffer) error {
	s.count++
	if s.last == nil || s.last.Width != fb.Width || s.last.Height != fb.Height {
		s.last = fb.Clone()
	} else {
		s.last.CopyFrom(fb)
	}
	if s.opt.Every > 0 && s.count%s.opt.Every == 0 {
		return s.write(s.count)
	}
	return nil
}

// Close writes the last frame when snapshots are only taken at exit.
func (s *Surface) Close() error {
	if s.last == nil || s.opt.Every > 0 {
		return nil
	}
	return s.write(s.count)
}

// Name returns the file written for frame n.
func (s *Surface) Name(n int) string {
	if strings.Contains(s.opt.Path, "%") {
		return fmt.Sprintf(s.opt.Path, n)
	}
	return s.opt.Path
}

func (s *Surface) write(n int) error {
	name := s.Name(n)
	if err := WriteFile(name, s.last); err != nil {
		return err
	}
	log.Debug().Str("file", name).Int("frame", n).Msg("snapshot written")
	return nil
}

// WriteFile encodes fb as a 24-bit BMP.
func WriteFile(name string, fb *pixel.Framebuffer) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("bmpfile: %w", err)
	}
	if err := bmp.Encode(f, fb.ToNRGBA()); err != nil {
		f.Close()
		return fmt.Errorf("bmpfile: encode %s: %w", name, err)
	}
	return f.Close()
}
