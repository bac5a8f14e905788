package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-metaballs/internal/config"
	diag "github.com/coreman2200/funtimes-metaballs/internal/diagnostics"
	"github.com/coreman2200/funtimes-metaballs/internal/surface"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/bmpfile"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/fake"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/preview"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/strip"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/term"
)

// SurfaceNames lists the kinds accepted by OpenSurfaces.
var SurfaceNames = []string{"term", "strip", "preview", "bmp", "fake"}

// OpenSurfaces opens every surface named in cfg.Surface (comma separated).
// A surface that fails to open is replaced by fake with a warning; unknown
// names are an error. Several names come back as a surface.Multi.
func OpenSurfaces(cfg *config.Config) (surface.Surface, error) {
	var out surface.Multi
	for _, name := range strings.Split(cfg.Surface, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s, err := openSurface(name, cfg)
		if errors.Is(err, errUnknownSurface) {
			_ = out.Close()
			return nil, err
		}
		if err != nil {
			diag.New(diag.Warn, diag.CodeSurfaceFallback, "Surface failed to open; using fake").
				With("surface", name).
				With("error", err.Error()).
				Log()
			s = fake.New()
		}
		out = append(out, s)
	}
	switch len(out) {
	case 0:
		log.Warn().Msg("no surface configured; using fake")
		return fake.New(), nil
	case 1:
		return out[0], nil
	}
	return out, nil
}

var errUnknownSurface = errors.New("unknown surface")

func openSurface(name string, cfg *config.Config) (surface.Surface, error) {
	switch name {
	case "term":
		return term.New()
	case "strip":
		return strip.New(strip.Options{
			Port:       cfg.Strip.Port,
			Pixels:     cfg.Strip.Pixels,
			FreqKHz:    cfg.Strip.FreqKHz,
			Brightness: cfg.Strip.Brightness,
			// source1 sits on this row in the classic layout
			Row: int(cfg.Ball1.Y),
		})
	case "preview":
		return preview.Listen(preview.Options{
			Addr:     cfg.Preview.Addr,
			Throttle: time.Duration(cfg.Preview.ThrottleMs) * time.Millisecond,
		})
	case "bmp":
		return bmpfile.New(bmpfile.Options{Path: cfg.Snapshot.Path, Every: cfg.Snapshot.Every})
	case "fake":
		return fake.New(), nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", errUnknownSurface, name, strings.Join(SurfaceNames, ", "))
}
