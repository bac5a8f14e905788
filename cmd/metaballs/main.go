package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-metaballs/internal/app"
	"github.com/coreman2200/funtimes-metaballs/internal/config"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/sequence"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

func main() {
	// ---- Flags (config.yaml overrides them when present) ----
	var (
		width      = flag.Int("width", 1600, "framebuffer width")
		height     = flag.Int("height", 900, "framebuffer height")
		fps        = flag.Int("fps", 60, "target frames per second")
		workers    = flag.Int("workers", -1, "render workers: 0/1 serial, -1 GOMAXPROCS")
		kernel     = flag.String("kernel", "fast", "inverse sqrt kernel: fast | fast2 | exact")
		surf       = flag.String("surface", "term", "surfaces, comma separated: "+strings.Join(app.SurfaceNames, " | "))
		scene      = flag.String("scene", "metaballs", "start scene")
		preset     = flag.String("preset", "Mouse", "start preset")
		program    = flag.String("program", "", "show program (yaml/json) to play")
		addr       = flag.String("addr", "127.0.0.1:8090", "preview listen address")
		snapshot   = flag.String("snapshot", "metaballs.bmp", "bmp surface path (may contain %d)")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		logLevel   = flag.String("log-level", "info", "debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	var logOut io.Writer = os.Stdout
	if strings.Contains(*surf, "term") {
		// the terminal belongs to tcell
		logOut = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logOut, TimeFormat: time.Kitchen})

	// ---- Effective config: defaults, then flags, then keys set in config.yaml ----
	cfg := config.Default()
	cfg.Width, cfg.Height, cfg.FPS, cfg.Workers = *width, *height, *fps, *workers
	if k, err := vmath.ParseKernel(*kernel); err != nil {
		log.Warn().Err(err).Msg("bad -kernel; using fast")
	} else {
		cfg.Kernel = k
	}
	cfg.Surface, cfg.Scene, cfg.Preset, cfg.Program = *surf, *scene, *preset, *program
	cfg.Preview.Addr = *addr
	cfg.Snapshot.Path = *snapshot

	switch err := config.LoadInto(*configPath, cfg); {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", *configPath).Msg("no config file; using flags")
	case err != nil:
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	default:
		log.Info().Str("path", *configPath).Msg("config loaded over flags")
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("metaballs")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	s, err := app.OpenSurfaces(cfg)
	if err != nil {
		return err
	}

	core, err := app.NewCore(cfg, s)
	if err != nil {
		_ = s.Close()
		return err
	}

	// the terminal is in raw mode until Close; hold dumps until then
	var held bytes.Buffer
	if strings.Contains(cfg.Surface, "term") {
		core.DumpTo = &held
	}

	if cfg.Program != "" {
		prog, err := sequence.LoadFile(cfg.Program)
		if err != nil {
			_ = s.Close()
			return err
		}
		if err := core.Play(prog); err != nil {
			_ = s.Close()
			return err
		}
		log.Info().Str("program", cfg.Program).Int("clips", len(prog.Clips)).Msg("program playing")
	}

	log.Info().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Str("kernel", cfg.Kernel.String()).
		Str("surface", cfg.Surface).
		Str("ball1", describe(cfg.Ball1.X, cfg.Ball1.Y, cfg.Ball1.Color)).
		Str("ball2", describe(cfg.Ball2.X, cfg.Ball2.Y, cfg.Ball2.Color)).
		Msg("metaballs starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := core.Run(ctx)
	closeErr := s.Close()
	if held.Len() > 0 {
		_, _ = io.Copy(os.Stdout, &held)
	}
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func describe(x, y float32, c pixel.Color) string {
	return fmt.Sprintf("(%g,%g) %s", x, y, c.Hex())
}
