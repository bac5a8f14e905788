package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-metaballs/internal/config"
	diag "github.com/coreman2200/funtimes-metaballs/internal/diagnostics"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
	"github.com/coreman2200/funtimes-metaballs/internal/render/scenes/field"
	mscene "github.com/coreman2200/funtimes-metaballs/internal/render/scenes/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/render/scenes/solid"
	"github.com/coreman2200/funtimes-metaballs/internal/sequence"
	"github.com/coreman2200/funtimes-metaballs/internal/surface"
)

// Core ties the scene registry, the engine, the timeline and a surface
// together and runs the frame loop.
type Core struct {
	Eng  *render.Engine
	Reg  *render.Registry
	Seq  *sequence.Player
	Surf surface.Surface

	// DumpTo receives the timing summary when a surface asks for it.
	DumpTo io.Writer

	fps    int
	frames int
	slow   int
}

// NewRegistry registers the built-in scenes configured from cfg.
func NewRegistry(cfg *config.Config) *render.Registry {
	reg := render.NewRegistry()
	balls := mscene.New("metaballs", mscene.Options{
		Background: cfg.Background,
		Ball1:      cfg.Ball1.Source(),
		Ball2:      cfg.Ball2.Source(),
		Kernel:     cfg.Kernel,
		Workers:    cfg.Workers,
	})
	reg.Register(balls)
	reg.Register(field.New("field", balls))
	reg.Register(solid.New("solid", cfg.Background, map[string]pixel.Color{
		"Background": cfg.Background,
		"Ball1":      cfg.Ball1.Color,
		"Ball2":      cfg.Ball2.Color,
	}))
	return reg
}

func NewCore(cfg *config.Config, surf surface.Surface) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := NewRegistry(cfg)

	scene, ok := reg.Get(cfg.Scene)
	if !ok {
		log.Warn().Str("scene", cfg.Scene).Strs("known", reg.List()).Msg("unknown scene; using metaballs")
		scene, _ = reg.Get("metaballs")
	}
	u := render.NewUniforms()
	scene.ApplyPreset(cfg.Preset, u)

	eng, err := render.NewEngine(cfg.Width, cfg.Height, surf, scene, u)
	if err != nil {
		return nil, err
	}

	hooks := sequence.Hooks{
		SetScene: func(name, preset string) {
			if err := eng.SetScene(name, preset, reg); err != nil {
				log.Warn().Err(err).Msg("sequence: set scene")
			}
		},
		ArmNext: func(name, preset string) {
			if err := eng.ArmNext(name, preset, reg); err != nil {
				log.Warn().Err(err).Msg("sequence: arm next")
			}
		},
		SetCrossfade: eng.SetCrossfade,
		SetParam:     eng.SetParam,
		SetBool:      eng.SetBool,
	}

	return &Core{
		Eng:    eng,
		Reg:    reg,
		Seq:    sequence.NewPlayer(hooks),
		Surf:   surf,
		DumpTo: os.Stdout,
		fps:    cfg.FPS,
	}, nil
}

// Play loads prog and starts it.
func (c *Core) Play(prog sequence.Program) error {
	if err := c.Seq.Load(prog); err != nil {
		return err
	}
	c.Seq.Start()
	return nil
}

// Frames is the number of frames rendered so far.
func (c *Core) Frames() int { return c.frames }

// Run ticks at the configured FPS until ctx is done or the surface asks to
// quit. A frame in flight always completes.
func (c *Core) Run(ctx context.Context) error {
	dt := time.Second / time.Duration(c.fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	log.Info().Int("fps", c.fps).Int("width", c.Eng.Out.Width).Int("height", c.Eng.Out.Height).Msg("frame loop starting")
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("frames", c.frames).Msg("frame loop stopped")
			return nil
		case <-ticker.C:
			quit, err := c.Step(dt)
			if err != nil {
				return err
			}
			if quit {
				log.Info().Int("frames", c.frames).Msg("quit requested")
				return nil
			}
		}
	}
}

// Step handles pending surface events, advances the timeline by dt and
// renders one frame when the surface is ready. It reports whether a quit
// was requested.
func (c *Core) Step(dt time.Duration) (bool, error) {
	for _, ev := range surface.EventsOf(c.Surf) {
		select {
		case <-ev.Quit():
			return true, nil
		default:
		}
		select {
		case <-ev.Dump():
			c.dump()
		default:
		}
	}

	if p, ok := c.Surf.(surface.Pointer); ok {
		if v, ok := p.Pointer(); ok {
			c.Eng.SetPointer(v)
		}
	}

	c.Seq.Tick(dt.Seconds())

	if g, ok := c.Surf.(surface.Gate); ok && !g.Ready() {
		return false, nil
	}

	c.Eng.Prof.Reset()
	if err := c.Eng.RenderOnce(-1); err != nil {
		return false, fmt.Errorf("frame %d: %w", c.frames, err)
	}
	c.frames++

	budget := float64(dt.Microseconds()) / 1000.0
	if c.Eng.Last.TotalMS > 2*budget {
		c.slow++
		// one report per 100 slow frames
		if c.slow%100 == 1 {
			diag.New(diag.Warn, diag.CodeFrameSlow, "Frames are taking longer than the frame budget").
				With("total_ms", c.Eng.Last.TotalMS).
				With("budget_ms", budget).
				With("slow_frames", c.slow).
				Log()
		}
	}
	return false, nil
}

func (c *Core) dump() {
	diag.New(diag.Info, diag.CodeTimingDump, "Timing summary").With("frames", c.frames).Log()
	if c.DumpTo == nil {
		return
	}
	if err := c.Eng.Prof.Dump(c.DumpTo); err != nil {
		log.Warn().Err(err).Msg("timing dump")
	}
}
