package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-metaballs/internal/config"
	"github.com/coreman2200/funtimes-metaballs/internal/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
	"github.com/coreman2200/funtimes-metaballs/internal/sequence"
	"github.com/coreman2200/funtimes-metaballs/internal/surface"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/fake"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

type eventful struct {
	*fake.Surface
	*surface.Signals
}

type gated struct {
	*fake.Surface
	ready bool
}

func (g *gated) Ready() bool { return g.ready }

func smallConfig() *config.Config {
	c := config.Default()
	c.Width, c.Height = 64, 48
	c.Workers = 2
	c.FPS = 200
	c.Ball1.X, c.Ball1.Y = 16, 24
	return c
}

func TestStepRendersPointerFrame(t *testing.T) {
	cfg := smallConfig()
	surf := fake.New()
	surf.Quiet = true
	core, err := NewCore(cfg, surf)
	require.NoError(t, err)

	surf.MovePointer(vmath.V2(48, 24))
	quit, err := core.Step(time.Second / 60)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, 1, surf.Frames())
	assert.Equal(t, 1, core.Frames())

	want, err := pixel.New(cfg.Width, cfg.Height)
	require.NoError(t, err)
	s2 := cfg.Ball2.Source()
	s2.Pos = vmath.V2(48, 24)
	require.NoError(t, metaballs.Render(want.Pix, want.Width, want.Height, want.Stride, cfg.Background, cfg.Ball1.Source(), s2, cfg.Kernel))
	assert.Equal(t, want.Pix, surf.Last.Pix)

	names := []string{}
	for _, s := range core.Eng.Prof.Summary() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, render.ClockTotal)
	assert.Contains(t, names, render.ClockScene)
}

func TestStepHonoursGate(t *testing.T) {
	surf := &gated{Surface: fake.New()}
	surf.Quiet = true
	core, err := NewCore(smallConfig(), surf)
	require.NoError(t, err)

	_, err = core.Step(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, surf.Frames())

	surf.ready = true
	_, err = core.Step(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, surf.Frames())
}

func TestStepEvents(t *testing.T) {
	surf := &eventful{Surface: fake.New(), Signals: surface.NewSignals()}
	surf.Surface.Quiet = true
	core, err := NewCore(smallConfig(), surface.Multi{surf})
	require.NoError(t, err)
	var out bytes.Buffer
	core.DumpTo = &out

	_, err = core.Step(time.Millisecond)
	require.NoError(t, err)
	surf.RequestDump()
	_, err = core.Step(time.Millisecond)
	require.NoError(t, err)
	assert.Contains(t, out.String(), render.ClockTotal)

	surf.RequestQuit()
	quit, err := core.Step(time.Millisecond)
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Equal(t, 2, surf.Frames(), "quit frame is not rendered")
}

func TestRunStopsOnQuit(t *testing.T) {
	surf := &eventful{Surface: fake.New(), Signals: surface.NewSignals()}
	surf.Surface.Quiet = true
	core, err := NewCore(smallConfig(), surf)
	require.NoError(t, err)

	go func() {
		for surf.Frames() < 3 {
			time.Sleep(time.Millisecond)
		}
		surf.RequestQuit()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, core.Run(ctx))
	assert.NoError(t, ctx.Err(), "returned before the deadline")
	assert.GreaterOrEqual(t, core.Frames(), 3)
}

func TestRunStopsOnCancel(t *testing.T) {
	surf := fake.New()
	surf.Quiet = true
	core, err := NewCore(smallConfig(), surf)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.NoError(t, core.Run(ctx))
}

func TestPlayDrivesEngine(t *testing.T) {
	surf := fake.New()
	surf.Quiet = true
	core, err := NewCore(smallConfig(), surf)
	require.NoError(t, err)

	prog := sequence.Program{
		Version: sequence.Version,
		Clips: []sequence.Clip{
			{Name: "a", Scene: "metaballs", Preset: "Orbit", DurationS: 1, XFadeS: 0.5},
			{Name: "b", Scene: "field", Preset: "Mouse", DurationS: 1},
		},
	}
	require.NoError(t, core.Play(prog))
	assert.True(t, core.Eng.UActive.Bool("Orbit", false))

	_, err = core.Step(750 * time.Millisecond)
	require.NoError(t, err)
	fading, alpha := core.Eng.Fading()
	assert.True(t, fading)
	assert.InDelta(t, 0.5, alpha, 1e-9)
	assert.Equal(t, "field", core.Eng.Next.Name())

	_, err = core.Step(300 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "field", core.Eng.Active.Name())
	assert.Equal(t, 2, surf.Frames())
}

func TestUnknownSceneFallsBack(t *testing.T) {
	cfg := smallConfig()
	cfg.Scene = "nope"
	core, err := NewCore(cfg, fake.New())
	require.NoError(t, err)
	assert.Equal(t, "metaballs", core.Eng.Active.Name())
	assert.Equal(t, []string{"field", "metaballs", "solid"}, core.Reg.List())

	cfg.Width = 0
	_, err = NewCore(cfg, fake.New())
	assert.Error(t, err)
}
