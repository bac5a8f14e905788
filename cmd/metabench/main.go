// Command metabench renders N frames per kernel with source2 orbiting and
// prints the frame timing summary for each.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/coreman2200/funtimes-metaballs/internal/config"
	"github.com/coreman2200/funtimes-metaballs/internal/render"
	mscene "github.com/coreman2200/funtimes-metaballs/internal/render/scenes/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/surface/bmpfile"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

func main() {
	var (
		width   = flag.Int("width", 1600, "framebuffer width")
		height  = flag.Int("height", 900, "framebuffer height")
		frames  = flag.Int("frames", 240, "frames per kernel")
		workers = flag.Int("workers", -1, "render workers: 0/1 serial, -1 GOMAXPROCS")
		kernels = flag.String("kernels", "fast,fast2,exact", "kernels to run, comma separated")
		out     = flag.String("out", "", "write the last frame of each kernel to this bmp path (may contain %s)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	cfg.Width, cfg.Height, cfg.Workers = *width, *height, *workers
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	for _, name := range strings.Split(*kernels, ",") {
		k, err := vmath.ParseKernel(strings.TrimSpace(name))
		if err != nil {
			log.Fatal().Err(err).Msg("kernel")
		}
		eng, err := bench(cfg, k, *frames)
		if err != nil {
			log.Fatal().Err(err).Str("kernel", k.String()).Msg("bench")
		}

		fmt.Printf("\n== %s (%dx%d, %d frames) ==\n", k, cfg.Width, cfg.Height, *frames)
		if err := eng.Prof.Dump(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("dump")
		}
		if *out != "" {
			path := *out
			if strings.Contains(path, "%s") {
				path = fmt.Sprintf(path, k)
			}
			if err := bmpfile.WriteFile(path, eng.Out); err != nil {
				log.Fatal().Err(err).Msg("snapshot")
			}
			log.Info().Str("path", path).Msg("last frame written")
		}
	}
}

func bench(cfg *config.Config, k vmath.Kernel, frames int) (*render.Engine, error) {
	scene := mscene.New("metaballs", mscene.Options{
		Background: cfg.Background,
		Ball1:      cfg.Ball1.Source(),
		Ball2:      cfg.Ball2.Source(),
		Kernel:     k,
		Workers:    cfg.Workers,
	})
	u := render.NewUniforms()
	scene.ApplyPreset("Orbit", u)

	// no surface: this times the field alone
	eng, err := render.NewEngine(cfg.Width, cfg.Height, nil, scene, u)
	if err != nil {
		return nil, err
	}

	bar := progressbar.NewOptions(frames,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(k.String()),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	dt := 1.0 / float64(cfg.FPS)
	for i := 0; i < frames; i++ {
		if err := eng.RenderOnce(float64(i) * dt); err != nil {
			return nil, err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return eng, nil
}
