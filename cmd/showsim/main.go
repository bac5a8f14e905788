// Command showsim dry-runs a show program and prints the scene, fade and
// automation calls it would make, without rendering anything.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-metaballs/internal/sequence"
)

func main() {
	var (
		programPath string
		fps         int
		realtime    bool
		params      bool
		maxS        float64
	)
	flag.StringVar(&programPath, "program", "", "path to a show program (seq.v1, yaml or json)")
	flag.IntVar(&fps, "fps", 60, "simulation frames per second")
	flag.BoolVar(&realtime, "realtime", false, "tick on a wall clock instead of as fast as possible")
	flag.BoolVar(&params, "params", false, "also print param and bool automation")
	flag.Float64Var(&maxS, "max", 600, "stop after this many simulated seconds (looping programs)")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if programPath == "" {
		log.Fatal().Msg("provide -program")
	}
	prog, err := sequence.LoadFile(programPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load program")
	}

	var simT float64
	h := sequence.Hooks{
		SetScene: func(name, preset string) {
			fmt.Printf("%8.3f [SetScene] %s / %s\n", simT, name, preset)
		},
		ArmNext: func(name, preset string) {
			fmt.Printf("%8.3f [ArmNext] %s / %s\n", simT, name, preset)
		},
		SetCrossfade: func(alpha float64) {
			fmt.Printf("%8.3f [Crossfade] alpha=%.3f\n", simT, alpha)
		},
		SetParam: func(name string, v float64) {
			if params {
				fmt.Printf("%8.3f [Param] %s=%.3f\n", simT, name, v)
			}
		},
		SetBool: func(name string, b bool) {
			if params {
				fmt.Printf("%8.3f [Bool] %s=%v\n", simT, name, b)
			}
		},
	}
	player := sequence.NewPlayer(h)
	if err := player.Load(prog); err != nil {
		log.Fatal().Err(err).Msg("load")
	}
	player.Start()

	dt := time.Second / time.Duration(fps)
	var tick <-chan time.Time
	if realtime {
		ticker := time.NewTicker(dt)
		defer ticker.Stop()
		tick = ticker.C
	}

	for player.State != sequence.Idle && simT < maxS {
		if tick != nil {
			<-tick
		}
		simT += dt.Seconds()
		player.Tick(dt.Seconds())
	}
	fmt.Printf("Done at t=%.3f (program %.3fs, loop=%v)\n", simT, prog.Duration(), prog.Loop)
}
