package sequence

import (
	"math"

	"github.com/rs/zerolog/log"
)

func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load validates and replaces the current program, resetting to Idle.
func (p *Player) Load(prog Program) error {
	if prog.Version == "" {
		prog.Version = Version
	}
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.reset()
	p.State = Idle
	return nil
}

func (p *Player) reset() {
	p.nowS = 0
	p.idx = 0
	p.armed = false
	p.lastAlpha = 0
}

// Start moves to Running and primes the current clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.enterClip()
}

func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop returns to Idle at the program start.
func (p *Player) Stop() {
	p.State = Idle
	p.reset()
	p.crossfade(0)
}

// Now is the position within the program in seconds.
func (p *Player) Now() float64 { return p.nowS }

// Clip returns the current clip and its index.
func (p *Player) Clip() (Clip, int) {
	if len(p.prog.Clips) == 0 {
		return Clip{}, -1
	}
	return p.prog.Clips[p.idx], p.idx
}

// Seek jumps to absolute program time t, clamped into [0, duration).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	if total := p.prog.Duration(); t >= total {
		t = math.Nextafter(total, 0)
	}
	acc := 0.0
	idx := len(p.prog.Clips) - 1
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	p.enterClip()
}

// Tick advances the timeline by dt seconds and emits hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt

	clip, localT := p.currentClipAndLocalT()
	if p.hooks.SetParam != nil {
		for name, env := range clip.Params {
			p.hooks.SetParam(name, env.Eval(localT))
		}
	}
	if p.hooks.SetBool != nil {
		for name, env := range clip.Bools {
			p.hooks.SetBool(name, env.BoolEval(localT))
		}
	}

	if clip.XFadeS > 0 {
		remain := clip.DurationS - localT
		if remain <= clip.XFadeS && remain >= 0 {
			if next := p.nextIndex(); !p.armed && next != -1 {
				nc := p.prog.Clips[next]
				if p.hooks.ArmNext != nil {
					p.hooks.ArmNext(nc.Scene, nc.Preset)
				}
				p.armed = true
			}
			if p.armed {
				p.crossfade(clamp01(1 - remain/clip.XFadeS))
			}
		}
	}

	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	return p.prog.Clips[p.idx], p.nowS - acc
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni < len(p.prog.Clips) {
		return ni
	}
	if p.prog.Loop {
		return 0
	}
	return -1
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		log.Debug().Float64("t", p.nowS).Msg("program finished")
		p.State = Idle
		p.crossfade(0)
		return
	}
	if next == 0 {
		// looping restarts program time
		p.nowS -= p.prog.Duration()
		if p.nowS < 0 {
			p.nowS = 0
		}
	}
	p.idx = next
	p.enterClip()
}

// enterClip snaps the engine to the current clip with no fade pending.
func (p *Player) enterClip() {
	clip := p.prog.Clips[p.idx]
	log.Debug().Str("clip", clip.Name).Str("scene", clip.Scene).Str("preset", clip.Preset).Msg("clip")
	if p.hooks.SetScene != nil {
		p.hooks.SetScene(clip.Scene, clip.Preset)
	}
	p.armed = false
	p.lastAlpha = -1
	p.crossfade(0)
}

func (p *Player) crossfade(alpha float64) {
	if alpha == p.lastAlpha {
		return
	}
	p.lastAlpha = alpha
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(alpha)
	}
}
