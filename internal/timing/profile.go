// Package timing keeps nested named clocks for frame profiling.
//
//	p.Begin("TOTAL")
//	p.Begin("SCENE")
//	...
//	p.End()
//	p.End()
//	p.Dump(os.Stdout)
package timing

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Stat aggregates every measurement taken under one clock path.
type Stat struct {
	Path  string
	Name  string
	Depth int
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

func (s Stat) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

type open struct {
	path  string
	start time.Time
}

// Profile is safe for concurrent use, but clocks nest per Profile, so
// concurrent Begin/End pairs on the same Profile interleave their stacks.
type Profile struct {
	mu    sync.Mutex
	stack []open
	stats map[string]*Stat
	order []string

	now func() time.Time
}

func New() *Profile {
	return &Profile{stats: map[string]*Stat{}, now: time.Now}
}

// Begin starts a clock nested inside the currently open one.
func (p *Profile) Begin(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path := name
	if n := len(p.stack); n > 0 {
		path = p.stack[n-1].path + "/" + name
	}
	// registered on first Begin so parents list before their children
	if _, ok := p.stats[path]; !ok {
		p.stats[path] = &Stat{
			Path:  path,
			Name:  name,
			Depth: strings.Count(path, "/"),
		}
		p.order = append(p.order, path)
	}
	p.stack = append(p.stack, open{path: path, start: p.now()})
}

// End stops the innermost clock. Unbalanced calls are ignored.
func (p *Profile) End() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.stack)
	if n == 0 {
		return 0
	}
	top := p.stack[n-1]
	p.stack = p.stack[:n-1]
	d := p.now().Sub(top.start)

	st := p.stats[top.path]
	st.Count++
	st.Total += d
	st.Last = d
	if st.Count == 1 || d < st.Min {
		st.Min = d
	}
	if d > st.Max {
		st.Max = d
	}
	return d
}

// Time measures fn under name.
func (p *Profile) Time(name string, fn func() error) error {
	p.Begin(name)
	defer p.End()
	return fn()
}

// Reset drops all statistics and any open clocks.
func (p *Profile) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stack = p.stack[:0]
	p.stats = map[string]*Stat{}
	p.order = p.order[:0]
}

// Summary returns the stats in first-seen order.
func (p *Profile) Summary() []Stat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Stat, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, *p.stats[k])
	}
	return out
}

// Dump writes an indented table of the summary.
func (p *Profile) Dump(w io.Writer) error {
	for _, s := range p.Summary() {
		indent := strings.Repeat("  ", s.Depth)
		if _, err := fmt.Fprintf(w, "%s%-*s %6d calls  avg %-10v min %-10v max %-10v\n",
			indent, 16-len(indent), s.Name, s.Count, s.Avg(), s.Min, s.Max); err != nil {
			return err
		}
	}
	return nil
}

// Log emits one event per clock.
func (p *Profile) Log(l zerolog.Logger) {
	for _, s := range p.Summary() {
		l.Info().
			Str("clock", s.Path).
			Int("count", s.Count).
			Dur("avg", s.Avg()).
			Dur("min", s.Min).
			Dur("max", s.Max).
			Msg("timing")
	}
}
