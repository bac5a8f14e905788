package sequence

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const Version = "seq.v1"

var ErrNoClips = errors.New("program has no clips")

// Parse decodes a YAML (or JSON) program and validates it.
func Parse(data []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Program{}, fmt.Errorf("sequence: %w", err)
	}
	if p.Version == "" {
		p.Version = Version
	}
	return p, p.Validate()
}

// LoadFile reads and parses a program file.
func LoadFile(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, fmt.Errorf("sequence: %w", err)
	}
	return Parse(b)
}

func (p Program) Validate() error {
	if p.Version != Version {
		return fmt.Errorf("sequence: unsupported version %q", p.Version)
	}
	if len(p.Clips) == 0 {
		return ErrNoClips
	}
	for i, c := range p.Clips {
		switch {
		case c.Scene == "":
			return fmt.Errorf("sequence: clip %d (%s): no scene", i, c.Name)
		case c.DurationS <= 0:
			return fmt.Errorf("sequence: clip %d (%s): duration must be positive", i, c.Name)
		case c.XFadeS < 0 || c.XFadeS > c.DurationS:
			return fmt.Errorf("sequence: clip %d (%s): xfade must be within the duration", i, c.Name)
		}
	}
	return nil
}

// Duration is the summed length of all clips.
func (p Program) Duration() float64 {
	total := 0.0
	for _, c := range p.Clips {
		total += c.DurationS
	}
	return total
}
