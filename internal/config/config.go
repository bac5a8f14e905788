package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-metaballs/internal/metaballs"
	"github.com/coreman2200/funtimes-metaballs/internal/pixel"
	"github.com/coreman2200/funtimes-metaballs/internal/vmath"
)

type Ball struct {
	X     float32     `yaml:"x"`
	Y     float32     `yaml:"y"`
	Color pixel.Color `yaml:"color"` // "#rrggbb"
}

func (b Ball) Source() metaballs.Source {
	return metaballs.Source{Pos: vmath.V2(b.X, b.Y), Color: b.Color}
}

type Preview struct {
	Addr       string `yaml:"addr"`
	ThrottleMs int    `yaml:"throttle_ms"`
}

type Strip struct {
	Port       string  `yaml:"port"` // spireg name, "" for the first port
	Pixels     int     `yaml:"pixels"`
	FreqKHz    int     `yaml:"freq_khz"`
	Brightness float64 `yaml:"brightness"`
}

type Snapshot struct {
	Path  string `yaml:"path"`
	Every int    `yaml:"every"`
}

type Config struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	FPS     int `yaml:"fps"`
	Workers int `yaml:"workers"` // 0/1 serial, -1 GOMAXPROCS

	Kernel     vmath.Kernel `yaml:"kernel"` // fast | fast2 | exact
	Background pixel.Color  `yaml:"background"`
	Ball1      Ball         `yaml:"ball1"`
	Ball2      Ball         `yaml:"ball2"`

	Surface  string   `yaml:"surface"` // term | strip | preview | bmp | fake, comma separated
	Scene    string   `yaml:"scene"`
	Preset   string   `yaml:"preset"`
	Program  string   `yaml:"program,omitempty"`
	Preview  Preview  `yaml:"preview"`
	Strip    Strip    `yaml:"strip"`
	Snapshot Snapshot `yaml:"snapshot"`
}

// Default mirrors the classic 1600x900 window with source1 fixed at
// (400, 400) and source2 following the pointer.
func Default() *Config {
	return &Config{
		Width:      1600,
		Height:     900,
		FPS:        60,
		Workers:    -1,
		Kernel:     vmath.KernelFast,
		Background: 0x5555AA,
		Ball1:      Ball{X: 400, Y: 400, Color: 0xEEEE22},
		Ball2:      Ball{X: 0, Y: 0, Color: 0xEE22EE},
		Surface:    "term",
		Scene:      "metaballs",
		Preset:     "Mouse",
		Preview:    Preview{Addr: "127.0.0.1:8090", ThrottleMs: 50},
		Strip:      Strip{Pixels: 100, FreqKHz: 2500, Brightness: 0.5},
		Snapshot:   Snapshot{Path: "metaballs.bmp"},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (*Config, error) {
	c := Default()
	if err := LoadInto(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadInto reads path over c. Keys missing from the file keep the values
// already in c. On error c is left untouched.
func LoadInto(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	next := *c
	if err := yaml.Unmarshal(b, &next); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	*c = next
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if err := pixel.CheckDims(c.Width*c.Height, c.Width, c.Height, c.Width); err != nil {
		return fmt.Errorf("%dx%d: %w", c.Width, c.Height, err)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	return nil
}
