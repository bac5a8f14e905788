package sequence

// Keyframe is a value at time T (seconds). Ease applies to the segment that
// starts at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t" json:"t"`
	V    float64 `yaml:"v" json:"v"`
	Ease string  `yaml:"ease,omitempty" json:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes. In program files it is written
// either as a bare number or as a list of keyframes.
type Envelope struct {
	Keys []Keyframe
}

// Const is an envelope holding v at all times.
func Const(v float64) Envelope { return Envelope{Keys: []Keyframe{{V: v}}} }

// Clip is one segment of a show: a scene and preset held for DurationS, with
// an optional crossfade into the next clip over its last XFadeS seconds.
type Clip struct {
	Name      string              `yaml:"name"`
	Scene     string              `yaml:"scene"`
	Preset    string              `yaml:"preset,omitempty"`
	DurationS float64             `yaml:"duration_s"`
	XFadeS    float64             `yaml:"xfade_s,omitempty"`
	Params    map[string]Envelope `yaml:"params,omitempty"`
	Bools     map[string]Envelope `yaml:"bools,omitempty"` // thresholded at 0.5
}

type Program struct {
	Version string `yaml:"version"` // "seq.v1"
	Loop    bool   `yaml:"loop,omitempty"`
	Clips   []Clip `yaml:"clips"`
}

type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are callbacks into the render engine. Nil hooks are skipped.
type Hooks struct {
	// SetScene makes name/preset active immediately.
	SetScene func(name, preset string)
	// SetParam and SetBool target the active scene.
	SetParam func(name string, v float64)
	SetBool  func(name string, b bool)
	// ArmNext prepares the next scene for a crossfade.
	ArmNext      func(name, preset string)
	SetCrossfade func(alpha float64) // 0..1 mix between active and armed
}

// Player owns the program timeline and drives the engine through Hooks.
// It is not safe for concurrent use.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current clip index

	// crossfade bookkeeping
	armed     bool
	lastAlpha float64

	hooks Hooks
}
