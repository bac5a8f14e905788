package sequence

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		// smoothstep 3x^2 - 2x^3
		return x * x * (3 - 2*x)
	case "cubic":
		// smootherstep 6x^5 - 15x^4 + 10x^3
		return x * x * x * (x*(x*6-15) + 10)
	default:
		return x
	}
}

// Eval returns the envelope value at t (seconds). No keys yields 0; values
// hold flat before the first and after the last key.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	i := sort.Search(n, func(i int) bool { return e.Keys[i].T > t }) - 1
	a, b := e.Keys[i], e.Keys[i+1]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := easeApply(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}

// BoolEval thresholds the envelope at 0.5.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}

func (e *Envelope) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			var b bool
			if berr := n.Decode(&b); berr != nil {
				return fmt.Errorf("line %d: envelope: %w", n.Line, err)
			}
			if b {
				v = 1
			}
		}
		*e = Const(v)
	case yaml.SequenceNode:
		var keys []Keyframe
		if err := n.Decode(&keys); err != nil {
			return fmt.Errorf("line %d: envelope: %w", n.Line, err)
		}
		sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
		e.Keys = keys
	default:
		return fmt.Errorf("line %d: envelope must be a number or a list of keyframes", n.Line)
	}
	return nil
}

func (e Envelope) MarshalYAML() (any, error) {
	if len(e.Keys) == 1 && e.Keys[0].T == 0 && e.Keys[0].Ease == "" {
		return e.Keys[0].V, nil
	}
	return e.Keys, nil
}
