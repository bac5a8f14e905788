package vmath

import (
	"fmt"
	"math"
	"strings"
)

const (
	rsqrtMagic = 0x5f3759df
	threeHalfs = float32(1.5)
)

// InvSqrtFast approximates 1/sqrt(x) with the bit-level seed and a single
// Newton-Raphson step. Relative error stays under ~0.2% for x > 0.
// x <= 0 returns an unspecified value; it never panics.
func InvSqrtFast(x float32) float32 {
	x2 := x * 0.5
	y := math.Float32frombits(rsqrtMagic - (math.Float32bits(x) >> 1))
	return y * (threeHalfs - x2*y*y)
}

// InvSqrtFastRefined applies a second Newton-Raphson step on top of
// InvSqrtFast. The falloff it produces is sharper than the single-step
// curve the 0.005 threshold was tuned against, so it is opt-in only.
func InvSqrtFastRefined(x float32) float32 {
	x2 := x * 0.5
	y := InvSqrtFast(x)
	return y * (threeHalfs - x2*y*y)
}

// InvSqrtExact returns 1/sqrt(x) through the math library.
// x == 0 yields +Inf.
func InvSqrtExact(x float32) float32 {
	return float32(1 / math.Sqrt(float64(x)))
}

// Kernel selects the reciprocal square root used by the renderer.
type Kernel int

const (
	KernelFast Kernel = iota
	KernelFastRefined
	KernelExact
)

var kernelNames = [...]string{
	KernelFast:        "fast",
	KernelFastRefined: "fast2",
	KernelExact:       "exact",
}

// Func resolves the kernel once so hot loops call a plain function value.
// Unknown kernels fall back to KernelFast.
func (k Kernel) Func() func(float32) float32 {
	switch k {
	case KernelFastRefined:
		return InvSqrtFastRefined
	case KernelExact:
		return InvSqrtExact
	default:
		return InvSqrtFast
	}
}

func (k Kernel) String() string {
	if k < 0 || int(k) >= len(kernelNames) {
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
	return kernelNames[k]
}

// ParseKernel accepts "fast", "fast2" (alias "refined") and "exact".
func ParseKernel(s string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast":
		return KernelFast, nil
	case "fast2", "refined":
		return KernelFastRefined, nil
	case "exact":
		return KernelExact, nil
	}
	return KernelFast, fmt.Errorf("unknown kernel %q", s)
}

func (k Kernel) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kernel) UnmarshalText(b []byte) error {
	v, err := ParseKernel(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
