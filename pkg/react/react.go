// Package react advances the two-chemical Gray-Scott reaction-diffusion
// system by explicit Euler steps over a field grid.
package react

import (
	"fmt"

	"github.com/chazu/morphogen/pkg/field"
)

// maxStableStep is the largest accepted product of time step and
// diffusion rate. Explicit Euler diverges for large products; the
// per-step clamp absorbs mild overshoot (the classic Gray-Scott
// parameterization relies on it), so the screen only rejects parameter
// sets where a single step can swing a cell across the whole value range.
const maxStableStep = 0.5

// Params are the Gray-Scott coefficients for one simulation run.
type Params struct {
	FeedRate   float64
	KillRate   float64
	DiffusionA float64
	DiffusionB float64
	TimeStep   float64
}

// DefaultParams produce the blob-dividing "mitosis" regime from a point
// seed.
func DefaultParams() Params {
	return Params{
		FeedRate:   0.037,
		KillRate:   0.06,
		DiffusionA: 0.2,
		DiffusionB: 0.1,
		TimeStep:   1.0,
	}
}

// Validate checks that every coefficient is in a sane range.
func (p Params) Validate() error {
	if p.DiffusionA <= 0 {
		return fmt.Errorf("react: diffusionA %v must be positive", p.DiffusionA)
	}
	if p.DiffusionB <= 0 {
		return fmt.Errorf("react: diffusionB %v must be positive", p.DiffusionB)
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("react: time step %v must be positive", p.TimeStep)
	}
	if p.FeedRate < 0 {
		return fmt.Errorf("react: feed rate %v must not be negative", p.FeedRate)
	}
	if p.KillRate < 0 {
		return fmt.Errorf("react: kill rate %v must not be negative", p.KillRate)
	}
	return nil
}

// Stable reports whether the explicit Euler step passes the stability
// screen for these coefficients.
func (p Params) Stable() bool {
	d := p.DiffusionA
	if p.DiffusionB > d {
		d = p.DiffusionB
	}
	return p.TimeStep*d <= maxStableStep
}

// Stepper advances a field one time step at a time. It owns the output
// buffers of the double-buffered update: each step reads the field's
// current arrays, writes into the scratch arrays, then swaps them in.
// A Stepper is not safe for concurrent use.
type Stepper struct {
	p     Params
	nextA []float64
	nextB []float64
}

// NewStepper returns a stepper for the given coefficients.
func NewStepper(p Params) *Stepper {
	return &Stepper{p: p}
}

// Params returns the coefficients the stepper was built with.
func (s *Stepper) Params() Params { return s.p }

// Step advances the field by one explicit Euler step. Only interior cells
// are updated; the outermost layer keeps its value (fixed boundary, not
// wrap-around). Both chemicals are clamped to [0,1] afterwards.
func (s *Stepper) Step(f *field.Field) {
	n := f.Len()
	if len(s.nextA) != n {
		s.nextA = make([]float64, n)
		s.nextB = make([]float64, n)
	}
	// Boundary cells carry over unchanged.
	copy(s.nextA, f.A)
	copy(s.nextB, f.B)

	a, b := f.A, f.B
	p := s.p
	// Neighbor strides in the flat array.
	sx := f.Ny * f.Nz
	sy := f.Nz
	sz := 1

	for i := 1; i < f.Nx-1; i++ {
		for j := 1; j < f.Ny-1; j++ {
			row := (i*f.Ny + j) * f.Nz
			for k := 1; k < f.Nz-1; k++ {
				c := row + k
				ac := a[c]
				bc := b[c]

				lapA := a[c+sx] + a[c-sx] + a[c+sy] + a[c-sy] + a[c+sz] + a[c-sz] - 6*ac
				lapB := b[c+sx] + b[c-sx] + b[c+sy] + b[c-sy] + b[c+sz] + b[c-sz] - 6*bc

				r := ac * bc * bc
				na := ac + p.TimeStep*(p.DiffusionA*lapA-r+p.FeedRate*(1-ac))
				nb := bc + p.TimeStep*(p.DiffusionB*lapB+r-(p.KillRate+p.FeedRate)*bc)

				s.nextA[c] = clamp01(na)
				s.nextB[c] = clamp01(nb)
			}
		}
	}

	f.A, s.nextA = s.nextA, f.A
	f.B, s.nextB = s.nextB, f.B
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
