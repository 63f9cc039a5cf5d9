package sim

import (
	"fmt"

	"github.com/chazu/morphogen/pkg/react"
	"github.com/chazu/morphogen/pkg/seed"
)

// Resolution bounds. The lower bound is what marching cubes needs; the
// upper bound keeps grid memory and step time within reason.
const (
	MinResolution = 2
	MaxResolution = 200
)

// Config is the flat parameter set a caller supplies before a simulation
// starts. The zero value is not usable; start from Default.
type Config struct {
	Resolution int // grid cells per axis
	Iterations int // total simulation steps

	FeedRate   float64
	KillRate   float64
	DiffusionA float64
	DiffusionB float64
	TimeStep   float64

	Threshold float64 // isosurface level in (0,1), applied to chemical B

	Seed    seed.Pattern
	Preview bool // emit intermediate meshes while stepping
}

// Default returns the point-seeded "mitosis" regime at a 50^3 resolution.
func Default() Config {
	p := react.DefaultParams()
	return Config{
		Resolution: 50,
		Iterations: 100,
		FeedRate:   p.FeedRate,
		KillRate:   p.KillRate,
		DiffusionA: p.DiffusionA,
		DiffusionB: p.DiffusionB,
		TimeStep:   p.TimeStep,
		Threshold:  0.5,
		Seed:       seed.Point(),
	}
}

// Params bundles the reaction coefficients for the stepper.
func (c Config) Params() react.Params {
	return react.Params{
		FeedRate:   c.FeedRate,
		KillRate:   c.KillRate,
		DiffusionA: c.DiffusionA,
		DiffusionB: c.DiffusionB,
		TimeStep:   c.TimeStep,
	}
}

// Validate checks every parameter and reports the first problem, wrapped
// in ErrInvalidConfig or ErrUnstable.
func (c Config) Validate() error {
	if c.Resolution < MinResolution || c.Resolution > MaxResolution {
		return fmt.Errorf("%w: resolution %d outside [%d, %d]",
			ErrInvalidConfig, c.Resolution, MinResolution, MaxResolution)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations %d, need at least 1", ErrInvalidConfig, c.Iterations)
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("%w: threshold %v outside (0, 1)", ErrInvalidConfig, c.Threshold)
	}
	p := c.Params()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !p.Stable() {
		return fmt.Errorf("%w: time step %v with diffusion %v/%v",
			ErrUnstable, c.TimeStep, c.DiffusionA, c.DiffusionB)
	}
	return nil
}
