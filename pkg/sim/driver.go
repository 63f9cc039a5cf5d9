// Package sim orchestrates a reaction-diffusion growth run: it validates
// the configuration, resolves the target bounds, seeds the grid, steps
// the system, and emits extracted meshes to the caller's sink.
package sim

import (
	"context"
	"fmt"

	"github.com/chazu/morphogen/pkg/field"
	"github.com/chazu/morphogen/pkg/mc"
	"github.com/chazu/morphogen/pkg/mesh"
	"github.com/chazu/morphogen/pkg/react"
)

// PreviewInterval is the step cadence of intermediate mesh emissions when
// previewing is enabled.
const PreviewInterval = 10

// State names the driver's position in its lifecycle.
type State int

const (
	// StateSeeded: grid allocated and seeded, no step taken yet.
	StateSeeded State = iota
	// StateStepping: inside the step loop.
	StateStepping
	// StatePreviewEmit: extracting and emitting an intermediate mesh.
	StatePreviewEmit
	// StateFinished: final mesh emitted; the driver is spent.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateStepping:
		return "stepping"
	case StatePreviewEmit:
		return "preview-emit"
	case StateFinished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Driver runs one simulation to completion. It exclusively owns its grid;
// emitted soups are independent values. A Driver is single-use and not
// safe for concurrent use.
type Driver struct {
	cfg     Config
	grid    *field.Field
	stepper *react.Stepper
	sink    mesh.Sink
	state   State
}

// New validates the configuration and the collaborators, then allocates
// and seeds the grid. Nothing is allocated when validation fails.
func New(cfg Config, target Target, sink mesh.Sink) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: no target supplied", ErrInvalidTarget)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: no mesh sink supplied", ErrInvalidTarget)
	}
	bounds, err := target.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	n := cfg.Resolution
	grid, err := field.New(n, n, n, bounds)
	if err != nil {
		// Resolution was validated above; reaching this means the two
		// checks drifted apart.
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Seed.Apply(grid)

	return &Driver{
		cfg:     cfg,
		grid:    grid,
		stepper: react.NewStepper(cfg.Params()),
		sink:    sink,
		state:   StateSeeded,
	}, nil
}

// State reports the driver's lifecycle position.
func (d *Driver) State() State { return d.state }

// Run steps the simulation Iterations times and emits the final mesh.
// With previewing enabled it also emits an intermediate mesh every
// PreviewInterval steps. The context is checked between steps, so
// cancelling aborts promptly and leaves the grid valid but incomplete.
// Run can only be called once per driver.
func (d *Driver) Run(ctx context.Context) error {
	if d.state != StateSeeded {
		return fmt.Errorf("sim: driver already used (state %s)", d.state)
	}
	d.state = StateStepping

	for i := 0; i < d.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.stepper.Step(d.grid)

		if d.cfg.Preview && i%PreviewInterval == 0 {
			d.state = StatePreviewEmit
			if err := d.emit(); err != nil {
				return err
			}
			d.state = StateStepping
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.emit(); err != nil {
		return err
	}
	d.state = StateFinished
	return nil
}

// emit extracts the B field's isosurface, maps it into the target box and
// hands it to the sink.
func (d *Driver) emit() error {
	tris := mc.Extract(d.grid.B, d.grid.Nx, d.grid.Ny, d.grid.Nz, d.cfg.Threshold)
	world := mesh.MapToWorld(tris, d.grid.Bounds)
	if err := d.sink.Emit(world); err != nil {
		return fmt.Errorf("sim: mesh sink: %w", err)
	}
	return nil
}
