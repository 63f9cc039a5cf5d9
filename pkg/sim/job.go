package sim

import (
	"context"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/morphogen/pkg/mesh"
)

// Job bundles everything the script and config-file front-ends produce
// for one growth run: a name for output files, the simulation
// configuration and the world box to grow into.
type Job struct {
	Name   string
	Config Config
	Bounds sdf.Box3
}

// Run executes the job against the given sink.
func (j Job) Run(ctx context.Context, sink mesh.Sink) error {
	d, err := New(j.Config, BoxTarget(j.Bounds), sink)
	if err != nil {
		return err
	}
	return d.Run(ctx)
}
