// Package jobfile loads growth jobs from TOML configuration files, the
// non-scripted alternative to the Lisp front-end. A file declares one or
// more [[job]] tables; omitted keys fall back to the simulator defaults.
package jobfile

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/morphogen/pkg/seed"
	"github.com/chazu/morphogen/pkg/sim"
)

// Optional keys are pointers so an absent key is distinguishable from an
// explicit zero.
type jobSpec struct {
	Name       string   `toml:"name"`
	Resolution *int     `toml:"resolution"`
	Iterations *int     `toml:"iterations"`
	FeedRate   *float64 `toml:"feed_rate"`
	KillRate   *float64 `toml:"kill_rate"`
	DiffusionA *float64 `toml:"diffusion_a"`
	DiffusionB *float64 `toml:"diffusion_b"`
	TimeStep   *float64 `toml:"time_step"`
	Threshold  *float64 `toml:"threshold"`
	Preview    *bool    `toml:"preview"`

	Seed   *seedSpec   `toml:"seed"`
	Bounds *boundsSpec `toml:"bounds"`
}

type seedSpec struct {
	Pattern   string `toml:"pattern"`
	Axis      string `toml:"axis"`
	Thickness *int   `toml:"thickness"`
	Count     *int   `toml:"count"`
	RNGSeed   *int64 `toml:"rng_seed"`
}

type boundsSpec struct {
	Min [3]float64 `toml:"min"`
	Max [3]float64 `toml:"max"`
}

type doc struct {
	Jobs []jobSpec `toml:"job"`
}

// Load reads and parses a TOML job file.
func Load(path string) ([]sim.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jobfile: %w", err)
	}
	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("jobfile: %s: %w", path, err)
	}
	return jobs, nil
}

// Parse decodes TOML job declarations and validates every job. A file
// with no [[job]] tables is an error; an empty run is never what the
// caller wanted.
func Parse(data []byte) ([]sim.Job, error) {
	var d doc
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if len(d.Jobs) == 0 {
		return nil, fmt.Errorf("no [[job]] tables declared")
	}

	jobs := make([]sim.Job, 0, len(d.Jobs))
	for i, spec := range d.Jobs {
		job, err := spec.toJob()
		if err != nil {
			if spec.Name != "" {
				return nil, fmt.Errorf("job %q: %w", spec.Name, err)
			}
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s jobSpec) toJob() (sim.Job, error) {
	if s.Name == "" {
		return sim.Job{}, fmt.Errorf("missing name")
	}

	cfg := sim.Default()
	if s.Resolution != nil {
		cfg.Resolution = *s.Resolution
	}
	if s.Iterations != nil {
		cfg.Iterations = *s.Iterations
	}
	if s.FeedRate != nil {
		cfg.FeedRate = *s.FeedRate
	}
	if s.KillRate != nil {
		cfg.KillRate = *s.KillRate
	}
	if s.DiffusionA != nil {
		cfg.DiffusionA = *s.DiffusionA
	}
	if s.DiffusionB != nil {
		cfg.DiffusionB = *s.DiffusionB
	}
	if s.TimeStep != nil {
		cfg.TimeStep = *s.TimeStep
	}
	if s.Threshold != nil {
		cfg.Threshold = *s.Threshold
	}
	if s.Preview != nil {
		cfg.Preview = *s.Preview
	}

	if s.Seed != nil {
		pat, err := s.Seed.toPattern()
		if err != nil {
			return sim.Job{}, err
		}
		cfg.Seed = pat
	}

	bounds := sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	if s.Bounds != nil {
		bounds = sdf.Box3{
			Min: v3.Vec{X: s.Bounds.Min[0], Y: s.Bounds.Min[1], Z: s.Bounds.Min[2]},
			Max: v3.Vec{X: s.Bounds.Max[0], Y: s.Bounds.Max[1], Z: s.Bounds.Max[2]},
		}
	}

	if err := cfg.Validate(); err != nil {
		return sim.Job{}, err
	}
	if _, err := sim.BoxTarget(bounds).Bounds(); err != nil {
		return sim.Job{}, fmt.Errorf("bounds: %w", err)
	}

	return sim.Job{Name: s.Name, Config: cfg, Bounds: bounds}, nil
}

// toPattern resolves the pattern name. The legacy aliases mitosis, coral
// and neural name the same shapes with their classic defaults.
func (s seedSpec) toPattern() (seed.Pattern, error) {
	switch s.Pattern {
	case "", "point", "mitosis":
		return seed.Point(), nil

	case "slab", "coral":
		axis := seed.AxisZ
		thickness := 2
		if s.Pattern == "coral" {
			axis = seed.AxisX
		}
		switch s.Axis {
		case "":
		case "x":
			axis = seed.AxisX
		case "y":
			axis = seed.AxisY
		case "z":
			axis = seed.AxisZ
		default:
			return seed.Pattern{}, fmt.Errorf("seed: invalid axis %q, expected x, y, or z", s.Axis)
		}
		if s.Thickness != nil {
			if *s.Thickness < 1 {
				return seed.Pattern{}, fmt.Errorf("seed: thickness %d, need at least 1", *s.Thickness)
			}
			thickness = *s.Thickness
		}
		return seed.Slab(axis, thickness), nil

	case "scattered", "neural":
		count := seed.DefaultScatterCount
		if s.Count != nil {
			if *s.Count < 1 {
				return seed.Pattern{}, fmt.Errorf("seed: count %d, need at least 1", *s.Count)
			}
			count = *s.Count
		}
		var rngSeed int64
		if s.RNGSeed != nil {
			rngSeed = *s.RNGSeed
		}
		return seed.Scattered(count, rngSeed), nil
	}

	return seed.Pattern{}, fmt.Errorf("seed: unknown pattern %q, expected point, slab, scattered, or an alias mitosis/coral/neural", s.Pattern)
}
