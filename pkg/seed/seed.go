// Package seed writes the initial chemical-B perturbation into a field.
// Without a seed the reaction term A*B*B is zero everywhere and the
// system never leaves its rest state.
package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/chazu/morphogen/pkg/field"
)

// Kind tags a Pattern variant.
type Kind int

const (
	// KindPoint seeds a 3x3x3 block around the grid center, the classic
	// "mitosis" starting condition. A lone cell is below the reaction's
	// survival mass at the default rates and dies out.
	KindPoint Kind = iota
	// KindSlab seeds a thin slab along one axis spanning the full extent
	// of the other two ("coral").
	KindSlab
	// KindScattered seeds pseudo-random interior cells ("neural").
	KindScattered
)

// Axis selects the normal direction of a Slab pattern.
type Axis int

const (
	AxisX Axis = 0
	AxisY Axis = 1
	AxisZ Axis = 2
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// DefaultScatterCount is the scattered-pattern cell count when none is given.
const DefaultScatterCount = 10

// Pattern is an immutable seed configuration. It is a tagged variant:
// only the fields relevant to Kind are meaningful.
type Pattern struct {
	Kind      Kind
	Axis      Axis  // Slab: normal direction
	Thickness int   // Slab: cells along Axis
	Count     int   // Scattered: number of cells
	RNGSeed   int64 // Scattered: PRNG seed for reproducibility
}

// Point returns the center-block pattern.
func Point() Pattern {
	return Pattern{Kind: KindPoint}
}

// Slab returns a slab pattern of the given thickness along the axis.
func Slab(axis Axis, thickness int) Pattern {
	return Pattern{Kind: KindSlab, Axis: axis, Thickness: thickness}
}

// Scattered returns a scattered-point pattern with a deterministic seed.
func Scattered(count int, rngSeed int64) Pattern {
	return Pattern{Kind: KindScattered, Count: count, RNGSeed: rngSeed}
}

// String names the pattern for logs and error messages.
func (p Pattern) String() string {
	switch p.Kind {
	case KindPoint:
		return "point"
	case KindSlab:
		return fmt.Sprintf("slab(axis=%s thickness=%d)", p.Axis, p.Thickness)
	case KindScattered:
		return fmt.Sprintf("scattered(count=%d seed=%d)", p.Count, p.RNGSeed)
	}
	return fmt.Sprintf("unknown(%d)", int(p.Kind))
}

// Apply writes 1.0 into B at the cells selected by the pattern. A is left
// at its rest value. Computed coordinates outside the grid are clamped
// into range rather than rejected, so Apply never fails.
func (p Pattern) Apply(f *field.Field) {
	switch p.Kind {
	case KindSlab:
		p.applySlab(f)
	case KindScattered:
		p.applyScattered(f)
	default:
		ci, cj, ck := f.Nx/2, f.Ny/2, f.Nz/2
		for i := ci - 1; i <= ci+1; i++ {
			for j := cj - 1; j <= cj+1; j++ {
				for k := ck - 1; k <= ck+1; k++ {
					ii, jj, kk := f.Clamp(i, j, k)
					f.B[f.Index(ii, jj, kk)] = 1.0
				}
			}
		}
	}
}

func (p Pattern) applySlab(f *field.Field) {
	axis := p.Axis
	if axis < AxisX || axis > AxisZ {
		axis = AxisX
	}
	thickness := p.Thickness
	if thickness < 1 {
		thickness = 2
	}
	dims := [3]int{f.Nx, f.Ny, f.Nz}
	start := dims[axis] / 2
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			for k := 0; k < f.Nz; k++ {
				c := [3]int{i, j, k}
				if c[axis] < start || c[axis] >= start+thickness {
					continue
				}
				f.B[f.Index(i, j, k)] = 1.0
			}
		}
	}
}

func (p Pattern) applyScattered(f *field.Field) {
	count := p.Count
	if count < 1 {
		count = DefaultScatterCount
	}
	// PCG keyed on the caller's seed so identical configurations
	// reproduce identical fields.
	rng := rand.New(rand.NewPCG(uint64(p.RNGSeed), 0))
	for n := 0; n < count; n++ {
		i := interior(rng, f.Nx)
		j := interior(rng, f.Ny)
		k := interior(rng, f.Nz)
		i, j, k = f.Clamp(i, j, k)
		f.B[f.Index(i, j, k)] = 1.0
	}
}

// interior draws a coordinate in [1, n-2], keeping scattered seeds off the
// fixed boundary layer.
func interior(rng *rand.Rand, n int) int {
	if n <= 2 {
		return n / 2
	}
	return 1 + rng.IntN(n-2)
}
