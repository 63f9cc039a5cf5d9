// Package field holds the dense two-chemical scalar grid the
// reaction-diffusion simulation runs on.
package field

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
)

// MinResolution is the smallest usable axis resolution. Marching cubes
// needs at least one full cell, so every axis must have two samples.
const MinResolution = 2

// Field is a pair of same-shaped dense 3D scalar arrays (chemical A and
// chemical B) plus the world-space box the grid samples. Values live in
// row-major order with x outermost: index = (i*Ny + j)*Nz + k.
type Field struct {
	Nx, Ny, Nz int
	A, B       []float64
	Bounds     sdf.Box3
}

// New allocates a grid with A filled to 1.0 and B to 0.0, the initial
// condition of the Gray-Scott system. The grid is never resized after
// construction.
func New(nx, ny, nz int, bounds sdf.Box3) (*Field, error) {
	if nx < MinResolution || ny < MinResolution || nz < MinResolution {
		return nil, fmt.Errorf("field: resolution %dx%dx%d below minimum %d per axis",
			nx, ny, nz, MinResolution)
	}
	n := nx * ny * nz
	f := &Field{
		Nx:     nx,
		Ny:     ny,
		Nz:     nz,
		A:      make([]float64, n),
		B:      make([]float64, n),
		Bounds: bounds,
	}
	for i := range f.A {
		f.A[i] = 1.0
	}
	return f, nil
}

// Len returns the number of cells.
func (f *Field) Len() int { return f.Nx * f.Ny * f.Nz }

// Index returns the linear slice index for grid coordinates (i, j, k).
func (f *Field) Index(i, j, k int) int {
	return (i*f.Ny+j)*f.Nz + k
}

// Coords is the inverse of Index.
func (f *Field) Coords(idx int) (i, j, k int) {
	k = idx % f.Nz
	idx /= f.Nz
	j = idx % f.Ny
	i = idx / f.Ny
	return i, j, k
}

// Clamp restricts grid coordinates to the valid range. Seed patterns use
// this instead of failing on computed indices that land outside the grid.
func (f *Field) Clamp(i, j, k int) (int, int, int) {
	return clampAxis(i, f.Nx), clampAxis(j, f.Ny), clampAxis(k, f.Nz)
}

func clampAxis(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
