package react_test

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"pgregory.net/rapid"

	"github.com/chazu/morphogen/pkg/field"
	"github.com/chazu/morphogen/pkg/react"
	"github.com/chazu/morphogen/pkg/seed"
)

// testingT is the slice of testing.T that rapid.T also implements, so
// helpers can be shared between plain and property-based tests.
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newField(t testingT, n int) *field.Field {
	t.Helper()
	f, err := field.New(n, n, n, sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}})
	if err != nil {
		t.Fatalf("field.New failed: %v", err)
	}
	return f
}

func TestValidateRejectsBadParams(t *testing.T) {
	cases := map[string]react.Params{
		"zero diffusionA":     {DiffusionA: 0, DiffusionB: 0.1, TimeStep: 1},
		"negative diffusionB": {DiffusionA: 0.2, DiffusionB: -0.1, TimeStep: 1},
		"zero time step":      {DiffusionA: 0.2, DiffusionB: 0.1, TimeStep: 0},
		"negative feed":       {DiffusionA: 0.2, DiffusionB: 0.1, TimeStep: 1, FeedRate: -0.01},
		"negative kill":       {DiffusionA: 0.2, DiffusionB: 0.1, TimeStep: 1, KillRate: -0.01},
	}
	for name, p := range cases {
		if err := p.Validate(); err == nil {
			t.Errorf("%s: Validate succeeded, want error", name)
		}
	}
	if err := react.DefaultParams().Validate(); err != nil {
		t.Errorf("default params rejected: %v", err)
	}
}

func TestStabilityScreen(t *testing.T) {
	if !react.DefaultParams().Stable() {
		t.Error("default params flagged unstable")
	}
	p := react.DefaultParams()
	p.TimeStep = 10
	if p.Stable() {
		t.Error("dt=10, Da=0.2 passed the stability screen")
	}
}

func TestClampInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(4, 10).Draw(rt, "res")
		p := react.Params{
			FeedRate:   rapid.Float64Range(0, 0.1).Draw(rt, "feed"),
			KillRate:   rapid.Float64Range(0, 0.1).Draw(rt, "kill"),
			DiffusionA: rapid.Float64Range(0.01, 0.5).Draw(rt, "da"),
			DiffusionB: rapid.Float64Range(0.01, 0.5).Draw(rt, "db"),
			TimeStep:   rapid.Float64Range(0.1, 1.0).Draw(rt, "dt"),
		}
		f := newField(rt, n)
		seed.Scattered(5, rapid.Int64().Draw(rt, "seed")).Apply(f)

		s := react.NewStepper(p)
		for step := 0; step < 5; step++ {
			s.Step(f)
		}
		for i := range f.A {
			if f.A[i] < 0 || f.A[i] > 1 || math.IsNaN(f.A[i]) {
				rt.Fatalf("A[%d] = %v outside [0,1]", i, f.A[i])
			}
			if f.B[i] < 0 || f.B[i] > 1 || math.IsNaN(f.B[i]) {
				rt.Fatalf("B[%d] = %v outside [0,1]", i, f.B[i])
			}
		}
	})
}

func TestBoundaryInvariant(t *testing.T) {
	const n = 8
	f := newField(t, n)
	seed.Point().Apply(f)
	// Make the boundary layer recognizable.
	for idx := range f.A {
		i, j, k := f.Coords(idx)
		if i == 0 || i == n-1 || j == 0 || j == n-1 || k == 0 || k == n-1 {
			f.A[idx] = 0.25
			f.B[idx] = 0.75
		}
	}

	s := react.NewStepper(react.DefaultParams())
	for step := 0; step < 20; step++ {
		s.Step(f)
	}

	for idx := range f.A {
		i, j, k := f.Coords(idx)
		if i == 0 || i == n-1 || j == 0 || j == n-1 || k == 0 || k == n-1 {
			if f.A[idx] != 0.25 || f.B[idx] != 0.75 {
				t.Fatalf("boundary cell (%d,%d,%d) modified: A=%v B=%v", i, j, k, f.A[idx], f.B[idx])
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	run := func() *field.Field {
		f := newField(t, 10)
		seed.Scattered(8, 99).Apply(f)
		s := react.NewStepper(react.DefaultParams())
		for step := 0; step < 25; step++ {
			s.Step(f)
		}
		return f
	}
	f1 := run()
	f2 := run()
	for i := range f1.A {
		if f1.A[i] != f2.A[i] || f1.B[i] != f2.B[i] {
			t.Fatalf("runs diverged at index %d", i)
		}
	}
}

// With no seed the reaction term is zero everywhere, so B must stay zero
// while the feed term relaxes A toward 1.
func TestEmptySeedNoOp(t *testing.T) {
	const n = 8
	f := newField(t, n)
	// Perturb interior A below rest so the relaxation is observable.
	for idx := range f.A {
		i, j, k := f.Coords(idx)
		if i > 0 && i < n-1 && j > 0 && j < n-1 && k > 0 && k < n-1 {
			f.A[idx] = 0.5
		}
	}

	s := react.NewStepper(react.DefaultParams())
	for step := 0; step < 100; step++ {
		s.Step(f)
	}

	for i, v := range f.B {
		if v != 0 {
			t.Fatalf("B[%d] = %v, want 0 with no seed", i, v)
		}
	}
	center := f.Index(n/2, n/2, n/2)
	if f.A[center] <= 0.5 {
		t.Fatalf("A center = %v, did not relax toward 1", f.A[center])
	}
}

// naiveStep is a direct transliteration of the update rule used as a
// reference against the stride-based implementation.
func naiveStep(f *field.Field, p react.Params) {
	nextA := make([]float64, f.Len())
	nextB := make([]float64, f.Len())
	copy(nextA, f.A)
	copy(nextB, f.B)
	at := func(s []float64, i, j, k int) float64 { return s[f.Index(i, j, k)] }
	clamp := func(v float64) float64 { return math.Min(1, math.Max(0, v)) }

	for i := 1; i < f.Nx-1; i++ {
		for j := 1; j < f.Ny-1; j++ {
			for k := 1; k < f.Nz-1; k++ {
				lapA := at(f.A, i+1, j, k) + at(f.A, i-1, j, k) +
					at(f.A, i, j+1, k) + at(f.A, i, j-1, k) +
					at(f.A, i, j, k+1) + at(f.A, i, j, k-1) - 6*at(f.A, i, j, k)
				lapB := at(f.B, i+1, j, k) + at(f.B, i-1, j, k) +
					at(f.B, i, j+1, k) + at(f.B, i, j-1, k) +
					at(f.B, i, j, k+1) + at(f.B, i, j, k-1) - 6*at(f.B, i, j, k)
				a := at(f.A, i, j, k)
				b := at(f.B, i, j, k)
				r := a * b * b
				nextA[f.Index(i, j, k)] = clamp(a + p.TimeStep*(p.DiffusionA*lapA-r+p.FeedRate*(1-a)))
				nextB[f.Index(i, j, k)] = clamp(b + p.TimeStep*(p.DiffusionB*lapB+r-(p.KillRate+p.FeedRate)*b))
			}
		}
	}
	f.A = nextA
	f.B = nextB
}

func TestStepMatchesReference(t *testing.T) {
	p := react.DefaultParams()
	f1 := newField(t, 9)
	f2 := newField(t, 9)
	seed.Scattered(6, 3).Apply(f1)
	seed.Scattered(6, 3).Apply(f2)

	s := react.NewStepper(p)
	for step := 0; step < 10; step++ {
		s.Step(f1)
		naiveStep(f2, p)
	}
	for i := range f1.A {
		if f1.A[i] != f2.A[i] || f1.B[i] != f2.B[i] {
			t.Fatalf("stride implementation diverged from reference at index %d: A %v vs %v, B %v vs %v",
				i, f1.A[i], f2.A[i], f1.B[i], f2.B[i])
		}
	}
}
