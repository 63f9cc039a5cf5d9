package field_test

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/morphogen/pkg/field"
)

func unitBox() sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
}

func TestNewInitialState(t *testing.T) {
	f, err := field.New(4, 5, 6, unitBox())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.Len() != 4*5*6 {
		t.Fatalf("Len = %d, want %d", f.Len(), 4*5*6)
	}
	if len(f.A) != f.Len() || len(f.B) != f.Len() {
		t.Fatalf("array lengths %d/%d, want %d", len(f.A), len(f.B), f.Len())
	}
	for i := range f.A {
		if f.A[i] != 1.0 {
			t.Fatalf("A[%d] = %v, want 1.0", i, f.A[i])
		}
		if f.B[i] != 0.0 {
			t.Fatalf("B[%d] = %v, want 0.0", i, f.B[i])
		}
	}
}

func TestNewRejectsSmallResolution(t *testing.T) {
	for _, res := range [][3]int{{1, 4, 4}, {4, 1, 4}, {4, 4, 1}, {0, 0, 0}} {
		_, err := field.New(res[0], res[1], res[2], unitBox())
		if err == nil {
			t.Errorf("New(%v) succeeded, want error", res)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	f, err := field.New(3, 4, 5, unitBox())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	seen := make(map[int]bool)
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			for k := 0; k < f.Nz; k++ {
				idx := f.Index(i, j, k)
				if idx < 0 || idx >= f.Len() {
					t.Fatalf("Index(%d,%d,%d) = %d out of range", i, j, k, idx)
				}
				if seen[idx] {
					t.Fatalf("Index(%d,%d,%d) = %d not unique", i, j, k, idx)
				}
				seen[idx] = true
				ri, rj, rk := f.Coords(idx)
				if ri != i || rj != j || rk != k {
					t.Fatalf("Coords(%d) = (%d,%d,%d), want (%d,%d,%d)", idx, ri, rj, rk, i, j, k)
				}
			}
		}
	}
}

func TestClamp(t *testing.T) {
	f, err := field.New(4, 4, 4, unitBox())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	i, j, k := f.Clamp(-3, 2, 9)
	if i != 0 || j != 2 || k != 3 {
		t.Fatalf("Clamp(-3,2,9) = (%d,%d,%d), want (0,2,3)", i, j, k)
	}
}
