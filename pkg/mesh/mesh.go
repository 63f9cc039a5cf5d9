// Package mesh carries triangle soups from the isosurface extractor to
// their consumers: it maps normalized-space triangles into world space,
// converts them into a flat render-friendly mesh, and provides sinks the
// simulation driver emits to.
package mesh

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering or export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which growth job this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// FromTriangles flattens a triangle soup into a Mesh. The soup is
// non-indexed, so each triangle contributes three fresh vertices carrying
// the face normal.
func FromTriangles(name string, tris []*sdf.Triangle3) *Mesh {
	numVerts := len(tris) * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range tris {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Name:     name,
	}
}

// MapToWorld rescales a normalized-space soup into the world box,
// component-wise: world = box.Min + local * box.Size(). The input is left
// untouched; the result is an independent soup owned by the caller.
func MapToWorld(tris []*sdf.Triangle3, box sdf.Box3) []*sdf.Triangle3 {
	size := box.Size()
	out := make([]*sdf.Triangle3, len(tris))
	for i, tri := range tris {
		mapped := &sdf.Triangle3{}
		for j := 0; j < 3; j++ {
			mapped[j] = box.Min.Add(tri[j].Mul(size))
		}
		out[i] = mapped
	}
	return out
}

// Centroid returns the mean of all soup vertices, or the zero vector for
// an empty soup.
func Centroid(tris []*sdf.Triangle3) v3.Vec {
	if len(tris) == 0 {
		return v3.Vec{}
	}
	var sum v3.Vec
	for _, tri := range tris {
		for _, v := range tri {
			sum = sum.Add(v)
		}
	}
	return sum.DivScalar(float64(len(tris) * 3))
}
