// Package mc extracts a triangulated isosurface from a sampled 3D scalar
// field using marching cubes. The output is a non-indexed triangle soup in
// the grid's normalized [0,1]^3 space.
package mc

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// cornerOffset maps the 8 cube corner indices to cell-relative grid
// offsets. Corners 0-3 ring the y=0 face, 4-7 the y=1 face; the numbering
// matches the edge and triangulation tables.
var cornerOffset = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1},
	{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1},
}

// edgeCorner maps the 12 cube edge indices to their corner pairs.
var edgeCorner = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// edgeTable[config] has bit e set when edge e is crossed by the surface.
// An edge is crossed exactly when its two corners fall on opposite sides
// of the threshold, so the table is derived from corner incidence.
var edgeTable [256]uint16

func init() {
	for config := 0; config < 256; config++ {
		for e, c := range edgeCorner {
			if (config>>c[0])&1 != (config>>c[1])&1 {
				edgeTable[config] |= 1 << e
			}
		}
	}
}

// Extract runs marching cubes over a nx*ny*nz scalar array (row-major,
// x outermost) and returns the iso-threshold surface as independent
// triangles. Corner bit b of a cell's configuration is set when the
// corner's value exceeds iso. Cells fully above or fully below the
// threshold emit nothing. Degenerate slivers from near-coincident
// crossing points are not filtered.
//
// Vertex positions are scaled by 1/(max(nx,ny,nz)-1) so the full grid
// spans the unit cube; Extract never mutates vals.
func Extract(vals []float64, nx, ny, nz int, iso float64) []*sdf.Triangle3 {
	if nx < 2 || ny < 2 || nz < 2 {
		return nil
	}
	maxN := nx
	if ny > maxN {
		maxN = ny
	}
	if nz > maxN {
		maxN = nz
	}
	cellSize := 1.0 / float64(maxN-1)

	idx := func(i, j, k int) int { return (i*ny+j)*nz + k }

	var tris []*sdf.Triangle3
	var corner [8]float64

	for x := 0; x < nx-1; x++ {
		for y := 0; y < ny-1; y++ {
			for z := 0; z < nz-1; z++ {
				config := 0
				for c, off := range cornerOffset {
					corner[c] = vals[idx(x+off[0], y+off[1], z+off[2])]
					if corner[c] > iso {
						config |= 1 << c
					}
				}
				if config == 0 || config == 255 {
					continue
				}

				edges := triTable[config]
				for t := 0; t+2 < len(edges); t += 3 {
					tri := &sdf.Triangle3{
						edgeVertex(edges[t], x, y, z, iso, cellSize, &corner),
						edgeVertex(edges[t+1], x, y, z, iso, cellSize, &corner),
						edgeVertex(edges[t+2], x, y, z, iso, cellSize, &corner),
					}
					tris = append(tris, tri)
				}
			}
		}
	}
	return tris
}

// edgeVertex interpolates the surface crossing point on a cell edge.
func edgeVertex(edge, x, y, z int, iso, cellSize float64, corner *[8]float64) v3.Vec {
	c1 := edgeCorner[edge][0]
	c2 := edgeCorner[edge][1]
	v1 := corner[c1]
	v2 := corner[c2]

	t := 0.5
	if v1 != v2 {
		t = (iso - v1) / (v2 - v1)
	}

	o1 := cornerOffset[c1]
	o2 := cornerOffset[c2]
	p := v3.Vec{
		X: float64(x+o1[0]) + t*float64(o2[0]-o1[0]),
		Y: float64(y+o1[1]) + t*float64(o2[1]-o1[1]),
		Z: float64(z+o1[2]) + t*float64(o2[2]-o1[2]),
	}
	return p.MulScalar(cellSize)
}
