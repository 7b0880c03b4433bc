package uvmesh

import (
	"fmt"
	"math"

	"github.com/chazu/texeltools/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultWeldTolerance merges kernel vertices closer than this.
const DefaultWeldTolerance = 1e-5

// atlasTiles is the number of tiles per row and column of the box
// projection atlas. Six directions fill two rows of three.
const atlasTiles = 3

// tilePadding keeps projected islands off the tile borders.
const tilePadding = 0.05

// FromTriangles welds a kernel triangle soup into a shared-vertex mesh and
// assigns box-projected UVs: each triangle is projected along the axis its
// normal points at most, into one of six atlas tiles (+X, -X, +Y, -Y, +Z,
// -Z). Triangles facing the same direction and sharing welded vertices end
// up with coincident UVs, so each flat side becomes one island.
func FromTriangles(name string, m *kernel.Mesh, weldTolerance float64) (*Object, error) {
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("uvmesh: %s: no triangles to import", name)
	}
	if weldTolerance <= 0 {
		weldTolerance = DefaultWeldTolerance
	}

	mesh := NewMesh()
	welded := make(map[[3]int64]VertexID)
	weld := func(p [3]float64) VertexID {
		k := [3]int64{
			int64(math.Round(p[0] / weldTolerance)),
			int64(math.Round(p[1] / weldTolerance)),
			int64(math.Round(p[2] / weldTolerance)),
		}
		if id, ok := welded[k]; ok {
			return id
		}
		id := mesh.AddVertex(v3.Vec{X: p[0], Y: p[1], Z: p[2]})
		welded[k] = id
		return id
	}

	lo, size := extent(m)

	for t := 0; t < m.TriangleCount(); t++ {
		idx := m.Triangle(t)
		ids := [3]VertexID{weld(m.Position(idx[0])), weld(m.Position(idx[1])), weld(m.Position(idx[2]))}
		if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
			continue // collapsed by welding
		}
		pts := [3]v3.Vec{mesh.Verts[ids[0]].Co, mesh.Verts[ids[1]].Co, mesh.Verts[ids[2]].Co}
		n := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
		if n.Length() == 0 {
			nn := m.Normal(idx[0])
			n = v3.Vec{X: nn[0], Y: nn[1], Z: nn[2]}
		}
		tile := dominantTile(n)
		uvs := make([]v2.Vec, 3)
		for i, p := range pts {
			uvs[i] = project(p, tile, lo, size)
		}
		if _, err := mesh.AddFace(ids[:], uvs); err != nil {
			return nil, fmt.Errorf("uvmesh: %s: triangle %d: %w", name, t, err)
		}
	}
	if mesh.IsEmpty() {
		return nil, fmt.Errorf("uvmesh: %s: every triangle collapsed while welding", name)
	}
	return &Object{Name: name, Mesh: mesh}, nil
}

// extent returns the minimum corner and the largest side of the soup's
// bounding box.
func extent(m *kernel.Mesh) (v3.Vec, float64) {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(uint32(i))
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], p[a])
			hi[a] = math.Max(hi[a], p[a])
		}
	}
	size := math.Max(hi[0]-lo[0], math.Max(hi[1]-lo[1], hi[2]-lo[2]))
	if size == 0 {
		size = 1
	}
	return v3.Vec{X: lo[0], Y: lo[1], Z: lo[2]}, size
}

// dominantTile maps a normal to a tile index: 0/1 = +X/-X, 2/3 = +Y/-Y,
// 4/5 = +Z/-Z.
func dominantTile(n v3.Vec) int {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		if n.X >= 0 {
			return 0
		}
		return 1
	case ay >= az:
		if n.Y >= 0 {
			return 2
		}
		return 3
	default:
		if n.Z >= 0 {
			return 4
		}
		return 5
	}
}

func project(p v3.Vec, tile int, lo v3.Vec, size float64) v2.Vec {
	rel := p.Sub(lo).DivScalar(size)
	var local v2.Vec
	switch tile / 2 {
	case 0:
		local = v2.Vec{X: rel.Y, Y: rel.Z}
	case 1:
		local = v2.Vec{X: rel.X, Y: rel.Z}
	default:
		local = v2.Vec{X: rel.X, Y: rel.Y}
	}
	col := float64(tile % atlasTiles)
	row := float64(tile / atlasTiles)
	scale := 1 - 2*tilePadding
	return v2.Vec{
		X: (col + tilePadding + local.X*scale) / atlasTiles,
		Y: (row + tilePadding + local.Y*scale) / atlasTiles,
	}
}
