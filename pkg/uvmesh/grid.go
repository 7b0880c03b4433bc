package uvmesh

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NewGrid builds a flat cols x rows grid of quads in the XY plane with
// shared vertices. Each vertex's UV equals its XY position scaled by
// uvScale, so the whole grid is a single UV island.
func NewGrid(cols, rows int, cellSize, uvScale float64) *Mesh {
	m := NewMesh()
	id := func(c, r int) VertexID { return VertexID(r*(cols+1) + c) }
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			m.AddVertex(v3.Vec{X: float64(c) * cellSize, Y: float64(r) * cellSize})
		}
	}
	uv := func(v VertexID) v2.Vec {
		co := m.Verts[v].Co
		return v2.Vec{X: co.X * uvScale, Y: co.Y * uvScale}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			verts := []VertexID{id(c, r), id(c+1, r), id(c+1, r+1), id(c, r+1)}
			uvs := make([]v2.Vec, len(verts))
			for i, v := range verts {
				uvs[i] = uv(v)
			}
			m.MustAddFace(verts, uvs)
		}
	}
	return m
}

// SplitFaceUVs moves every loop of the given face by offset, detaching it
// from its neighbours in UV space without touching topology. It is how a
// UV seam is cut.
func (m *Mesh) SplitFaceUVs(id FaceID, offset v2.Vec) {
	f := m.Face(id)
	if f == nil {
		return
	}
	for i := range f.Loops {
		f.Loops[i].UV = f.Loops[i].UV.Add(offset)
	}
	m.Revision++
}
