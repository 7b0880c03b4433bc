package uvmesh

import (
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SelectedFaces returns the faces flagged selected, in index order. A nil
// mesh has none.
func (m *Mesh) SelectedFaces() []*Face {
	if m == nil {
		return nil
	}
	var faces []*Face
	for i := range m.Faces {
		if m.Faces[i].Select {
			faces = append(faces, &m.Faces[i])
		}
	}
	return faces
}

// SelectedLoops returns the UV-selected loops of selected faces.
func (m *Mesh) SelectedLoops() []*Loop {
	var loops []*Loop
	for _, f := range m.SelectedFaces() {
		for i := range f.Loops {
			if f.Loops[i].Select {
				loops = append(loops, &f.Loops[i])
			}
		}
	}
	return loops
}

// SelectedUVVerts returns the distinct vertices that have a UV-selected
// loop in a selected face, in ascending id order.
func (m *Mesh) SelectedUVVerts() []VertexID {
	seen := make(map[VertexID]bool)
	for _, l := range m.SelectedLoops() {
		seen[l.Vert] = true
	}
	ids := make([]VertexID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectedUVFaces returns the selected faces whose loops are all
// UV-selected.
func (m *Mesh) SelectedUVFaces() []*Face {
	var faces []*Face
	for _, f := range m.SelectedFaces() {
		if f.SelectedLoopCount() == len(f.Loops) {
			faces = append(faces, f)
		}
	}
	return faces
}

// VertToUVs maps each vertex to the UVs of all loops using it, in face
// order. Vertices on a seam map to more than one distinct UV.
func (m *Mesh) VertToUVs() map[VertexID][]v2.Vec {
	out := make(map[VertexID][]v2.Vec)
	for i := range m.Faces {
		for _, l := range m.Faces[i].Loops {
			out[l.Vert] = append(out[l.Vert], l.UV)
		}
	}
	return out
}

// SeamVerts counts vertices whose loops carry more than one distinct UV.
func (m *Mesh) SeamVerts() int {
	n := 0
	for _, uvs := range m.VertToUVs() {
		for _, uv := range uvs[1:] {
			if uv != uvs[0] {
				n++
				break
			}
		}
	}
	return n
}

// SelectAll selects every vertex, face and loop.
func (m *Mesh) SelectAll() {
	if m == nil {
		return
	}
	for i := range m.Verts {
		m.Verts[i].Select = true
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		f.Select = true
		for j := range f.Loops {
			f.Loops[j].Select = true
		}
	}
}

// DeselectAll clears every selection flag.
func (m *Mesh) DeselectAll() {
	if m == nil {
		return
	}
	for i := range m.Verts {
		m.Verts[i].Select = false
	}
	for i := range m.Faces {
		m.Faces[i].Select = false
	}
	m.DeselectAllUV()
}

// DeselectAllUV clears the UV selection of every loop.
func (m *Mesh) DeselectAllUV() {
	if m == nil {
		return
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		for j := range f.Loops {
			f.Loops[j].Select = false
		}
	}
}

// SelectFaces selects the given faces, their vertices and all of their
// loops. Out-of-range ids are ignored; the number selected is returned.
func (m *Mesh) SelectFaces(ids ...FaceID) int {
	if m == nil {
		return 0
	}
	n := 0
	for _, id := range ids {
		f := m.Face(id)
		if f == nil {
			continue
		}
		f.Select = true
		for j := range f.Loops {
			f.Loops[j].Select = true
			if v := m.Vertex(f.Loops[j].Vert); v != nil {
				v.Select = true
			}
		}
		n++
	}
	return n
}
