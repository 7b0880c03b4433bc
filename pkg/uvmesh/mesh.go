// Package uvmesh models the data a UV editor exposes for a mesh in edit
// mode: vertices, faces and their per-face loops carrying UV coordinates
// and selection flags. It is the boundary between a host (file loaders,
// the mesh kernel, a scripting front end) and the UV algorithms.
//
// A vertex may carry a different UV in every face that uses it; the UV
// lives on the loop, not on the vertex. Face and loop selection are
// independent flags.
package uvmesh

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertexID indexes Mesh.Verts.
type VertexID int

// FaceID indexes Mesh.Faces.
type FaceID int

// Vertex is a world-space mesh vertex.
type Vertex struct {
	ID     VertexID `json:"id"`
	Co     v3.Vec   `json:"co"`
	Select bool     `json:"select"`
}

// Loop is one corner of a face: the face's own UV at one of its vertices.
type Loop struct {
	Face   FaceID   `json:"face"`
	Vert   VertexID `json:"vert"`
	UV     v2.Vec   `json:"uv"`
	Select bool     `json:"select"` // UV selection, independent of face selection
}

// Face is a polygon with at least three loops in winding order.
type Face struct {
	ID       FaceID `json:"id"`
	Loops    []Loop `json:"loops"`
	Select   bool   `json:"select"`
	Material string `json:"material,omitempty"`
}

// Mesh owns the vertex and face storage of one object.
type Mesh struct {
	Verts []Vertex `json:"verts"`
	Faces []Face   `json:"faces"`

	// Revision is bumped once per committed UV batch so hosts can refresh
	// caches derived from the UV layer.
	Revision uint64 `json:"revision"`
}

// Image is a texture whose pixel size scales UV-space measurements.
type Image struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Object is a named mesh in edit mode, optionally with the image of its
// material.
type Object struct {
	Name    string `json:"name"`
	Mesh    *Mesh  `json:"mesh"`
	Image   *Image `json:"image,omitempty"`
	Texture string `json:"texture,omitempty"` // texture file named by the material, if any
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// AddVertex appends a vertex and returns its id.
func (m *Mesh) AddVertex(co v3.Vec) VertexID {
	id := VertexID(len(m.Verts))
	m.Verts = append(m.Verts, Vertex{ID: id, Co: co})
	return id
}

// AddFace appends a face over the given vertices with one UV per vertex.
func (m *Mesh) AddFace(verts []VertexID, uvs []v2.Vec) (FaceID, error) {
	if len(verts) < 3 {
		return 0, fmt.Errorf("uvmesh: face needs at least 3 vertices, got %d", len(verts))
	}
	if len(uvs) != len(verts) {
		return 0, fmt.Errorf("uvmesh: face has %d vertices but %d UVs", len(verts), len(uvs))
	}
	id := FaceID(len(m.Faces))
	loops := make([]Loop, len(verts))
	for i, v := range verts {
		if !m.HasVertex(v) {
			return 0, fmt.Errorf("uvmesh: face references unknown vertex %d", v)
		}
		loops[i] = Loop{Face: id, Vert: v, UV: uvs[i]}
	}
	m.Faces = append(m.Faces, Face{ID: id, Loops: loops})
	return id, nil
}

// MustAddFace is AddFace for fixtures; it panics on error.
func (m *Mesh) MustAddFace(verts []VertexID, uvs []v2.Vec) FaceID {
	id, err := m.AddFace(verts, uvs)
	if err != nil {
		panic(err)
	}
	return id
}

// HasVertex reports whether id is in range.
func (m *Mesh) HasVertex(id VertexID) bool {
	return id >= 0 && int(id) < len(m.Verts)
}

// HasFace reports whether id is in range.
func (m *Mesh) HasFace(id FaceID) bool {
	return id >= 0 && int(id) < len(m.Faces)
}

// Face returns the face with the given id, or nil.
func (m *Mesh) Face(id FaceID) *Face {
	if !m.HasFace(id) {
		return nil
	}
	return &m.Faces[id]
}

// Vertex returns the vertex with the given id, or nil.
func (m *Mesh) Vertex(id VertexID) *Vertex {
	if !m.HasVertex(id) {
		return nil
	}
	return &m.Verts[id]
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// HasUVs reports whether the mesh has any UV data to edit. A mesh built
// through AddFace always carries one UV per loop, so this is true for any
// mesh with faces.
func (m *Mesh) HasUVs() bool {
	return !m.IsEmpty()
}

// LoopIndex returns the position of vertex v in face f's loop list, or -1.
func (f *Face) LoopIndex(v VertexID) int {
	for i := range f.Loops {
		if f.Loops[i].Vert == v {
			return i
		}
	}
	return -1
}

// UVs returns the UV coordinate of every loop in order.
func (f *Face) UVs() []v2.Vec {
	uvs := make([]v2.Vec, len(f.Loops))
	for i := range f.Loops {
		uvs[i] = f.Loops[i].UV
	}
	return uvs
}

// SelectedLoopCount returns how many loops of f are UV-selected.
func (f *Face) SelectedLoopCount() int {
	n := 0
	for i := range f.Loops {
		if f.Loops[i].Select {
			n++
		}
	}
	return n
}
