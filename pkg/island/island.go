// Package island groups selected faces into UV islands: maximal sets of
// faces connected through shared vertices whose UVs coincide. Grouping is
// purely structural and never touches selection state.
package island

import (
	"math"

	"github.com/chazu/texeltools/pkg/geom"
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Options controls UV coincidence.
type Options struct {
	// Tolerance, when positive, treats UVs of the same vertex as coincident
	// when they differ by at most this much in u and in v. Zero compares
	// exact float values.
	Tolerance float64
}

// Island is a set of faces of one object, in ascending id order.
type Island struct {
	Object *uvmesh.Object
	Faces  []uvmesh.FaceID
}

// Eligible reports whether f takes part in island formation: it must be
// selected and have at least one UV-selected loop.
func Eligible(f *uvmesh.Face) bool {
	return f.Select && f.SelectedLoopCount() > 0
}

// Partition returns the islands of every object in scene order. Within an
// object, islands are ordered by their lowest face id.
func Partition(s *uvmesh.Scene, opts Options) []Island {
	var out []Island
	for _, o := range s.Objects {
		out = append(out, PartitionObject(o, opts)...)
	}
	return out
}

// coincidence identifies a (vertex, uv) pair compared exactly.
type coincidence struct {
	vert uvmesh.VertexID
	u, v uint64
}

// cell buckets loops of one vertex by a Tolerance-sized UV grid.
type cell struct {
	vert uvmesh.VertexID
	u, v int64
}

type entry struct {
	face int
	uv   v2.Vec
}

// PartitionObject returns the islands of one object. An object without
// mesh data has none.
func PartitionObject(o *uvmesh.Object, opts Options) []Island {
	if o == nil || o.Mesh == nil {
		return nil
	}
	m := o.Mesh
	uf := newUnionFind(len(m.Faces))
	if opts.Tolerance > 0 {
		joinNear(m, uf, opts.Tolerance)
	} else {
		joinExact(m, uf)
	}

	var islands []Island
	index := make(map[int]int)
	for i := range m.Faces {
		if !Eligible(&m.Faces[i]) {
			continue
		}
		root := uf.find(i)
		n, ok := index[root]
		if !ok {
			n = len(islands)
			index[root] = n
			islands = append(islands, Island{Object: o})
		}
		islands[n].Faces = append(islands[n].Faces, uvmesh.FaceID(i))
	}
	return islands
}

// Len returns the number of faces.
func (is Island) Len() int {
	return len(is.Faces)
}

// Contains reports whether the island includes face id.
func (is Island) Contains(id uvmesh.FaceID) bool {
	for _, f := range is.Faces {
		if f == id {
			return true
		}
	}
	return false
}

// Loops returns every loop of every face in the island.
func (is Island) Loops() []uvmesh.LoopRef {
	var refs []uvmesh.LoopRef
	for _, id := range is.Faces {
		f := is.Object.Mesh.Face(id)
		for i := range f.Loops {
			refs = append(refs, uvmesh.LoopRef{Object: is.Object, Face: f, Index: i})
		}
	}
	return refs
}

// UVs returns the UV of every loop in the island.
func (is Island) UVs() []v2.Vec {
	refs := is.Loops()
	uvs := make([]v2.Vec, len(refs))
	for i, r := range refs {
		uvs[i] = r.Loop().UV
	}
	return uvs
}

// BBox returns the bounding box of the island's UVs.
func (is Island) BBox() geom.BBox {
	return geom.BoundingBox(is.UVs())
}

// Count returns the number of islands and the number of faces they hold.
func Count(islands []Island) (n, faces int) {
	for _, is := range islands {
		faces += is.Len()
	}
	return len(islands), faces
}

func joinExact(m *uvmesh.Mesh, uf *unionFind) {
	owner := make(map[coincidence]int)
	for i := range m.Faces {
		f := &m.Faces[i]
		if !Eligible(f) {
			continue
		}
		for _, l := range f.Loops {
			// Adding zero folds -0 into +0 so the bit patterns compare like floats.
			k := coincidence{
				vert: l.Vert,
				u:    math.Float64bits(l.UV.X + 0),
				v:    math.Float64bits(l.UV.Y + 0),
			}
			if other, ok := owner[k]; ok {
				uf.union(other, i)
			} else {
				owner[k] = i
			}
		}
	}
}

// joinNear unions faces sharing a vertex whose UVs lie within tol on both
// axes. Matches can sit in a neighbouring grid cell, so the 3x3 block
// around each loop's cell is searched.
func joinNear(m *uvmesh.Mesh, uf *unionFind, tol float64) {
	cells := make(map[cell][]entry)
	for i := range m.Faces {
		f := &m.Faces[i]
		if !Eligible(f) {
			continue
		}
		for _, l := range f.Loops {
			c := cell{
				vert: l.Vert,
				u:    int64(math.Floor(l.UV.X / tol)),
				v:    int64(math.Floor(l.UV.Y / tol)),
			}
			for du := int64(-1); du <= 1; du++ {
				for dv := int64(-1); dv <= 1; dv++ {
					for _, e := range cells[cell{vert: c.vert, u: c.u + du, v: c.v + dv}] {
						if math.Abs(e.uv.X-l.UV.X) <= tol && math.Abs(e.uv.Y-l.UV.Y) <= tol {
							uf.union(e.face, i)
						}
					}
				}
			}
			cells[c] = append(cells[c], entry{face: i, uv: l.UV})
		}
	}
}
