// Package selection records and restores selection state so that tools
// which must change selection temporarily leave the scene as they found it.
package selection

import (
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// LoopKey identifies a loop by its face and vertex. It stays meaningful
// when loop order inside a face changes.
type LoopKey struct {
	Face uvmesh.FaceID   `json:"face"`
	Vert uvmesh.VertexID `json:"vert"`
}

// ObjectSelection is the selection recorded for one object.
type ObjectSelection struct {
	Verts []uvmesh.VertexID `json:"verts"`
	Faces []uvmesh.FaceID   `json:"faces"`
	Loops []LoopKey         `json:"loops"`
}

// Snapshot is the selection of every object plus the tool settings the UV
// tools touch. It is taken at the start of one operation and consumed at
// its end.
type Snapshot struct {
	Objects        map[*uvmesh.Object]ObjectSelection
	UVSelectMode   uvmesh.SelectMode
	MeshSelectMode [3]bool
	Pivot          uvmesh.PivotMode
	Cursor         v2.Vec
}

// Capture records the current selection of s.
func Capture(s *uvmesh.Scene) *Snapshot {
	snap := &Snapshot{
		Objects:        make(map[*uvmesh.Object]ObjectSelection, len(s.Objects)),
		UVSelectMode:   s.Tool.UVSelectMode,
		MeshSelectMode: s.Tool.MeshSelectMode,
		Pivot:          s.Tool.Pivot,
		Cursor:         s.Tool.Cursor,
	}
	for _, o := range s.Objects {
		snap.Objects[o] = captureMesh(o.Mesh)
	}
	return snap
}

func captureMesh(m *uvmesh.Mesh) ObjectSelection {
	var sel ObjectSelection
	if m == nil {
		return sel
	}
	for _, v := range m.Verts {
		if v.Select {
			sel.Verts = append(sel.Verts, v.ID)
		}
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.Select {
			sel.Faces = append(sel.Faces, f.ID)
		}
		for _, l := range f.Loops {
			if l.Select {
				sel.Loops = append(sel.Loops, LoopKey{Face: f.ID, Vert: l.Vert})
			}
		}
	}
	return sel
}

// Stats counts what Restore re-applied and what it had to skip.
type Stats struct {
	Restored int
	Skipped  int // ids no longer present in the mesh
}

// Restore clears every selection flag of the objects recorded in snap,
// re-applies the recorded selection and restores the tool settings. Ids
// that are out of range, and loop pairs whose vertex is no longer part of
// the face, are skipped. Objects added to the scene after the capture are
// left untouched.
func Restore(s *uvmesh.Scene, snap *Snapshot) Stats {
	var st Stats
	if snap == nil {
		return st
	}
	s.Tool.UVSelectMode = snap.UVSelectMode
	s.Tool.MeshSelectMode = snap.MeshSelectMode
	s.Tool.Pivot = snap.Pivot
	s.Tool.Cursor = snap.Cursor

	for _, o := range s.Objects {
		sel, ok := snap.Objects[o]
		if !ok || o.Mesh == nil {
			continue
		}
		m := o.Mesh
		m.DeselectAll()
		for _, id := range sel.Faces {
			if f := m.Face(id); f != nil {
				f.Select = true
				st.Restored++
			} else {
				st.Skipped++
			}
		}
		for _, id := range sel.Verts {
			if v := m.Vertex(id); v != nil {
				v.Select = true
				st.Restored++
			} else {
				st.Skipped++
			}
		}
		for _, k := range sel.Loops {
			f := m.Face(k.Face)
			if f == nil {
				st.Skipped++
				continue
			}
			i := f.LoopIndex(k.Vert)
			if i < 0 {
				st.Skipped++
				continue
			}
			f.Loops[i].Select = true
			st.Restored++
		}
	}
	return st
}

// Scope captures the selection of s and returns a function restoring it,
// meant to be deferred so every exit path restores.
func Scope(s *uvmesh.Scene) func() Stats {
	snap := Capture(s)
	return func() Stats {
		return Restore(s, snap)
	}
}
