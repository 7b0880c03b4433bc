package align

import (
	"math"

	"github.com/chazu/texeltools/pkg/geom"
	"github.com/chazu/texeltools/pkg/island"
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// EdgeAngle returns the smallest rotation, in [-π/4, π/4), that makes the
// edge a→b parallel to an axis when subtracted from its direction.
func EdgeAngle(a, b v2.Vec) float64 {
	d := b.Sub(a)
	angle := math.Mod(math.Atan2(d.Y, d.X), math.Pi/2)
	if angle < 0 {
		angle += math.Pi / 2
	}
	if angle >= math.Pi/4 {
		angle -= math.Pi / 2
	}
	return angle
}

// Edge is the pair of UV-selected loops that defines an island's
// alignment edge.
type Edge struct {
	Face uvmesh.FaceID
	A, B v2.Vec
}

// Midpoint returns the middle of the edge, the rotation pivot.
func (e Edge) Midpoint() v2.Vec {
	return geom.Midpoint(e.A, e.B)
}

// ReferenceEdge returns the first two UV-selected loops, in loop order, of
// the first face of the island that has at least two.
func ReferenceEdge(is island.Island) (Edge, bool) {
	for _, id := range is.Faces {
		f := is.Object.Mesh.Face(id)
		var uvs []v2.Vec
		for _, l := range f.Loops {
			if l.Select {
				uvs = append(uvs, l.UV)
				if len(uvs) == 2 {
					return Edge{Face: id, A: uvs[0], B: uvs[1]}, true
				}
			}
		}
	}
	return Edge{}, false
}

// IslandsByEdge rotates each island about the midpoint of its reference
// edge by minus EdgeAngle, so the edge ends up axis-parallel. Islands
// without a reference edge are skipped with a diagnostic. The scene's 2D
// cursor is left on the last pivot used, the way the interactive tool
// leaves it; callers that must not change it restore a snapshot.
func IslandsByEdge(s *uvmesh.Scene, islands []island.Island) Report {
	rep := Report{Islands: len(islands)}
	batches := uvmesh.NewBatches()
	for _, is := range islands {
		e, ok := ReferenceEdge(is)
		if !ok {
			rep.skip("island of %d faces in %s (first face %d) has fewer than 2 selected UVs on any face",
				is.Len(), is.Object.Name, is.Faces[0])
			continue
		}
		angle := EdgeAngle(e.A, e.B)
		if angle == 0 {
			continue
		}
		pivot := e.Midpoint()
		s.Tool.Pivot = uvmesh.PivotCursor
		s.Tool.Cursor = pivot
		rot := geom.RotationAbout(pivot, -angle)
		b := batches.For(is.Object)
		for _, r := range is.Loops() {
			b.Set(r.Face.ID, r.Index, rot.MulPosition(b.UV(r.Face.ID, r.Index)))
		}
	}
	rep.Moved = batches.Commit()
	return rep
}
