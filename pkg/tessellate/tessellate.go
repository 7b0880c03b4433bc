// Package tessellate splits polygon faces into triangles expressed as loop
// indices, so world-space and UV-space measurements use the same
// triangles. Convex faces are fanned from their first loop; concave faces
// are ear-clipped in UV space.
package tessellate

import (
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Triangle holds three loop indices into a face's loop list.
type Triangle [3]int

// Fan returns the triangle fan (0, i, i+1) over n loops. Fewer than three
// loops yield no triangles.
func Fan(n int) []Triangle {
	if n < 3 {
		return nil
	}
	tris := make([]Triangle, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, Triangle{0, i, i + 1})
	}
	return tris
}

// Face triangulates f. Triangles and quads-or-larger that are convex in
// UV space are fanned; concave ones are ear-clipped, falling back to the
// fan if clipping gets stuck on degenerate input.
func Face(f *uvmesh.Face) []Triangle {
	n := len(f.Loops)
	if n <= 3 || isConvex(f.UVs()) {
		return Fan(n)
	}
	if tris, ok := earClip(f.UVs()); ok {
		return tris
	}
	return Fan(n)
}

func cross(o, a, b v2.Vec) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func signedArea(pts []v2.Vec) float64 {
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return s / 2
}

func isConvex(pts []v2.Vec) bool {
	var sign float64
	for i := range pts {
		c := cross(pts[i], pts[(i+1)%len(pts)], pts[(i+2)%len(pts)])
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// earClip triangulates a simple polygon. It reports false when no ear can
// be found, which happens for self-intersecting or zero-area input.
func earClip(pts []v2.Vec) ([]Triangle, bool) {
	orient := 1.0
	if signedArea(pts) < 0 {
		orient = -1
	}
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	var tris []Triangle
	for len(idx) > 3 {
		found := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if cross(pts[prev], pts[cur], pts[next])*orient <= 0 {
				continue // reflex or flat
			}
			if containsAny(pts, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, Triangle{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}
	tris = append(tris, Triangle{idx[0], idx[1], idx[2]})
	return tris, true
}

func containsAny(pts []v2.Vec, idx []int, a, b, c int) bool {
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		if inTriangle(pts[i], pts[a], pts[b], pts[c]) {
			return true
		}
	}
	return false
}

func inTriangle(p, a, b, c v2.Vec) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}
