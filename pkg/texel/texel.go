// Package texel estimates texel density: how many texture pixels cover one
// world unit of surface, averaged over a set of faces.
//
// For every triangle the square roots of its world-space area and of its
// aspect-corrected UV area are summed; the UV sum is scaled by the shorter
// image side. The density is the ratio of the two sums.
package texel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/texeltools/pkg/geom"
	"github.com/chazu/texeltools/pkg/tessellate"
	"github.com/chazu/texeltools/pkg/uvmesh"
)

// ErrNoFaces is returned when there is nothing to measure: no objects,
// no UV data or no faces in scope.
var ErrNoFaces = errors.New("no UV maps or meshes selected")

// Scope selects which faces are measured.
type Scope int

const (
	Selected Scope = iota // selected faces only (edit mode)
	All                   // every face (object mode)
)

func (s Scope) String() string {
	switch s {
	case Selected:
		return "selected"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

// ParseScope accepts "selected" or "all".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "selected":
		return Selected, nil
	case "all":
		return All, nil
	}
	return 0, fmt.Errorf("texel: invalid scope %q, expected selected or all", s)
}

// ImageResolver finds the image whose resolution applies to an object.
type ImageResolver interface {
	Resolve(o *uvmesh.Object) (*uvmesh.Image, bool)
}

// SceneResolver uses the object's own image and falls back to the image
// displayed in the UV editor.
type SceneResolver struct {
	Scene *uvmesh.Scene
}

// Resolve implements ImageResolver.
func (r SceneResolver) Resolve(o *uvmesh.Object) (*uvmesh.Image, bool) {
	if usable(o.Image) {
		return o.Image, true
	}
	if r.Scene != nil && usable(r.Scene.DisplayedImage) {
		return r.Scene.DisplayedImage, true
	}
	return nil, false
}

func usable(img *uvmesh.Image) bool {
	return img != nil && img.Width > 0 && img.Height > 0
}

// Result holds the density and the sums it was derived from.
type Result struct {
	Density      float64 `json:"density"`
	SumUV        float64 `json:"sum_uv"`
	Sum3D        float64 `json:"sum_3d"`
	Faces        int     `json:"faces"`         // faces measured
	Triangles    int     `json:"triangles"`     // triangles measured
	SkippedFaces int     `json:"skipped_faces"` // faces in scope without an image
}

// Estimate measures the faces of s in scope. Faces whose object has no
// resolvable image are counted in SkippedFaces and contribute nothing.
// A zero sum on either side yields a density of 0.
func Estimate(s *uvmesh.Scene, resolver ImageResolver, scope Scope) (Result, error) {
	if resolver == nil {
		resolver = SceneResolver{Scene: s}
	}
	var res Result
	inScope := 0
	for _, o := range s.Objects {
		if o.Mesh == nil || !o.Mesh.HasUVs() {
			continue
		}
		faces := facesInScope(o.Mesh, scope)
		inScope += len(faces)
		if len(faces) == 0 {
			continue
		}
		img, ok := resolver.Resolve(o)
		if !ok {
			res.SkippedFaces += len(faces)
			continue
		}
		for _, f := range faces {
			res.Triangles += accumulate(o.Mesh, f, img, &res)
			res.Faces++
		}
	}
	if inScope == 0 {
		return Result{}, fmt.Errorf("texel: %s faces: %w", scope, ErrNoFaces)
	}
	if res.SumUV != 0 && res.Sum3D != 0 {
		res.Density = res.SumUV / res.Sum3D
	}
	return res, nil
}

func facesInScope(m *uvmesh.Mesh, scope Scope) []*uvmesh.Face {
	if scope == All {
		faces := make([]*uvmesh.Face, len(m.Faces))
		for i := range m.Faces {
			faces[i] = &m.Faces[i]
		}
		return faces
	}
	return m.SelectedFaces()
}

// accumulate adds one face's triangles to res and returns how many there
// were.
func accumulate(m *uvmesh.Mesh, f *uvmesh.Face, img *uvmesh.Image, res *Result) int {
	tris := tessellate.Face(f)
	short := float64(min(img.Width, img.Height))
	for _, t := range tris {
		a, b, c := f.Loops[t[0]], f.Loops[t[1]], f.Loops[t[2]]
		area3D := geom.TriangleArea3D(m.Verts[a.Vert].Co, m.Verts[b.Vert].Co, m.Verts[c.Vert].Co)
		areaUV := geom.TriangleAreaUV(a.UV, b.UV, c.UV, img.Width, img.Height)
		res.Sum3D += math.Sqrt(area3D)
		res.SumUV += math.Sqrt(areaUV) * short
	}
	return len(tris)
}
