// Package sdfx generates demo geometry for the UV tools with the
// github.com/deadsy/sdfx signed distance library. Solids are meshed by
// marching cubes into unwelded triangle soups that uvmesh.FromTriangles
// welds and box-projects.
package sdfx

import (
	"fmt"

	"github.com/chazu/texeltools/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// axis. UV work needs recognisable shapes, not print quality.
const DefaultMeshCells = 32

type solid struct {
	sdf sdf.SDF3
}

func (s *solid) BoundingBox() (lo, hi [3]float64) {
	bb := s.sdf.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// SdfxKernel builds demo solids and meshes them at a fixed resolution.
type SdfxKernel struct {
	cells int
}

// New returns a kernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return NewWithCells(DefaultMeshCells)
}

// NewWithCells returns a kernel meshing at the given resolution; zero or
// less means DefaultMeshCells.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

func sdf3(s kernel.Solid) sdf.SDF3 {
	return s.(*solid).sdf
}

func moved(s sdf.SDF3, offset v3.Vec) kernel.Solid {
	return &solid{sdf: sdf.Transform3D(s, sdf.Translate3d(offset))}
}

// Box is a block spanning the origin to (x, y, z), so demo scenes can be
// assembled in positive coordinates.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	size := v3.Vec{X: x, Y: y, Z: z}
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx: box %v: %v", size, err))
	}
	return moved(s, size.MulScalar(0.5))
}

// Cylinder is a Z-aligned cylinder centred on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx: cylinder h=%g r=%g: %v", height, radius, err))
	}
	return &solid{sdf: s}
}

// Union joins two solids; the demo bracket is built this way.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return &solid{sdf: sdf.Union3D(sdf3(a), sdf3(b))}
}

// Difference cuts b out of a, giving demo solids inner walls and extra
// UV islands.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return &solid{sdf: sdf.Difference3D(sdf3(a), sdf3(b))}
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return moved(sdf3(s), v3.Vec{X: x, Y: y, Z: z})
}

// ToMesh meshes a solid into a soup: three fresh vertices per triangle,
// each carrying the triangle normal that box projection later reads.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	tris := render.ToTriangles(sdf3(s), render.NewMarchingCubesUniform(k.cells))
	if len(tris) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Normals:  make([]float32, 0, len(tris)*9),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	for _, tri := range tris {
		n := tri.Normal()
		for _, p := range tri {
			m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return m, nil
}
