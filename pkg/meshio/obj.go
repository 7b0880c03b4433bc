// Package meshio loads UV meshes and texture sizes from files: Wavefront
// OBJ/MTL through the g3n loader and texture headers through the image
// decoders.
package meshio

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/g3n/engine/loader/obj"
)

// LoadOBJ reads an OBJ file and its material library. An empty mtlPath
// lets the loader look for the library named by the OBJ's mtllib line.
func LoadOBJ(objPath, mtlPath string) ([]*uvmesh.Object, error) {
	dec, err := obj.Decode(objPath, mtlPath)
	if err != nil {
		return nil, fmt.Errorf("meshio: decode %s: %w", objPath, err)
	}
	return convert(dec)
}

// DecodeOBJ reads OBJ and MTL data from readers. mtl may be nil.
func DecodeOBJ(r io.Reader, mtl io.Reader) ([]*uvmesh.Object, error) {
	if mtl == nil {
		mtl = strings.NewReader("")
	}
	dec, err := obj.DecodeReader(r, mtl)
	if err != nil {
		return nil, fmt.Errorf("meshio: decode: %w", err)
	}
	return convert(dec)
}

// convert builds one uvmesh.Object per OBJ object. OBJ indices are global
// to the file; each object gets its own compact vertex numbering.
func convert(dec *obj.Decoder) ([]*uvmesh.Object, error) {
	nverts := len(dec.Vertices) / 3
	nuvs := len(dec.Uvs) / 2

	var objects []*uvmesh.Object
	for oi := range dec.Objects {
		src := &dec.Objects[oi]
		name := src.Name
		if name == "" {
			name = fmt.Sprintf("object.%03d", oi)
		}
		m := uvmesh.NewMesh()
		remap := make(map[int]uvmesh.VertexID)
		texture := ""

		for fi, face := range src.Faces {
			verts := make([]uvmesh.VertexID, len(face.Vertices))
			uvs := make([]v2.Vec, len(face.Vertices))
			for i, vi := range face.Vertices {
				if vi < 0 || vi >= nverts {
					return nil, fmt.Errorf("meshio: object %q face %d: vertex index %d out of range", name, fi, vi)
				}
				if i >= len(face.Uvs) || face.Uvs[i] < 0 || face.Uvs[i] >= nuvs {
					return nil, fmt.Errorf("meshio: object %q face %d: missing UV index", name, fi)
				}
				id, ok := remap[vi]
				if !ok {
					id = m.AddVertex(v3.Vec{
						X: float64(dec.Vertices[3*vi]),
						Y: float64(dec.Vertices[3*vi+1]),
						Z: float64(dec.Vertices[3*vi+2]),
					})
					remap[vi] = id
				}
				verts[i] = id
				ti := face.Uvs[i]
				uvs[i] = v2.Vec{X: float64(dec.Uvs[2*ti]), Y: float64(dec.Uvs[2*ti+1])}
			}
			id, err := m.AddFace(verts, uvs)
			if err != nil {
				return nil, fmt.Errorf("meshio: object %q face %d: %w", name, fi, err)
			}
			m.Faces[id].Material = face.Material
			if texture == "" {
				if mat, ok := dec.Materials[face.Material]; ok && mat != nil {
					texture = mat.MapKd
				}
			}
		}
		objects = append(objects, &uvmesh.Object{Name: name, Mesh: m, Texture: texture})
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("meshio: no objects found")
	}
	return objects, nil
}
