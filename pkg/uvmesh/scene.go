package uvmesh

import (
	"fmt"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SelectMode is the UV editor's element selection mode.
type SelectMode int

const (
	SelectVertex SelectMode = iota
	SelectEdge
	SelectFace
	SelectIsland
)

func (m SelectMode) String() string {
	switch m {
	case SelectVertex:
		return "vertex"
	case SelectEdge:
		return "edge"
	case SelectFace:
		return "face"
	case SelectIsland:
		return "island"
	default:
		return "unknown"
	}
}

// ParseSelectMode accepts the names produced by String, case-insensitively.
func ParseSelectMode(s string) (SelectMode, error) {
	switch strings.ToLower(s) {
	case "vertex", "vert":
		return SelectVertex, nil
	case "edge":
		return SelectEdge, nil
	case "face":
		return SelectFace, nil
	case "island":
		return SelectIsland, nil
	}
	return 0, fmt.Errorf("invalid select mode %q, expected vertex, edge, face or island", s)
}

// PivotMode is the transform pivot used by rotate/scale tools.
type PivotMode int

const (
	PivotBoundingBoxCenter PivotMode = iota
	PivotCursor
	PivotMedian
	PivotIndividualOrigins
)

func (p PivotMode) String() string {
	switch p {
	case PivotBoundingBoxCenter:
		return "bounding-box-center"
	case PivotCursor:
		return "cursor"
	case PivotMedian:
		return "median"
	case PivotIndividualOrigins:
		return "individual-origins"
	default:
		return "unknown"
	}
}

// ToolSettings are the editor-wide modes the UV tools read and temporarily
// change.
type ToolSettings struct {
	UVSelectMode   SelectMode `json:"uv_select_mode"`
	MeshSelectMode [3]bool    `json:"mesh_select_mode"` // vertex, edge, face
	Pivot          PivotMode  `json:"pivot"`
	Cursor         v2.Vec     `json:"cursor"` // 2D cursor in UV space
	UVSync         bool       `json:"uv_sync"`
}

// DefaultToolSettings returns face select mode, bounding box pivot and
// the cursor at the origin.
func DefaultToolSettings() ToolSettings {
	return ToolSettings{
		UVSelectMode:   SelectFace,
		MeshSelectMode: [3]bool{false, false, true},
		Pivot:          PivotBoundingBoxCenter,
	}
}

// Scene is the editing context handed to every UV operation: the objects
// in edit mode and the tool settings. It replaces editor globals; nothing
// in this module keeps state outside a Scene.
type Scene struct {
	Objects []*Object    `json:"objects"`
	Tool    ToolSettings `json:"tool"`

	// DisplayedImage is the image shown in the UV editor, used when an
	// object's material has none.
	DisplayedImage *Image `json:"displayed_image,omitempty"`
}

// NewScene creates a scene over the given objects with default settings.
func NewScene(objects ...*Object) *Scene {
	return &Scene{
		Objects: objects,
		Tool:    DefaultToolSettings(),
	}
}

// Object returns the object with the given name, or nil.
func (s *Scene) Object(name string) *Object {
	for _, o := range s.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// FaceRef addresses a face of an object.
type FaceRef struct {
	Object *Object
	Face   *Face
}

// LoopRef addresses a loop by face and position within the face.
type LoopRef struct {
	Object *Object
	Face   *Face
	Index  int
}

// Loop returns the referenced loop.
func (r LoopRef) Loop() *Loop {
	return &r.Face.Loops[r.Index]
}

// SelectedFaces returns the selected faces of every object in order.
func (s *Scene) SelectedFaces() []FaceRef {
	var refs []FaceRef
	for _, o := range s.Objects {
		for _, f := range o.Mesh.SelectedFaces() {
			refs = append(refs, FaceRef{Object: o, Face: f})
		}
	}
	return refs
}

// SelectedLoops returns the UV-selected loops inside selected faces of
// every object.
func (s *Scene) SelectedLoops() []LoopRef {
	var refs []LoopRef
	for _, o := range s.Objects {
		for _, f := range o.Mesh.SelectedFaces() {
			for i := range f.Loops {
				if f.Loops[i].Select {
					refs = append(refs, LoopRef{Object: o, Face: f, Index: i})
				}
			}
		}
	}
	return refs
}

// SelectedUVs returns the coordinates of SelectedLoops.
func (s *Scene) SelectedUVs() []v2.Vec {
	refs := s.SelectedLoops()
	uvs := make([]v2.Vec, len(refs))
	for i, r := range refs {
		uvs[i] = r.Loop().UV
	}
	return uvs
}

// HasUVs reports whether at least one object has UV data.
func (s *Scene) HasUVs() bool {
	for _, o := range s.Objects {
		if o.Mesh != nil && o.Mesh.HasUVs() {
			return true
		}
	}
	return false
}

// SelectAll selects every vertex, face and loop in the scene.
func (s *Scene) SelectAll() {
	for _, o := range s.Objects {
		o.Mesh.SelectAll()
	}
}

// DeselectAllUV clears UV selection on every loop, leaving face and vertex
// selection alone.
func (s *Scene) DeselectAllUV() {
	for _, o := range s.Objects {
		o.Mesh.DeselectAllUV()
	}
}
