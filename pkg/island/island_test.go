package island

import (
	"testing"

	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridObject(name string, cols, rows int) *uvmesh.Object {
	m := uvmesh.NewGrid(cols, rows, 1, 0.1)
	m.SelectAll()
	return &uvmesh.Object{Name: name, Mesh: m}
}

// assertPartition checks that islands cover exactly the eligible faces,
// each once.
func assertPartition(t *testing.T, s *uvmesh.Scene, islands []Island) {
	t.Helper()
	type ref struct {
		o *uvmesh.Object
		f uvmesh.FaceID
	}
	seen := make(map[ref]int)
	for _, is := range islands {
		require.NotEmpty(t, is.Faces)
		for _, f := range is.Faces {
			seen[ref{is.Object, f}]++
		}
	}
	want := 0
	for _, o := range s.Objects {
		for i := range o.Mesh.Faces {
			if Eligible(&o.Mesh.Faces[i]) {
				want++
				assert.Equal(t, 1, seen[ref{o, uvmesh.FaceID(i)}], "face %s/%d", o.Name, i)
			}
		}
	}
	assert.Len(t, seen, want)
}

func TestSingleIsland(t *testing.T) {
	o := gridObject("grid", 3, 2)
	s := uvmesh.NewScene(o)

	islands := Partition(s, Options{})
	require.Len(t, islands, 1)
	assert.Equal(t, []uvmesh.FaceID{0, 1, 2, 3, 4, 5}, islands[0].Faces)
	assertPartition(t, s, islands)
}

func TestSeamSplitsIslands(t *testing.T) {
	o := gridObject("grid", 3, 1)
	o.Mesh.SplitFaceUVs(2, v2.Vec{X: 1})
	s := uvmesh.NewScene(o)

	islands := Partition(s, Options{})
	require.Len(t, islands, 2)
	assert.Equal(t, []uvmesh.FaceID{0, 1}, islands[0].Faces)
	assert.Equal(t, []uvmesh.FaceID{2}, islands[1].Faces)
	assertPartition(t, s, islands)
}

func TestUnselectedFacesExcluded(t *testing.T) {
	o := gridObject("grid", 3, 1)
	o.Mesh.Faces[1].Select = false
	s := uvmesh.NewScene(o)

	// Face 1 was the bridge; without it faces 0 and 2 are apart.
	islands := Partition(s, Options{})
	require.Len(t, islands, 2)
	assert.Equal(t, []uvmesh.FaceID{0}, islands[0].Faces)
	assert.Equal(t, []uvmesh.FaceID{2}, islands[1].Faces)
	assertPartition(t, s, islands)
}

func TestFaceWithoutSelectedLoopsExcluded(t *testing.T) {
	o := gridObject("grid", 2, 1)
	f := &o.Mesh.Faces[1]
	for i := range f.Loops {
		f.Loops[i].Select = false
	}
	s := uvmesh.NewScene(o)

	islands := Partition(s, Options{})
	require.Len(t, islands, 1)
	assert.Equal(t, []uvmesh.FaceID{0}, islands[0].Faces)
	assert.False(t, islands[0].Contains(1))
}

func TestPartialLoopSelectionStillConnects(t *testing.T) {
	o := gridObject("grid", 2, 1)
	o.Mesh.DeselectAllUV()
	o.Mesh.Faces[0].Loops[0].Select = true
	o.Mesh.Faces[1].Loops[2].Select = true
	s := uvmesh.NewScene(o)

	islands := Partition(s, Options{})
	require.Len(t, islands, 1, "membership is structural, not selection based")
	assert.Equal(t, 2, islands[0].Len())
}

func TestToleranceMergesNearCoincidentUVs(t *testing.T) {
	o := gridObject("grid", 2, 1)
	o.Mesh.SplitFaceUVs(1, v2.Vec{X: 1e-9})
	s := uvmesh.NewScene(o)

	assert.Len(t, Partition(s, Options{}), 2)
	assert.Len(t, Partition(s, Options{Tolerance: 1e-6}), 1)
}

func TestToleranceAcrossCellBoundary(t *testing.T) {
	for _, edge := range []float64{0.0005, 0.001, 0.0125} {
		o := gridObject("grid", 2, 1)
		// Pull the shared column onto edge, a hair either side per face.
		f0, f1 := &o.Mesh.Faces[0], &o.Mesh.Faces[1]
		for _, v := range []uvmesh.VertexID{1, 4} {
			f0.Loops[f0.LoopIndex(v)].UV.X = edge - 1e-9
			f1.Loops[f1.LoopIndex(v)].UV.X = edge + 1e-9
		}
		s := uvmesh.NewScene(o)
		assert.Len(t, Partition(s, Options{Tolerance: 1e-3}), 1, "edge %v", edge)
		assert.Len(t, Partition(s, Options{}), 2, "edge %v", edge)
	}
}

func TestToleranceKeepsDistantUVsApart(t *testing.T) {
	o := gridObject("grid", 2, 1)
	o.Mesh.SplitFaceUVs(1, v2.Vec{X: 1.5e-3})
	s := uvmesh.NewScene(o)

	assert.Len(t, Partition(s, Options{Tolerance: 1e-3}), 2)
	assert.Len(t, Partition(s, Options{Tolerance: 2e-3}), 1)
}

func TestObjectWithoutMeshHasNoIslands(t *testing.T) {
	o := gridObject("grid", 2, 1)
	s := uvmesh.NewScene(o, &uvmesh.Object{Name: "empty"})

	islands := Partition(s, Options{})
	require.Len(t, islands, 1)
	assert.Same(t, o, islands[0].Object)
}

func TestNegativeZeroMatches(t *testing.T) {
	o := gridObject("grid", 2, 1)
	// Vertex 1 sits at u=0.1; pull the shared column onto u=0 with
	// opposite zero signs in the two faces.
	f0, f1 := &o.Mesh.Faces[0], &o.Mesh.Faces[1]
	for _, v := range []uvmesh.VertexID{1, 4} {
		f0.Loops[f0.LoopIndex(v)].UV.X = 0
		f1.Loops[f1.LoopIndex(v)].UV.X = negZero()
	}
	s := uvmesh.NewScene(o)
	assert.Len(t, Partition(s, Options{}), 1)
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestIslandsNeverSpanObjects(t *testing.T) {
	a := gridObject("a", 2, 1)
	b := gridObject("b", 2, 1)
	s := uvmesh.NewScene(a, b)

	islands := Partition(s, Options{})
	require.Len(t, islands, 2)
	assert.Same(t, a, islands[0].Object)
	assert.Same(t, b, islands[1].Object)
	n, faces := Count(islands)
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, faces)
	assertPartition(t, s, islands)
}

func TestPartitionIsDeterministic(t *testing.T) {
	o := gridObject("grid", 4, 3)
	o.Mesh.SplitFaceUVs(5, v2.Vec{Y: 3})
	o.Mesh.SplitFaceUVs(10, v2.Vec{Y: 3})
	o.Mesh.Faces[7].Select = false
	s := uvmesh.NewScene(o)

	first := Partition(s, Options{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Partition(s, Options{}))
	}
	assertPartition(t, s, first)
}

func TestIslandUVsAndBBox(t *testing.T) {
	o := gridObject("grid", 2, 1)
	islands := PartitionObject(o, Options{})
	require.Len(t, islands, 1)

	assert.Len(t, islands[0].Loops(), 8)
	b := islands[0].BBox()
	assert.InDelta(t, 0.0, b.Min.X, 1e-12)
	assert.InDelta(t, 0.2, b.Max.X, 1e-12)
	assert.InDelta(t, 0.1, b.Max.Y, 1e-12)
}
