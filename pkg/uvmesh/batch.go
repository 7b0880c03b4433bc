package uvmesh

import v2 "github.com/deadsy/sdfx/vec/v2"

type loopKey struct {
	face  FaceID
	index int
}

// Batch collects UV edits for one mesh and applies them together. Reads
// through the batch see pending edits, so computations can chain several
// moves before the single Commit.
type Batch struct {
	mesh  *Mesh
	edits map[loopKey]v2.Vec
	order []loopKey
}

// NewBatch starts an empty batch against m.
func (m *Mesh) NewBatch() *Batch {
	return &Batch{mesh: m, edits: make(map[loopKey]v2.Vec)}
}

// UV returns the pending UV of a loop, or its stored value.
func (b *Batch) UV(face FaceID, index int) v2.Vec {
	if uv, ok := b.edits[loopKey{face, index}]; ok {
		return uv
	}
	return b.mesh.Faces[face].Loops[index].UV
}

// Set stages a new UV for a loop.
func (b *Batch) Set(face FaceID, index int, uv v2.Vec) {
	k := loopKey{face, index}
	if _, ok := b.edits[k]; !ok {
		b.order = append(b.order, k)
	}
	b.edits[k] = uv
}

// Translate stages a move of a loop by delta.
func (b *Batch) Translate(face FaceID, index int, delta v2.Vec) {
	b.Set(face, index, b.UV(face, index).Add(delta))
}

// Len returns the number of loops with pending edits.
func (b *Batch) Len() int {
	return len(b.order)
}

// Commit writes every pending edit into the mesh, bumps the mesh revision
// once if anything was written, and empties the batch. It returns the
// number of loops written.
func (b *Batch) Commit() int {
	n := len(b.order)
	if n == 0 {
		return 0
	}
	for _, k := range b.order {
		b.mesh.Faces[k.face].Loops[k.index].UV = b.edits[k]
	}
	b.mesh.Revision++
	b.edits = make(map[loopKey]v2.Vec)
	b.order = nil
	return n
}

// Batches holds one batch per object so an operation touching several
// objects can commit each exactly once at the end.
type Batches struct {
	byObject map[*Object]*Batch
	order    []*Object
}

// NewBatches returns an empty set.
func NewBatches() *Batches {
	return &Batches{byObject: make(map[*Object]*Batch)}
}

// For returns the batch for o, creating it on first use.
func (bs *Batches) For(o *Object) *Batch {
	b, ok := bs.byObject[o]
	if !ok {
		b = o.Mesh.NewBatch()
		bs.byObject[o] = b
		bs.order = append(bs.order, o)
	}
	return b
}

// Commit commits every batch in first-use order and returns the total
// number of loops written.
func (bs *Batches) Commit() int {
	n := 0
	for _, o := range bs.order {
		n += bs.byObject[o].Commit()
	}
	return n
}
