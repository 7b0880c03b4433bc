// Package align moves UVs so that islands, vertices or edges line up.
//
// Island alignment translates each island so its bounding box touches one
// side of the reference box. Vertex alignment clamps one coordinate of
// every selected loop onto that side. Align-by-edge rotates each island so
// a selected edge becomes axis-parallel. All edits go through per-object
// batches and are committed once per object.
package align

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/texeltools/pkg/geom"
	"github.com/chazu/texeltools/pkg/island"
	"github.com/chazu/texeltools/pkg/uvmesh"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

var (
	// ErrUnknownDirection is returned for a direction other than top,
	// bottom, left or right.
	ErrUnknownDirection = errors.New("unknown direction")

	// ErrNoSelection is returned when no UV-selected loop exists to build
	// the reference box from.
	ErrNoSelection = errors.New("no UVs selected")
)

// Direction is the side to align to.
type Direction int

const (
	Top Direction = iota
	Bottom
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection maps a name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("align: %q: %w", s, ErrUnknownDirection)
}

// Report summarises what an alignment did.
type Report struct {
	Islands int      // islands considered
	Moved   int      // loops written
	Skipped []string // diagnostics for islands that could not be processed
}

func (r *Report) skip(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

// SelectionBounds is the reference box over every UV-selected loop of a
// selected face, across all objects.
func SelectionBounds(s *uvmesh.Scene) geom.BBox {
	all := geom.EmptyBBox()
	for _, o := range s.Objects {
		var uvs []v2.Vec
		for _, l := range o.Mesh.SelectedLoops() {
			uvs = append(uvs, l.UV)
		}
		all = all.Union(geom.BoundingBox(uvs))
	}
	return all
}

// IslandDelta returns the translation that moves bounds onto the given side
// of all. Only the axis perpendicular to that side moves.
func IslandDelta(all, bounds geom.BBox, d Direction) v2.Vec {
	switch d {
	case Top:
		return v2.Vec{Y: all.Max.Y - bounds.Max.Y}
	case Bottom:
		return v2.Vec{Y: all.Min.Y - bounds.Min.Y}
	case Left:
		return v2.Vec{X: all.Min.X - bounds.Min.X}
	case Right:
		return v2.Vec{X: all.Max.X - bounds.Max.X}
	}
	return v2.Vec{}
}

// Islands translates every island onto side d of the selection bounds.
func Islands(s *uvmesh.Scene, islands []island.Island, d Direction) (Report, error) {
	if d < Top || d > Right {
		return Report{}, fmt.Errorf("align: %d: %w", int(d), ErrUnknownDirection)
	}
	all := SelectionBounds(s)
	if all.IsEmpty() {
		return Report{}, fmt.Errorf("align: islands: %w", ErrNoSelection)
	}

	rep := Report{Islands: len(islands)}
	batches := uvmesh.NewBatches()
	for _, is := range islands {
		delta := IslandDelta(all, is.BBox(), d)
		if delta == (v2.Vec{}) {
			continue
		}
		b := batches.For(is.Object)
		for _, r := range is.Loops() {
			b.Translate(r.Face.ID, r.Index, delta)
		}
	}
	rep.Moved = batches.Commit()
	return rep, nil
}

// Verts clamps the relevant coordinate of every UV-selected loop in a
// selected face onto side d of the selection bounds: v for top/bottom,
// u for left/right.
func Verts(s *uvmesh.Scene, d Direction) (Report, error) {
	if d < Top || d > Right {
		return Report{}, fmt.Errorf("align: %d: %w", int(d), ErrUnknownDirection)
	}
	all := SelectionBounds(s)
	if all.IsEmpty() {
		return Report{}, fmt.Errorf("align: verts: %w", ErrNoSelection)
	}

	var rep Report
	batches := uvmesh.NewBatches()
	for _, r := range s.SelectedLoops() {
		uv := r.Loop().UV
		switch d {
		case Top:
			uv.Y = all.Max.Y
		case Bottom:
			uv.Y = all.Min.Y
		case Left:
			uv.X = all.Min.X
		case Right:
			uv.X = all.Max.X
		}
		if uv != r.Loop().UV {
			batches.For(r.Object).Set(r.Face.ID, r.Index, uv)
		}
	}
	rep.Moved = batches.Commit()
	return rep, nil
}
