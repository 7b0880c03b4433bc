package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// emptyExtent seeds min/max before any point is seen. An empty box keeps
// these values, so Min > Max on both axes.
const emptyExtent = 99999999.0

// BBox is an axis-aligned box over a set of UV coordinates. Center is the
// mean of the points, not the middle of the box.
type BBox struct {
	Min       v2.Vec
	Max       v2.Vec
	Center    v2.Vec
	Width     float64
	Height    float64
	Area      float64
	MinLength float64
	Count     int // number of points aggregated
}

// EmptyBBox returns the degenerate box produced by an empty point set.
func EmptyBBox() BBox {
	return finish(v2.Vec{X: emptyExtent, Y: emptyExtent}, v2.Vec{X: -emptyExtent, Y: -emptyExtent}, v2.Vec{}, 0)
}

// BoundingBox aggregates points in a single pass.
func BoundingBox(points []v2.Vec) BBox {
	lo := v2.Vec{X: emptyExtent, Y: emptyExtent}
	hi := v2.Vec{X: -emptyExtent, Y: -emptyExtent}
	var sum v2.Vec
	for _, p := range points {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
		sum = sum.Add(p)
	}
	return finish(lo, hi, sum, len(points))
}

// Union merges two boxes. The center stays the mean over all points.
func (b BBox) Union(o BBox) BBox {
	if o.Count == 0 {
		return b
	}
	if b.Count == 0 {
		return o
	}
	lo := v2.Vec{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y)}
	hi := v2.Vec{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y)}
	sum := b.Center.MulScalar(float64(b.Count)).Add(o.Center.MulScalar(float64(o.Count)))
	return finish(lo, hi, sum, b.Count+o.Count)
}

// IsEmpty reports whether no points were aggregated.
func (b BBox) IsEmpty() bool {
	return b.Count == 0
}

func finish(lo, hi, sum v2.Vec, n int) BBox {
	b := BBox{
		Min:    lo,
		Max:    hi,
		Width:  hi.X - lo.X,
		Height: hi.Y - lo.Y,
		Count:  n,
	}
	if n == 0 {
		b.Center = lo
	} else {
		b.Center = sum.DivScalar(float64(n))
	}
	b.Area = b.Width * b.Height
	b.MinLength = math.Min(b.Width, b.Height)
	return b
}
