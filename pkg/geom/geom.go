// Package geom holds the small amount of 2D/3D math the UV tools need:
// triangle areas in world and texture space, UV bounding boxes and
// rotation about a pivot. Vectors are the sdfx vec types so that meshes
// produced by the kernel package flow through without conversion.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TriangleArea3D returns the area of a world-space triangle:
// half the magnitude of (b-a) x (c-a).
func TriangleArea3D(a, b, c v3.Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Length() / 2
}

// TriangleArea2D returns the unsigned area of a triangle in the UV plane.
func TriangleArea2D(a, b, c v2.Vec) float64 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	return math.Abs(ab.X*ac.Y-ab.Y*ac.X) / 2
}

// TriangleAreaUV returns the area of a UV triangle after scaling each axis
// by the image aspect (width/longest side, height/longest side). Multiplying
// the square root of the result by min(width, height) gives a length in
// pixels. A non-positive size leaves the coordinates unscaled.
func TriangleAreaUV(a, b, c v2.Vec, width, height int) float64 {
	sx, sy := aspectScale(width, height)
	scale := func(p v2.Vec) v2.Vec { return v2.Vec{X: p.X * sx, Y: p.Y * sy} }
	return TriangleArea2D(scale(a), scale(b), scale(c))
}

func aspectScale(width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 1, 1
	}
	longest := float64(max(width, height))
	return float64(width) / longest, float64(height) / longest
}

// RotateAbout rotates p around pivot by angle radians (counter-clockwise).
func RotateAbout(p, pivot v2.Vec, angle float64) v2.Vec {
	return RotationAbout(pivot, angle).MulPosition(p)
}

// RotationAbout returns the 2D affine matrix rotating by angle around pivot.
func RotationAbout(pivot v2.Vec, angle float64) sdf.M33 {
	return sdf.Translate2d(pivot).Mul(sdf.Rotate2d(angle)).Mul(sdf.Translate2d(pivot.Neg()))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b v2.Vec) v2.Vec {
	return a.Add(b.Sub(a).DivScalar(2))
}
