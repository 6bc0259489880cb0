// Package shape generates the triangle soup of canonical solids.
// Each shape is a plain parameter value; Emit walks its rings and corners
// and hands triangles and quads to an Assembler in a fixed winding order.
// Shapes never reject input: out-of-range parameters are clamped.
//
// All solids are centered on the origin with their axis along +Z.
package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// Clamping limits shared by the generators.
const (
	MinExtent             = 0.01
	MinInnerRadius        = 0.005
	MinSubdivisions       = 3
	MaxSubdivisions       = 360
	MinSphereSubdivisions = 1
	MaxSphereSubdivisions = 11
)

// Assembler receives emitted primitives.
//
// AddTri appends A, B, C in that order; the argument order alone decides the
// winding. AddQuad appends the triangles (BL, BR, TL) and (TL, BR, TR).
//
//	TL--TR
//	|    |
//	BL--BR
type Assembler interface {
	AddTri(a, b, c mgl32.Vec3)
	AddQuad(bottomLeft, bottomRight, topLeft, topRight mgl32.Vec3)
}

// Shape is a solid that can emit its own triangles.
type Shape interface {
	// Kind names the solid ("cube", "cone", ...).
	Kind() string
	// Normalize returns the clamped shape Emit actually builds.
	Normalize() Shape
	// Emit clamps the parameters and drives a.
	Emit(a Assembler)
	// VertexCount is the exact number of vertices Emit appends.
	VertexCount() int
}

// clampExtent floors a radius, height or edge length.
func clampExtent(v float32) float32 {
	return max(v, MinExtent)
}

// clampSubdivisions bounds an angular subdivision count.
func clampSubdivisions(n int) int {
	return lo.Clamp(n, MinSubdivisions, MaxSubdivisions)
}

// clampRadii floors both radii and swaps them when inner exceeds outer.
func clampRadii(outer, inner float32) (float32, float32) {
	outer = max(outer, MinExtent)
	inner = max(inner, MinInnerRadius)
	if inner > outer {
		inner, outer = outer, inner
	}
	return outer, inner
}

// angles returns the n evenly spaced angles 2π·i/n.
func angles(n int) []float64 {
	rads := make([]float64, n)
	for i := range rads {
		rads[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	return rads
}

// ringPoint is the point at angle rad on a circle of the given radius at height z.
func ringPoint(rad float64, radius, z float32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(rad)) * radius,
		float32(math.Sin(rad)) * radius,
		z,
	}
}

// ring returns the points of one ring at the given angles.
func ring(rads []float64, radius, z float32) []mgl32.Vec3 {
	return lo.Map(rads, func(rad float64, _ int) mgl32.Vec3 {
		return ringPoint(rad, radius, z)
	})
}
