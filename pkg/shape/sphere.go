package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

var _ Shape = Sphere{}

// Sphere is built from Subdivisions slices around the Z axis, each sampled
// at Subdivisions+1 evenly spaced heights from pole to pole.
// Fewer than one subdivision degrades to a cube of edge 2·Radius.
type Sphere struct {
	Radius       float32
	Subdivisions int
}

func (s Sphere) Kind() string { return "sphere" }

// Normalize returns a Cube when Subdivisions < 1.
func (s Sphere) Normalize() Shape {
	r := clampExtent(s.Radius)
	if s.Subdivisions < MinSphereSubdivisions {
		return Cube{Size: r * 2}
	}
	return Sphere{
		Radius:       r,
		Subdivisions: min(s.Subdivisions, MaxSphereSubdivisions),
	}
}

// Emit walks each slice's point pairs two at a time but stops two points
// short of the end, so no wraparound quad joins the top pair of a slice
// back to its bottom pair.
func (s Sphere) Emit(a Assembler) {
	normalized, ok := s.Normalize().(Sphere)
	if !ok {
		s.Normalize().Emit(a)
		return
	}
	s = normalized
	n := s.Subdivisions
	r := float64(s.Radius)
	rads := angles(n)
	ringHeight := r * 2 / float64(n)

	verts := make([]mgl32.Vec3, 0, 2*(n+1))
	for p := 0; p < n; p++ {
		verts = verts[:0]
		next := rads[(p+1)%n]

		for f := 0; f <= n; f++ {
			z := -r + ringHeight*float64(f)
			// Clamp so rounding at the poles cannot push asin out of range.
			ringRadius := float32(math.Cos(math.Asin(lo.Clamp(z/r, -1, 1))) * r)

			verts = append(verts,
				ringPoint(rads[p], ringRadius, float32(z)),
				ringPoint(next, ringRadius, float32(z)),
			)
		}

		size := len(verts)
		for i := 0; i < size-2; i += 2 {
			a.AddQuad(verts[i%size], verts[(i+1)%size], verts[(i+2)%size], verts[(i+3)%size])
		}
	}
}

// VertexCount is n quads in each of n slices, or a cube's count when degraded.
func (s Sphere) VertexCount() int {
	normalized, ok := s.Normalize().(Sphere)
	if !ok {
		return boxVertexCount
	}
	n := normalized.Subdivisions
	quadsPerSlice := (2*(n+1) - 2) / 2
	return 6 * quadsPerSlice * n
}
