package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var _ Shape = Torus{}

// Torus is a ring with SubdivisionsA slices around the Z axis and
// SubdivisionsB faces per slice.
//
// The vertex placement is known not to trace a torus surface: every slice
// is a unit circle offset from the slice center, tilted by z = sin(θ), and
// ignores InnerRadius. Only the parameter clamping and the emission shape
// (⌊A·B/2⌋ quads, no panics for any input) are relied on. The generator is
// kept behind Shape so it can be swapped without touching callers.
type Torus struct {
	OuterRadius   float32
	InnerRadius   float32
	SubdivisionsA int
	SubdivisionsB int
}

func (t Torus) Kind() string { return "torus" }

func (t Torus) Normalize() Shape {
	outer, inner := clampRadii(t.OuterRadius, t.InnerRadius)
	return Torus{
		OuterRadius:   outer,
		InnerRadius:   inner,
		SubdivisionsA: clampSubdivisions(t.SubdivisionsA),
		SubdivisionsB: clampSubdivisions(t.SubdivisionsB),
	}
}

func (t Torus) Emit(a Assembler) {
	t = t.Normalize().(Torus)
	slices, faces := t.SubdivisionsA, t.SubdivisionsB

	// Distance from the origin to the center of each slice.
	sliceRadius := (t.OuterRadius - t.InnerRadius) + t.InnerRadius

	verts := make([]mgl32.Vec3, 0, slices*faces)
	for _, rad := range angles(slices) {
		cx := float32(math.Cos(rad)) * sliceRadius
		cy := float32(math.Sin(rad)) * sliceRadius

		for f := 0; f < faces; f++ {
			theta := 2 * math.Pi * float64(f) / float64(faces)
			verts = append(verts, mgl32.Vec3{
				cx + float32(math.Cos(theta)),
				cy + float32(math.Sin(theta)),
				float32(math.Sin(theta)),
			})
		}
	}

	size := len(verts)
	for i := 0; i < size/2; i++ {
		a.AddQuad(verts[i], verts[(i+faces)%size], verts[i+1], verts[(i+faces+1)%size])
	}
}

func (t Torus) VertexCount() int {
	n := t.Normalize().(Torus)
	return 6 * (n.SubdivisionsA * n.SubdivisionsB / 2)
}
