package shape

import "github.com/go-gl/mathgl/mgl32"

var _ Shape = Tube{}

// Tube is an annulus between InnerRadius and OuterRadius extruded along Height.
type Tube struct {
	OuterRadius  float32
	InnerRadius  float32
	Height       float32
	Subdivisions int
}

func (t Tube) Kind() string { return "tube" }

func (t Tube) Normalize() Shape {
	outer, inner := clampRadii(t.OuterRadius, t.InnerRadius)
	return Tube{
		OuterRadius:  outer,
		InnerRadius:  inner,
		Height:       clampExtent(t.Height),
		Subdivisions: clampSubdivisions(t.Subdivisions),
	}
}

// Emit computes eight points per angular step and walks them two at a time,
// wrapping around the eight, emitting one quad per pair. The resulting set
// of faces per step is fixed and reproducible: the four quads overlap each
// other rather than forming a minimal annular segment.
func (t Tube) Emit(a Assembler) {
	t = t.Normalize().(Tube)
	n := t.Subdivisions
	half := t.Height / 2
	rads := angles(n)

	step := make([]mgl32.Vec3, 0, tubeStepPoints)
	for p := 0; p < n; p++ {
		cur, next := rads[p], rads[(p+1)%n]
		step = append(step[:0],
			ringPoint(cur, t.OuterRadius, half),
			ringPoint(next, t.OuterRadius, half),
			ringPoint(cur, t.InnerRadius, half),
			ringPoint(next, t.InnerRadius, half),
			ringPoint(cur, t.InnerRadius, -half),
			ringPoint(next, t.InnerRadius, -half),
			ringPoint(cur, t.OuterRadius, -half),
			ringPoint(next, t.OuterRadius, -half),
		)

		size := len(step)
		for i := 0; i < size; i += 2 {
			a.AddQuad(step[i%size], step[(i+1)%size], step[(i+2)%size], step[(i+3)%size])
		}
	}
}

// tubeStepPoints is the number of points computed per angular step.
const tubeStepPoints = 8

// VertexCount is four quads per step.
func (t Tube) VertexCount() int {
	return (tubeStepPoints / 2) * 6 * clampSubdivisions(t.Subdivisions)
}
