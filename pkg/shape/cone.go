package shape

import "github.com/go-gl/mathgl/mgl32"

var _ Shape = Cone{}

// Cone has its base circle at -Height/2 and its apex at +Height/2.
type Cone struct {
	Radius       float32
	Height       float32
	Subdivisions int
}

func (c Cone) Kind() string { return "cone" }

func (c Cone) Normalize() Shape {
	return Cone{
		Radius:       clampExtent(c.Radius),
		Height:       clampExtent(c.Height),
		Subdivisions: clampSubdivisions(c.Subdivisions),
	}
}

// Emit builds the base as a fan around the base center and the side as a
// fan around the apex. The apex fan walks the ring in reverse so its
// triangles face the opposite way from the base.
func (c Cone) Emit(a Assembler) {
	c = c.Normalize().(Cone)
	n := c.Subdivisions
	half := c.Height / 2

	bottom := mgl32.Vec3{0, 0, -half}
	top := mgl32.Vec3{0, 0, half}
	rads := angles(n)

	base := ring(rads, c.Radius, bottom.Z())
	for i := 0; i < n; i++ {
		a.AddTri(bottom, base[i], base[(i+1)%n])
	}

	side := ring(rads, c.Radius, bottom.Z())
	for i := 0; i < n; i++ {
		a.AddTri(top, side[(i+1)%n], side[i])
	}
}

// VertexCount is n base triangles plus n side triangles.
func (c Cone) VertexCount() int {
	return 6 * clampSubdivisions(c.Subdivisions)
}
