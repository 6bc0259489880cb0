package shape

import "github.com/go-gl/mathgl/mgl32"

var _ Shape = Cylinder{}

// Cylinder is a closed circular cylinder spanning -Height/2 to +Height/2.
type Cylinder struct {
	Radius       float32
	Height       float32
	Subdivisions int
}

func (c Cylinder) Kind() string { return "cylinder" }

func (c Cylinder) Normalize() Shape {
	return Cylinder{
		Radius:       clampExtent(c.Radius),
		Height:       clampExtent(c.Height),
		Subdivisions: clampSubdivisions(c.Subdivisions),
	}
}

func (c Cylinder) Emit(a Assembler) {
	c = c.Normalize().(Cylinder)
	n := c.Subdivisions
	half := c.Height / 2
	rads := angles(n)

	// Caps: side 0 is the bottom, side 1 the top. The fans wind in
	// opposite directions so both caps face outward.
	for side := 0; side < 2; side++ {
		z := -half
		if side == 1 {
			z = half
		}
		center := mgl32.Vec3{0, 0, z}
		rim := ring(rads, c.Radius, z)
		for i := 0; i < n; i++ {
			if side == 1 {
				a.AddTri(center, rim[i], rim[(i+1)%n])
			} else {
				a.AddTri(center, rim[(i+1)%n], rim[i])
			}
		}
	}

	// Wall: four points per step, one quad per step.
	wall := make([]mgl32.Vec3, 0, 4*n)
	for i := 0; i < n; i++ {
		next := rads[(i+1)%n]
		wall = append(wall,
			ringPoint(rads[i], c.Radius, half),
			ringPoint(rads[i], c.Radius, -half),
			ringPoint(next, c.Radius, half),
			ringPoint(next, c.Radius, -half),
		)
	}
	for i := 0; i < len(wall); i += 4 {
		a.AddQuad(wall[i], wall[i+1], wall[i+2], wall[i+3])
	}
}

// VertexCount is two n-triangle caps plus n wall quads.
func (c Cylinder) VertexCount() int {
	return 12 * clampSubdivisions(c.Subdivisions)
}
