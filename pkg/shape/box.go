package shape

import "github.com/go-gl/mathgl/mgl32"

// Compile-time interface checks.
var _ Shape = Cube{}
var _ Shape = Cuboid{}

// Cube is an axis-aligned cube with edge length Size.
type Cube struct {
	Size float32
}

func (c Cube) Kind() string { return "cube" }

func (c Cube) Normalize() Shape {
	return Cube{Size: clampExtent(c.Size)}
}

func (c Cube) Emit(a Assembler) {
	half := clampExtent(c.Size) * 0.5
	emitBox(a, mgl32.Vec3{half, half, half})
}

func (c Cube) VertexCount() int { return boxVertexCount }

// Cuboid is an axis-aligned box with independent X, Y, Z edge lengths.
type Cuboid struct {
	Dimensions mgl32.Vec3
}

func (c Cuboid) Kind() string { return "cuboid" }

func (c Cuboid) Normalize() Shape {
	return Cuboid{Dimensions: mgl32.Vec3{
		clampExtent(c.Dimensions.X()),
		clampExtent(c.Dimensions.Y()),
		clampExtent(c.Dimensions.Z()),
	}}
}

func (c Cuboid) Emit(a Assembler) {
	emitBox(a, c.Normalize().(Cuboid).Dimensions.Mul(0.5))
}

func (c Cuboid) VertexCount() int { return boxVertexCount }

// boxVertexCount is six faces of two triangles each.
const boxVertexCount = 6 * 2 * 3

// emitBox emits the six faces of a box with the given half-extents,
// each ordered so its normal points away from the center.
//
//	3--2
//	|  |
//	0--1
//
// Corners 0-3 are the +Z face, 4-7 the -Z face.
func emitBox(a Assembler, h mgl32.Vec3) {
	p0 := mgl32.Vec3{-h.X(), -h.Y(), h.Z()}
	p1 := mgl32.Vec3{h.X(), -h.Y(), h.Z()}
	p2 := mgl32.Vec3{h.X(), h.Y(), h.Z()}
	p3 := mgl32.Vec3{-h.X(), h.Y(), h.Z()}

	p4 := mgl32.Vec3{-h.X(), -h.Y(), -h.Z()}
	p5 := mgl32.Vec3{h.X(), -h.Y(), -h.Z()}
	p6 := mgl32.Vec3{h.X(), h.Y(), -h.Z()}
	p7 := mgl32.Vec3{-h.X(), h.Y(), -h.Z()}

	// front
	a.AddQuad(p0, p1, p3, p2)
	// back
	a.AddQuad(p5, p4, p6, p7)
	// left
	a.AddQuad(p4, p0, p7, p3)
	// right
	a.AddQuad(p1, p5, p2, p6)
	// up
	a.AddQuad(p3, p2, p7, p6)
	// down
	a.AddQuad(p4, p5, p0, p1)
}
