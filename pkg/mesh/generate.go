package mesh

import (
	"github.com/chazu/primmesh/pkg/shape"
	"github.com/go-gl/mathgl/mgl32"
)

// Generate discards the current geometry and GPU resources, emits s, pads
// every vertex with color and compiles the result.
func (m *Mesh) Generate(s shape.Shape, color mgl32.Vec3) {
	m.Release()

	if n := s.VertexCount(); n > cap(m.positions) {
		m.positions = make([]mgl32.Vec3, 0, n)
	}

	s.Emit(m)

	m.CompleteMesh(color)
	m.Compile()

	m.log.Debug("mesh generated", "kind", s.Kind(), "vertices", m.vertexCount)
}

// GenerateCube builds a cube with edge length size.
func (m *Mesh) GenerateCube(size float32, color mgl32.Vec3) {
	m.Generate(shape.Cube{Size: size}, color)
}

// GenerateCuboid builds a box with the given edge lengths.
func (m *Mesh) GenerateCuboid(dimensions, color mgl32.Vec3) {
	m.Generate(shape.Cuboid{Dimensions: dimensions}, color)
}

// GenerateCone builds a cone with its apex at +height/2.
func (m *Mesh) GenerateCone(radius, height float32, subdivisions int, color mgl32.Vec3) {
	m.Generate(shape.Cone{Radius: radius, Height: height, Subdivisions: subdivisions}, color)
}

// GenerateCylinder builds a closed cylinder.
func (m *Mesh) GenerateCylinder(radius, height float32, subdivisions int, color mgl32.Vec3) {
	m.Generate(shape.Cylinder{Radius: radius, Height: height, Subdivisions: subdivisions}, color)
}

// GenerateTube builds an extruded annulus.
func (m *Mesh) GenerateTube(outerRadius, innerRadius, height float32, subdivisions int, color mgl32.Vec3) {
	m.Generate(shape.Tube{
		OuterRadius:  outerRadius,
		InnerRadius:  innerRadius,
		Height:       height,
		Subdivisions: subdivisions,
	}, color)
}

// GenerateTorus builds the torus approximation described on shape.Torus.
func (m *Mesh) GenerateTorus(outerRadius, innerRadius float32, subdivisionsA, subdivisionsB int, color mgl32.Vec3) {
	m.Generate(shape.Torus{
		OuterRadius:   outerRadius,
		InnerRadius:   innerRadius,
		SubdivisionsA: subdivisionsA,
		SubdivisionsB: subdivisionsB,
	}, color)
}

// GenerateSphere builds a sphere; fewer than one subdivision yields a cube.
func (m *Mesh) GenerateSphere(radius float32, subdivisions int, color mgl32.Vec3) {
	m.Generate(shape.Sphere{Radius: radius, Subdivisions: subdivisions}, color)
}
