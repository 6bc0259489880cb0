package mesh

import "github.com/go-gl/mathgl/mgl32"

// AddVertexPosition appends p. The vertex count follows the position count.
func (m *Mesh) AddVertexPosition(p mgl32.Vec3) {
	m.positions = append(m.positions, p)
	m.vertexCount = len(m.positions)
}

// AddVertexColor appends c. It is not checked against the vertex count.
func (m *Mesh) AddVertexColor(c mgl32.Vec3) {
	m.colors = append(m.colors, c)
}

// CompleteMesh pads the colors with color until there is one per vertex.
// Extra colors are left in place.
func (m *Mesh) CompleteMesh(color mgl32.Vec3) {
	for i := len(m.colors); i < m.vertexCount; i++ {
		m.colors = append(m.colors, color)
	}
}

// AddTri appends a triangle. The argument order decides the winding.
//
//	C
//	| \
//	A--B
func (m *Mesh) AddTri(a, b, c mgl32.Vec3) {
	m.AddVertexPosition(a)
	m.AddVertexPosition(b)
	m.AddVertexPosition(c)
}

// AddQuad appends the triangles A->B->C and C->B->D. Corners must be given
// bottom-left, bottom-right, top-left, top-right as seen from the side the
// quad should face.
//
//	C--D
//	|  |
//	A--B
func (m *Mesh) AddQuad(bottomLeft, bottomRight, topLeft, topRight mgl32.Vec3) {
	m.AddVertexPosition(bottomLeft)
	m.AddVertexPosition(bottomRight)
	m.AddVertexPosition(topLeft)

	m.AddVertexPosition(topLeft)
	m.AddVertexPosition(bottomRight)
	m.AddVertexPosition(topRight)
}
