package mesh

import (
	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex attribute layout of the interleaved buffer.
const (
	PositionAttrib = 0
	ColorAttrib    = 1

	// VertexStride is the byte distance between consecutive vertices.
	VertexStride = 2 * gpu.Vec3Size
)

// Compile interleaves positions and colors, uploads them once to a new
// vertex buffer and declares the position and color attributes.
// It does nothing when the mesh is already bound or has no vertices.
func (m *Mesh) Compile() {
	if m.bound || m.vertexCount == 0 {
		return
	}

	m.CompleteMesh(DefaultColor)

	m.interleaved = make([]mgl32.Vec3, 0, 2*m.vertexCount)
	for i := 0; i < m.vertexCount; i++ {
		m.interleaved = append(m.interleaved, m.positions[i], m.colors[i])
	}

	m.vao = m.dev.GenVertexArray()
	m.vbo = m.dev.GenBuffer()

	m.dev.BindVertexArray(m.vao)
	m.dev.BindArrayBuffer(m.vbo)
	m.dev.BufferStaticData(flatten(m.interleaved))

	m.dev.EnableVertexAttrib(PositionAttrib)
	m.dev.VertexAttribPointer(PositionAttrib, 3, VertexStride, 0)

	m.dev.EnableVertexAttrib(ColorAttrib)
	m.dev.VertexAttribPointer(ColorAttrib, 3, VertexStride, gpu.Vec3Size)

	m.bound = true

	m.dev.BindVertexArray(0)

	m.log.Debug("mesh compiled", "vertices", m.vertexCount, "vao", m.vao, "vbo", m.vbo)
}

// flatten lays vectors out as consecutive float32 components.
func flatten(vs []mgl32.Vec3) []float32 {
	out := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}
