package mesh

import (
	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// SolidTint tells the Basic program to use the vertex colors.
	SolidTint = mgl32.Vec3{-1, -1, -1}
	// WireTint colors the wireframe overlay.
	WireTint = mgl32.Vec3{1, 0, 1}
)

// Uniform names read by the Basic program.
const (
	uniformMVP  = "MVP"
	uniformWire = "wire"
)

// Render draws the mesh twice with MVP = projection·view·model: once filled
// in its vertex colors, then as a tinted wireframe pulled toward the camera
// so it does not z-fight the fill. Unbound or empty meshes are skipped.
func (m *Mesh) Render(projection, view, model mgl32.Mat4) {
	if !m.bound || m.vertexCount == 0 {
		return
	}

	program := m.shaders.Program(shader.Basic)
	m.dev.UseProgram(program)

	m.dev.BindVertexArray(m.vao)

	mvpLoc := m.dev.UniformLocation(program, uniformMVP)
	wireLoc := m.dev.UniformLocation(program, uniformWire)

	mvp := projection.Mul4(view).Mul4(model)
	m.dev.UniformMatrix4(mvpLoc, mvp)

	count := int32(m.vertexCount)

	// solid
	m.dev.Uniform3(wireLoc, SolidTint)
	m.dev.SetPolygonMode(gpu.Fill)
	m.dev.DrawTriangles(0, count)

	// wire
	m.dev.Uniform3(wireLoc, WireTint)
	m.dev.SetPolygonMode(gpu.Line)
	m.dev.SetLineOffset(true)
	m.dev.PolygonOffset(-1, -1)
	m.dev.DrawTriangles(0, count)
	m.dev.SetLineOffset(false)

	m.dev.BindVertexArray(0)
}
