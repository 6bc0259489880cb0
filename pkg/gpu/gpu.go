// Package gpu defines the graphics-call surface used by meshes.
// Implementations (glcore, gputest) issue or record the calls behind this
// interface, so mesh compilation and rendering can be exercised without a
// live graphics context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// FloatSize is the size in bytes of one float32 component.
const FloatSize = 4

// Vec3Size is the size in bytes of one three-component float vector.
const Vec3Size = 3 * FloatSize

// PolygonMode selects how triangles are rasterized.
type PolygonMode int

const (
	// Fill rasterizes the interior of every triangle.
	Fill PolygonMode = iota
	// Line rasterizes only triangle edges.
	Line
)

func (p PolygonMode) String() string {
	switch p {
	case Fill:
		return "fill"
	case Line:
		return "line"
	}
	return "unknown"
}

// Device is the abstract graphics device.
// All calls must happen on the thread that owns the graphics context.
type Device interface {
	// Vertex storage
	GenVertexArray() uint32
	GenBuffer() uint32
	BindVertexArray(vao uint32)
	BindArrayBuffer(vbo uint32)
	BufferStaticData(data []float32)
	EnableVertexAttrib(index uint32)
	VertexAttribPointer(index uint32, size, stride int32, offset int)
	DeleteVertexArray(vao uint32)
	DeleteBuffer(vbo uint32)

	// Programs and uniforms
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	UniformMatrix4(location int32, m mgl32.Mat4)
	Uniform3(location int32, v mgl32.Vec3)

	// Rasterization state and drawing
	SetPolygonMode(mode PolygonMode)
	SetLineOffset(enabled bool)
	PolygonOffset(factor, units float32)
	DrawTriangles(first, count int32)
}

// Compiler builds shader programs from source.
type Compiler interface {
	CompileProgram(vertexSource, fragmentSource string) (uint32, error)
	DeleteProgram(program uint32)
}

// Framer prepares the default framebuffer for each frame.
type Framer interface {
	Viewport(width, height int32)
	EnableDepthTest()
	Clear(background mgl32.Vec3)
}

// Backend is a Device that can also build its own shader programs and
// drive the frame.
type Backend interface {
	Device
	Compiler
	Framer
}
