//go:build cgo

// Package glcore implements gpu.Backend on an OpenGL 4.1 core profile
// context through github.com/go-gl/gl. When cgo is disabled a stub is
// compiled instead, returning an error from New().
//
// New must be called after a context has been made current on the calling
// thread, and every method must be called from that thread.
package glcore

import (
	"fmt"
	"strings"

	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Compile-time interface check.
var _ gpu.Backend = (*Device)(nil)

// Device issues OpenGL calls against the current context.
type Device struct{}

// New loads the OpenGL function pointers for the current context.
func New() (gpu.Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glcore: init: %w", err)
	}
	return &Device{}, nil
}

// Version reports the driver's GL version string.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) GenBuffer() uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return vbo
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (d *Device) BindArrayBuffer(vbo uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
}

// BufferStaticData uploads data once to the bound array buffer.
func (d *Device) BufferStaticData(data []float32) {
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*gpu.FloatSize, gl.Ptr(&data[0]), gl.STATIC_DRAW)
}

func (d *Device) EnableVertexAttrib(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *Device) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, stride, uintptr(offset))
}

func (d *Device) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) DeleteBuffer(vbo uint32) {
	gl.DeleteBuffers(1, &vbo)
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Device) Uniform3(location int32, v mgl32.Vec3) {
	gl.Uniform3f(location, v[0], v[1], v[2])
}

func (d *Device) SetPolygonMode(mode gpu.PolygonMode) {
	switch mode {
	case gpu.Line:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	default:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (d *Device) SetLineOffset(enabled bool) {
	if enabled {
		gl.Enable(gl.POLYGON_OFFSET_LINE)
		return
	}
	gl.Disable(gl.POLYGON_OFFSET_LINE)
}

func (d *Device) PolygonOffset(factor, units float32) {
	gl.PolygonOffset(factor, units)
}

func (d *Device) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (d *Device) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

func (d *Device) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
}

// Clear clears color and depth.
func (d *Device) Clear(background mgl32.Vec3) {
	gl.ClearColor(background.X(), background.Y(), background.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// CompileProgram compiles and links a vertex/fragment shader pair.
// The intermediate shader objects are deleted once linked.
func (d *Device) CompileProgram(vertexSource, fragmentSource string) (uint32, error) {
	vs, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("glcore: vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("glcore: fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("glcore: link failed: %s", strings.TrimRight(log, "\x00"))
	}

	return program, nil
}

func (d *Device) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

// compileShader compiles a single shader stage.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}
