// Package gputest provides a recording gpu.Backend for tests and headless runs.
// The Recorder hands out increasing handles, tracks which vertex arrays and
// buffers are alive, and keeps an ordered log of every call it receives.
package gputest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Compile-time interface check.
var _ gpu.Backend = (*Recorder)(nil)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Attrib is a recorded vertex attribute declaration.
type Attrib struct {
	Index  uint32
	Size   int32
	Stride int32
	Offset int
}

// Draw is a recorded draw submission together with the state it ran under.
type Draw struct {
	First, Count int32
	Program      uint32
	VAO          uint32
	Mode         gpu.PolygonMode
	LineOffset   bool
	Uniforms     map[string]any
}

// Recorder is an in-memory gpu.Backend. The zero value is ready to use.
type Recorder struct {
	// FailCompile makes CompileProgram return an error.
	FailCompile bool

	Calls   []Call
	Attribs []Attrib
	Draws   []Draw
	Uploads [][]float32

	next        uint32
	liveVAOs    map[uint32]bool
	liveBuffers map[uint32]bool
	programs    map[uint32]bool

	program    uint32
	vao        uint32
	mode       gpu.PolygonMode
	lineOffset bool
	locations  map[int32]string
	uniforms   map[string]any
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) GenVertexArray() uint32 {
	if r.liveVAOs == nil {
		r.liveVAOs = make(map[uint32]bool)
	}
	h := r.handle()
	r.liveVAOs[h] = true
	r.record("GenVertexArray", h)
	return h
}

func (r *Recorder) GenBuffer() uint32 {
	if r.liveBuffers == nil {
		r.liveBuffers = make(map[uint32]bool)
	}
	h := r.handle()
	r.liveBuffers[h] = true
	r.record("GenBuffer", h)
	return h
}

func (r *Recorder) BindVertexArray(vao uint32) {
	r.vao = vao
	r.record("BindVertexArray", vao)
}

func (r *Recorder) BindArrayBuffer(vbo uint32) {
	r.record("BindArrayBuffer", vbo)
}

func (r *Recorder) BufferStaticData(data []float32) {
	r.Uploads = append(r.Uploads, slices.Clone(data))
	r.record("BufferStaticData", len(data))
}

func (r *Recorder) EnableVertexAttrib(index uint32) {
	r.record("EnableVertexAttrib", index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	r.Attribs = append(r.Attribs, Attrib{Index: index, Size: size, Stride: stride, Offset: offset})
	r.record("VertexAttribPointer", index, size, stride, offset)
}

func (r *Recorder) DeleteVertexArray(vao uint32) {
	delete(r.liveVAOs, vao)
	r.record("DeleteVertexArray", vao)
}

func (r *Recorder) DeleteBuffer(vbo uint32) {
	delete(r.liveBuffers, vbo)
	r.record("DeleteBuffer", vbo)
}

func (r *Recorder) UseProgram(program uint32) {
	r.program = program
	r.record("UseProgram", program)
}

// UniformLocation returns a stable location per name, or -1 for an empty name.
func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	if name == "" {
		return -1
	}
	if r.locations == nil {
		r.locations = make(map[int32]string)
	}
	for loc, n := range r.locations {
		if n == name {
			return loc
		}
	}
	loc := int32(len(r.locations))
	r.locations[loc] = name
	r.record("UniformLocation", program, name)
	return loc
}

func (r *Recorder) setUniform(location int32, v any) {
	if r.uniforms == nil {
		r.uniforms = make(map[string]any)
	}
	if name, ok := r.locations[location]; ok {
		r.uniforms[name] = v
	}
}

func (r *Recorder) UniformMatrix4(location int32, m mgl32.Mat4) {
	r.setUniform(location, m)
	r.record("UniformMatrix4", location)
}

func (r *Recorder) Uniform3(location int32, v mgl32.Vec3) {
	r.setUniform(location, v)
	r.record("Uniform3", location, v)
}

func (r *Recorder) SetPolygonMode(mode gpu.PolygonMode) {
	r.mode = mode
	r.record("SetPolygonMode", mode)
}

func (r *Recorder) SetLineOffset(enabled bool) {
	r.lineOffset = enabled
	r.record("SetLineOffset", enabled)
}

func (r *Recorder) PolygonOffset(factor, units float32) {
	r.record("PolygonOffset", factor, units)
}

func (r *Recorder) DrawTriangles(first, count int32) {
	uniforms := make(map[string]any, len(r.uniforms))
	for k, v := range r.uniforms {
		uniforms[k] = v
	}
	r.Draws = append(r.Draws, Draw{
		First:      first,
		Count:      count,
		Program:    r.program,
		VAO:        r.vao,
		Mode:       r.mode,
		LineOffset: r.lineOffset,
		Uniforms:   uniforms,
	})
	r.record("DrawTriangles", first, count)
}

func (r *Recorder) Viewport(width, height int32) {
	r.record("Viewport", width, height)
}

func (r *Recorder) EnableDepthTest() {
	r.record("EnableDepthTest")
}

func (r *Recorder) Clear(background mgl32.Vec3) {
	r.record("Clear", background)
}

func (r *Recorder) CompileProgram(vertexSource, fragmentSource string) (uint32, error) {
	if r.FailCompile {
		return 0, errors.New("gputest: compile failed")
	}
	if vertexSource == "" || fragmentSource == "" {
		return 0, errors.New("gputest: empty shader source")
	}
	if r.programs == nil {
		r.programs = make(map[uint32]bool)
	}
	h := r.handle()
	r.programs[h] = true
	r.record("CompileProgram", h)
	return h, nil
}

func (r *Recorder) DeleteProgram(program uint32) {
	delete(r.programs, program)
	r.record("DeleteProgram", program)
}

// LiveVertexArrays returns the number of vertex arrays not yet deleted.
func (r *Recorder) LiveVertexArrays() int { return len(r.liveVAOs) }

// LiveBuffers returns the number of buffers not yet deleted.
func (r *Recorder) LiveBuffers() int { return len(r.liveBuffers) }

// LivePrograms returns the number of programs not yet deleted.
func (r *Recorder) LivePrograms() int { return len(r.programs) }

// IsLiveVertexArray reports whether vao was generated and not deleted.
func (r *Recorder) IsLiveVertexArray(vao uint32) bool { return r.liveVAOs[vao] }

// IsLiveBuffer reports whether vbo was generated and not deleted.
func (r *Recorder) IsLiveBuffer(vbo uint32) bool { return r.liveBuffers[vbo] }

// CallNames returns the names of all recorded calls in order.
func (r *Recorder) CallNames() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many times the named call was recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Index returns the position of the first call with the given name after
// position from, or -1.
func (r *Recorder) Index(name string, from int) int {
	for i := from; i < len(r.Calls); i++ {
		if r.Calls[i].Name == name {
			return i
		}
	}
	return -1
}

// Reset clears the call log but keeps live handle bookkeeping.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Attribs = nil
	r.Draws = nil
	r.Uploads = nil
}
