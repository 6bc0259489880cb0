// Package mesh accumulates a triangle soup of positions and colors,
// compiles it into one interleaved GPU vertex buffer and draws it as a
// filled pass followed by a wireframe overlay.
//
// A Mesh is bound to the thread that owns the graphics context. It holds no
// locks; callers must not regenerate or release a mesh while it is drawn.
package mesh

import (
	"log/slog"

	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/chazu/primmesh/pkg/shape"
	"github.com/go-gl/mathgl/mgl32"
)

// Compile-time interface check.
var _ shape.Assembler = (*Mesh)(nil)

// DefaultColor pads vertices that were never given a color when Compile is
// called without a preceding CompleteMesh.
var DefaultColor = mgl32.Vec3{1, 1, 1}

// noCopy makes `go vet` flag copies of a Mesh. A copy would share GPU
// handles with the original; use Clone instead.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Mesh owns a vertex stream and the GPU vertex array and buffer built from it.
type Mesh struct {
	noCopy noCopy

	dev     gpu.Device
	shaders shader.Lookup
	log     *slog.Logger

	positions []mgl32.Vec3
	colors    []mgl32.Vec3
	// interleaved holds position, color pairs once compiled.
	interleaved []mgl32.Vec3
	vertexCount int

	bound bool
	vao   uint32
	vbo   uint32
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mesh) {
		if log != nil {
			m.log = log
		}
	}
}

// New returns an empty, unbound Mesh that draws through dev and resolves
// programs through shaders. The mesh does not own either.
func New(dev gpu.Device, shaders shader.Lookup, opts ...Option) *Mesh {
	m := &Mesh{
		dev:     dev,
		shaders: shaders,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// VertexCount returns the number of positions added so far.
func (m *Mesh) VertexCount() int { return m.vertexCount }

// Bound reports whether GPU resources are allocated for this mesh.
func (m *Mesh) Bound() bool { return m.bound }

// Handles returns the vertex array and buffer handles, zero when unbound.
func (m *Mesh) Handles() (vao, vbo uint32) { return m.vao, m.vbo }

// Positions returns the accumulated positions. The slice must not be modified.
func (m *Mesh) Positions() []mgl32.Vec3 { return m.positions }

// Colors returns the accumulated colors. The slice must not be modified.
func (m *Mesh) Colors() []mgl32.Vec3 { return m.colors }

// Interleaved returns the compiled position, color sequence, empty until
// the mesh is compiled. The slice must not be modified.
func (m *Mesh) Interleaved() []mgl32.Vec3 { return m.interleaved }

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return m.vertexCount == 0 }

// Release frees any GPU resources and discards all geometry, returning the
// mesh to its empty, unbound state. It is safe to call repeatedly.
func (m *Mesh) Release() {
	if m.vbo > 0 {
		m.dev.DeleteBuffer(m.vbo)
		m.vbo = 0
	}
	if m.vao > 0 {
		m.dev.DeleteVertexArray(m.vao)
		m.vao = 0
	}
	if m.bound {
		m.log.Debug("mesh released", "vertices", m.vertexCount)
	}

	m.bound = false
	m.vertexCount = 0
	m.positions = nil
	m.colors = nil
	m.interleaved = nil
}

// Clone returns an independent deep copy. A bound source is compiled again
// into freshly allocated GPU resources.
func (m *Mesh) Clone() *Mesh {
	c := New(m.dev, m.shaders, WithLogger(m.log))
	c.positions = append([]mgl32.Vec3(nil), m.positions...)
	c.colors = append([]mgl32.Vec3(nil), m.colors...)
	c.vertexCount = m.vertexCount
	if m.bound {
		c.Compile()
	}
	return c
}
