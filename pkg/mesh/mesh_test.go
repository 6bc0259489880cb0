package mesh

import (
	"testing"

	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/chazu/primmesh/pkg/gpu/gputest"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/go-gl/mathgl/mgl32"
)

const basicProgram = 42

var red = mgl32.Vec3{1, 0, 0}

// newTestMesh returns a mesh on a recording device with the Basic program
// registered.
func newTestMesh(t *testing.T) (*Mesh, *gputest.Recorder) {
	t.Helper()
	dev := gputest.New()
	reg := shader.NewRegistry(nil)
	reg.Register(shader.Basic, basicProgram)
	return New(dev, reg), dev
}

// ---------------------------------------------------------------------------
// Accumulator
// ---------------------------------------------------------------------------

func TestAddVertexPosition(t *testing.T) {
	m, _ := newTestMesh(t)
	m.AddVertexPosition(mgl32.Vec3{1, 2, 3})
	m.AddVertexPosition(mgl32.Vec3{4, 5, 6})

	if m.VertexCount() != 2 {
		t.Fatalf("VertexCount() = %d, want 2", m.VertexCount())
	}
	if m.Positions()[1] != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("Positions()[1] = %v", m.Positions()[1])
	}
	if m.IsEmpty() {
		t.Error("mesh with positions reported empty")
	}
}

func TestAddVertexColorUnchecked(t *testing.T) {
	m, _ := newTestMesh(t)
	m.AddVertexColor(red)
	m.AddVertexColor(red)

	if len(m.Colors()) != 2 {
		t.Fatalf("len(Colors()) = %d, want 2", len(m.Colors()))
	}
	if m.VertexCount() != 0 {
		t.Errorf("colors must not change the vertex count, got %d", m.VertexCount())
	}
}

func TestCompleteMesh(t *testing.T) {
	tests := []struct {
		name       string
		positions  int
		colors     int
		wantColors int
	}{
		{"no colors", 3, 0, 3},
		{"partial colors", 6, 2, 6},
		{"already complete", 3, 3, 3},
		{"more colors than positions", 1, 4, 4},
		{"empty", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMesh(t)
			for i := 0; i < tt.positions; i++ {
				m.AddVertexPosition(mgl32.Vec3{float32(i), 0, 0})
			}
			blue := mgl32.Vec3{0, 0, 1}
			for i := 0; i < tt.colors; i++ {
				m.AddVertexColor(blue)
			}

			m.CompleteMesh(red)

			if got := len(m.Colors()); got != tt.wantColors {
				t.Fatalf("len(Colors()) = %d, want %d", got, tt.wantColors)
			}
			for i := tt.colors; i < tt.wantColors; i++ {
				if m.Colors()[i] != red {
					t.Errorf("Colors()[%d] = %v, want padding color %v", i, m.Colors()[i], red)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Assembler
// ---------------------------------------------------------------------------

func TestAddTriOrder(t *testing.T) {
	m, _ := newTestMesh(t)
	a, b, c := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	m.AddTri(a, b, c)

	want := []mgl32.Vec3{a, b, c}
	for i, p := range m.Positions() {
		if p != want[i] {
			t.Errorf("position %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestAddQuadOrder(t *testing.T) {
	m, _ := newTestMesh(t)
	bl := mgl32.Vec3{0, 0, 0}
	br := mgl32.Vec3{1, 0, 0}
	tl := mgl32.Vec3{0, 1, 0}
	tr := mgl32.Vec3{1, 1, 0}
	m.AddQuad(bl, br, tl, tr)

	want := []mgl32.Vec3{bl, br, tl, tl, br, tr}
	if m.VertexCount() != len(want) {
		t.Fatalf("VertexCount() = %d, want %d", m.VertexCount(), len(want))
	}
	for i, p := range m.Positions() {
		if p != want[i] {
			t.Errorf("position %d = %v, want %v", i, p, want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Compiler
// ---------------------------------------------------------------------------

func TestCompileLayout(t *testing.T) {
	m, dev := newTestMesh(t)
	m.AddTri(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	m.CompleteMesh(red)

	m.Compile()

	if !m.Bound() {
		t.Fatal("mesh not bound after Compile")
	}
	if got := len(m.Interleaved()); got != 2*m.VertexCount() {
		t.Fatalf("len(Interleaved()) = %d, want %d", got, 2*m.VertexCount())
	}
	for i := 0; i < m.VertexCount(); i++ {
		if m.Interleaved()[2*i] != m.Positions()[i] {
			t.Errorf("interleaved[%d] is not position %d", 2*i, i)
		}
		if m.Interleaved()[2*i+1] != m.Colors()[i] {
			t.Errorf("interleaved[%d] is not color %d", 2*i+1, i)
		}
	}

	if len(dev.Uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(dev.Uploads))
	}
	upload := dev.Uploads[0]
	if len(upload) != 6*m.VertexCount() {
		t.Fatalf("uploaded %d floats, want %d", len(upload), 6*m.VertexCount())
	}
	// Second vertex: position (1,0,0) then color (1,0,0).
	if upload[6] != 1 || upload[9] != 1 || upload[10] != 0 {
		t.Errorf("unexpected upload layout: %v", upload[6:12])
	}

	want := []gputest.Attrib{
		{Index: PositionAttrib, Size: 3, Stride: 2 * gpu.Vec3Size, Offset: 0},
		{Index: ColorAttrib, Size: 3, Stride: 2 * gpu.Vec3Size, Offset: gpu.Vec3Size},
	}
	if len(dev.Attribs) != len(want) {
		t.Fatalf("attribs = %v, want %v", dev.Attribs, want)
	}
	for i := range want {
		if dev.Attribs[i] != want[i] {
			t.Errorf("attrib %d = %+v, want %+v", i, dev.Attribs[i], want[i])
		}
	}

	// The vertex array is unbound at the end.
	last := dev.Calls[len(dev.Calls)-1]
	if last.Name != "BindVertexArray" || last.Args[0] != uint32(0) {
		t.Errorf("last call = %v, want BindVertexArray[0]", last)
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	m, dev := newTestMesh(t)
	m.AddTri(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	m.Compile()
	m.Compile()

	if n := dev.Count("GenBuffer"); n != 1 {
		t.Errorf("GenBuffer called %d times, want 1", n)
	}
	if n := dev.Count("BufferStaticData"); n != 1 {
		t.Errorf("BufferStaticData called %d times, want 1", n)
	}
}

func TestCompileEmptyIsNoop(t *testing.T) {
	m, dev := newTestMesh(t)
	m.Compile()

	if m.Bound() {
		t.Error("empty mesh should not bind")
	}
	if len(dev.Calls) != 0 {
		t.Errorf("expected no device calls, got %v", dev.CallNames())
	}
}

func TestCompilePadsMissingColors(t *testing.T) {
	m, _ := newTestMesh(t)
	m.AddTri(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	m.Compile()

	if len(m.Colors()) != m.VertexCount() {
		t.Fatalf("len(Colors()) = %d, want %d", len(m.Colors()), m.VertexCount())
	}
	if m.Colors()[0] != DefaultColor {
		t.Errorf("Colors()[0] = %v, want DefaultColor", m.Colors()[0])
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestReleaseIsIdempotent(t *testing.T) {
	m, dev := newTestMesh(t)
	m.GenerateCube(1, red)

	m.Release()
	m.Release()

	if m.Bound() || !m.IsEmpty() {
		t.Error("mesh should be empty and unbound after Release")
	}
	if dev.LiveBuffers() != 0 || dev.LiveVertexArrays() != 0 {
		t.Errorf("live buffers=%d arrays=%d, want 0", dev.LiveBuffers(), dev.LiveVertexArrays())
	}
	if n := dev.Count("DeleteBuffer"); n != 1 {
		t.Errorf("DeleteBuffer called %d times, want 1", n)
	}
	vao, vbo := m.Handles()
	if vao != 0 || vbo != 0 {
		t.Errorf("Handles() = %d, %d after Release, want 0, 0", vao, vbo)
	}
}

func TestRegenerateReplacesGeometry(t *testing.T) {
	m, dev := newTestMesh(t)
	m.GenerateCube(1, red)
	oldVAO, oldVBO := m.Handles()

	m.GenerateCone(1, 1, 10, red)
	newVAO, newVBO := m.Handles()

	if m.VertexCount() != 60 {
		t.Fatalf("VertexCount() = %d, want 60", m.VertexCount())
	}
	if len(m.Colors()) != 60 {
		t.Errorf("len(Colors()) = %d, want 60", len(m.Colors()))
	}
	if newVAO == oldVAO || newVBO == oldVBO {
		t.Errorf("regenerated handles (%d,%d) reuse old (%d,%d)", newVAO, newVBO, oldVAO, oldVBO)
	}
	if dev.IsLiveVertexArray(oldVAO) || dev.IsLiveBuffer(oldVBO) {
		t.Error("previous GPU resources leaked")
	}
	if dev.LiveVertexArrays() != 1 || dev.LiveBuffers() != 1 {
		t.Errorf("live arrays=%d buffers=%d, want 1 each", dev.LiveVertexArrays(), dev.LiveBuffers())
	}

	// The old buffer is deleted before the new one is generated.
	del := dev.Index("DeleteBuffer", 0)
	gen := dev.Index("GenBuffer", dev.Index("GenBuffer", 0)+1)
	if del < 0 || gen < 0 || del > gen {
		t.Errorf("DeleteBuffer at %d, second GenBuffer at %d: want delete first", del, gen)
	}
}

func TestClone(t *testing.T) {
	m, dev := newTestMesh(t)
	m.GenerateSphere(1, 4, red)

	c := m.Clone()
	vao, vbo := m.Handles()
	cvao, cvbo := c.Handles()

	if !c.Bound() {
		t.Fatal("clone of a bound mesh should be bound")
	}
	if cvao == vao || cvbo == vbo {
		t.Error("clone must own its own GPU resources")
	}
	if c.VertexCount() != m.VertexCount() {
		t.Errorf("clone VertexCount() = %d, want %d", c.VertexCount(), m.VertexCount())
	}
	if len(dev.Uploads) != 2 {
		t.Errorf("uploads = %d, want a fresh upload for the clone", len(dev.Uploads))
	}

	c.Release()
	if !m.Bound() || !dev.IsLiveBuffer(vbo) {
		t.Error("releasing the clone released the original")
	}
}

func TestCloneUnbound(t *testing.T) {
	m, dev := newTestMesh(t)
	m.AddTri(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})

	c := m.Clone()
	if c.Bound() {
		t.Error("clone of an unbound mesh should be unbound")
	}
	if len(dev.Calls) != 0 {
		t.Errorf("unexpected device calls %v", dev.CallNames())
	}
	c.AddVertexPosition(mgl32.Vec3{})
	if m.VertexCount() != 3 {
		t.Error("clone shares position storage with the original")
	}
}

// ---------------------------------------------------------------------------
// Generators
// ---------------------------------------------------------------------------

func TestGenerateVertexCounts(t *testing.T) {
	tests := []struct {
		name string
		gen  func(m *Mesh)
		want int
	}{
		{"cube", func(m *Mesh) { m.GenerateCube(2, red) }, 36},
		{"cube clamped", func(m *Mesh) { m.GenerateCube(0, red) }, 36},
		{"cuboid", func(m *Mesh) { m.GenerateCuboid(mgl32.Vec3{1, 2, 3}, red) }, 36},
		{"cone", func(m *Mesh) { m.GenerateCone(1, 2, 8, red) }, 48},
		{"cylinder", func(m *Mesh) { m.GenerateCylinder(1, 2, 8, red) }, 96},
		{"tube", func(m *Mesh) { m.GenerateTube(2, 1, 1, 8, red) }, 192},
		{"torus", func(m *Mesh) { m.GenerateTorus(2, 1, 4, 5, red) }, 60},
		{"sphere", func(m *Mesh) { m.GenerateSphere(1, 5, red) }, 150},
		{"sphere degenerate", func(m *Mesh) { m.GenerateSphere(1, 0, red) }, 36},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, dev := newTestMesh(t)
			tt.gen(m)

			if m.VertexCount() != tt.want {
				t.Fatalf("VertexCount() = %d, want %d", m.VertexCount(), tt.want)
			}
			if m.VertexCount()%3 != 0 {
				t.Errorf("VertexCount() = %d is not a whole number of triangles", m.VertexCount())
			}
			if len(m.Colors()) != m.VertexCount() {
				t.Errorf("len(Colors()) = %d, want %d", len(m.Colors()), m.VertexCount())
			}
			if m.Colors()[0] != red {
				t.Errorf("Colors()[0] = %v, want fill color", m.Colors()[0])
			}
			if !m.Bound() {
				t.Error("generated mesh should be bound")
			}
			if n := dev.Count("BufferStaticData"); n != 1 {
				t.Errorf("compiled %d times, want exactly once", n)
			}
		})
	}
}

func TestGenerateConeClamping(t *testing.T) {
	low, _ := newTestMesh(t)
	low.GenerateCone(0, 0, 1, red)
	floor, _ := newTestMesh(t)
	floor.GenerateCone(0.01, 0.01, 3, red)

	if low.VertexCount() != floor.VertexCount() {
		t.Fatalf("vertex counts differ: %d vs %d", low.VertexCount(), floor.VertexCount())
	}
	for i := range low.Interleaved() {
		if low.Interleaved()[i] != floor.Interleaved()[i] {
			t.Fatalf("interleaved[%d] differs: %v vs %v", i, low.Interleaved()[i], floor.Interleaved()[i])
		}
	}
}

func TestGenerateSphereZeroMatchesCube(t *testing.T) {
	sphere, _ := newTestMesh(t)
	sphere.GenerateSphere(1.5, 0, red)
	cube, _ := newTestMesh(t)
	cube.GenerateCube(3, red)

	if sphere.VertexCount() != cube.VertexCount() {
		t.Fatalf("vertex counts differ: %d vs %d", sphere.VertexCount(), cube.VertexCount())
	}
	for i := range cube.Positions() {
		if sphere.Positions()[i] != cube.Positions()[i] {
			t.Fatalf("position %d differs: %v vs %v", i, sphere.Positions()[i], cube.Positions()[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Renderer
// ---------------------------------------------------------------------------

func TestRenderTwoPasses(t *testing.T) {
	m, dev := newTestMesh(t)
	m.GenerateCylinder(1, 1, 6, red)
	vao, _ := m.Handles()
	dev.Reset()

	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	model := mgl32.Translate3D(1, 2, 3)

	m.Render(proj, view, model)

	if len(dev.Draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(dev.Draws))
	}
	wantMVP := proj.Mul4(view).Mul4(model)

	solid, wire := dev.Draws[0], dev.Draws[1]
	for i, d := range dev.Draws {
		if d.Program != basicProgram {
			t.Errorf("draw %d program = %d, want %d", i, d.Program, basicProgram)
		}
		if d.VAO != vao {
			t.Errorf("draw %d vao = %d, want %d", i, d.VAO, vao)
		}
		if d.First != 0 || d.Count != int32(m.VertexCount()) {
			t.Errorf("draw %d range = [%d,%d), want [0,%d)", i, d.First, d.Count, m.VertexCount())
		}
		if got := d.Uniforms["MVP"].(mgl32.Mat4); !got.ApproxEqual(wantMVP) {
			t.Errorf("draw %d MVP = %v, want %v", i, got, wantMVP)
		}
	}

	if solid.Mode != gpu.Fill || solid.LineOffset {
		t.Errorf("solid pass mode=%s offset=%v, want fill without offset", solid.Mode, solid.LineOffset)
	}
	if solid.Uniforms["wire"] != SolidTint {
		t.Errorf("solid pass wire = %v, want %v", solid.Uniforms["wire"], SolidTint)
	}
	if wire.Mode != gpu.Line || !wire.LineOffset {
		t.Errorf("wire pass mode=%s offset=%v, want line with offset", wire.Mode, wire.LineOffset)
	}
	if wire.Uniforms["wire"] != WireTint {
		t.Errorf("wire pass wire = %v, want %v", wire.Uniforms["wire"], WireTint)
	}

	off := dev.Index("PolygonOffset", 0)
	if off < 0 || dev.Calls[off].Args[0] != float32(-1) || dev.Calls[off].Args[1] != float32(-1) {
		t.Error("wire pass must use a negative polygon offset")
	}

	names := dev.CallNames()
	if names[len(names)-2] != "SetLineOffset" || names[len(names)-1] != "BindVertexArray" {
		t.Errorf("render must disable the offset and unbind, got tail %v", names[len(names)-2:])
	}
}

func TestRenderUnboundIsNoop(t *testing.T) {
	m, dev := newTestMesh(t)
	m.Render(mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4())

	m.AddTri(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	m.Render(mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4())

	if len(dev.Calls) != 0 {
		t.Errorf("expected no device calls, got %v", dev.CallNames())
	}
}

func TestRenderAfterReleaseIsNoop(t *testing.T) {
	m, dev := newTestMesh(t)
	m.GenerateCube(1, red)
	m.Release()
	dev.Reset()

	m.Render(mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4())
	if len(dev.Draws) != 0 {
		t.Errorf("draws = %d after Release, want 0", len(dev.Draws))
	}
}
