package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/primmesh/pkg/gpu/gputest"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/chazu/primmesh/pkg/shape"
	"github.com/go-gl/mathgl/mgl32"
)

func newLookup() *shader.Registry {
	reg := shader.NewRegistry(nil)
	reg.Register(shader.Basic, 7)
	return reg
}

func twoItems() *Scene {
	s := New()
	s.Add(Item{Shape: shape.Cube{Size: 2}, Color: mgl32.Vec3{1, 0, 0}})
	s.Add(Item{
		Name:     "tip",
		Shape:    shape.Cone{Radius: 0.5, Height: 1, Subdivisions: 8},
		Color:    mgl32.Vec3{0, 1, 0},
		Position: mgl32.Vec3{0, 0, 3},
	})
	return s
}

func TestAddNamesItems(t *testing.T) {
	s := twoItems()
	items := s.Items()
	if len(items) != 2 || s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "cube0" {
		t.Errorf("unnamed item got name %q, want %q", items[0].Name, "cube0")
	}
	if items[1].Name != "tip" {
		t.Errorf("named item renamed to %q", items[1].Name)
	}
}

func TestBuildOneMeshPerItem(t *testing.T) {
	s := twoItems()
	dev := gputest.New()

	if err := s.Build(dev, newLookup()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	meshes := s.Meshes()
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].VertexCount() != 36 {
		t.Errorf("cube vertices = %d, want 36", meshes[0].VertexCount())
	}
	if meshes[1].VertexCount() != 48 {
		t.Errorf("cone vertices = %d, want 48", meshes[1].VertexCount())
	}
	for i, m := range meshes {
		if !m.Bound() {
			t.Errorf("mesh %d not bound", i)
		}
		if m.Colors()[0] != s.Items()[i].Color {
			t.Errorf("mesh %d color = %v, want %v", i, m.Colors()[0], s.Items()[i].Color)
		}
	}
	if s.VertexCount() != 84 {
		t.Errorf("VertexCount() = %d, want 84", s.VertexCount())
	}
	if dev.LiveVertexArrays() != 2 || dev.LiveBuffers() != 2 {
		t.Errorf("live handles vao=%d vbo=%d, want 2 each", dev.LiveVertexArrays(), dev.LiveBuffers())
	}
}

func TestBuildTwiceReleasesFirst(t *testing.T) {
	s := twoItems()
	dev := gputest.New()
	lookup := newLookup()

	if err := s.Build(dev, lookup); err != nil {
		t.Fatal(err)
	}
	if err := s.Build(dev, lookup); err != nil {
		t.Fatal(err)
	}
	if dev.LiveVertexArrays() != 2 || dev.LiveBuffers() != 2 {
		t.Errorf("rebuild leaked handles: vao=%d vbo=%d", dev.LiveVertexArrays(), dev.LiveBuffers())
	}
}

func TestBuildErrors(t *testing.T) {
	s := twoItems()
	if err := s.Build(nil, newLookup()); err == nil {
		t.Error("expected error for nil device")
	}
	if err := s.Build(gputest.New(), nil); err == nil {
		t.Error("expected error for nil lookup")
	}

	s.Add(Item{Name: "ghost"})
	dev := gputest.New()
	err := s.Build(dev, newLookup())
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected error naming the shapeless item, got %v", err)
	}
	if dev.LiveBuffers() != 0 {
		t.Errorf("failed build left %d live buffers", dev.LiveBuffers())
	}
	if len(s.Meshes()) != 0 {
		t.Errorf("failed build kept %d meshes", len(s.Meshes()))
	}
}

func TestDrawUsesItemPosition(t *testing.T) {
	s := twoItems()
	dev := gputest.New()
	if err := s.Build(dev, newLookup()); err != nil {
		t.Fatal(err)
	}
	dev.Reset()

	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 50)
	view := mgl32.LookAtV(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	s.Draw(proj, view)

	// Two passes per mesh.
	if len(dev.Draws) != 4 {
		t.Fatalf("draws = %d, want 4", len(dev.Draws))
	}
	want := proj.Mul4(view).Mul4(mgl32.Translate3D(0, 0, 3))
	got := dev.Draws[2].Uniforms["MVP"].(mgl32.Mat4)
	if !got.ApproxEqual(want) {
		t.Errorf("second item MVP = %v, want %v", got, want)
	}
	if dev.Draws[0].Program != 7 {
		t.Errorf("program = %d, want 7", dev.Draws[0].Program)
	}
}

func TestRelease(t *testing.T) {
	s := twoItems()
	dev := gputest.New()
	if err := s.Build(dev, newLookup()); err != nil {
		t.Fatal(err)
	}

	s.Release()
	s.Release()

	if dev.LiveVertexArrays() != 0 || dev.LiveBuffers() != 0 {
		t.Errorf("release left vao=%d vbo=%d", dev.LiveVertexArrays(), dev.LiveBuffers())
	}
	if s.Len() != 2 {
		t.Errorf("release dropped items: %d left", s.Len())
	}

	dev.Reset()
	s.Draw(mgl32.Ident4(), mgl32.Ident4())
	if len(dev.Calls) != 0 {
		t.Errorf("draw after release issued %v", dev.CallNames())
	}
}

func TestBounds(t *testing.T) {
	s := twoItems()
	if err := s.Build(gputest.New(), newLookup()); err != nil {
		t.Fatal(err)
	}

	bb := s.Bounds()
	// Cube spans ±1; cone apex sits at 3 + 0.5.
	checks := []struct {
		name      string
		got, want float64
	}{
		{"min x", bb.Min.X, -1},
		{"min z", bb.Min.Z, -1},
		{"max y", bb.Max.Y, 1},
		{"max z", bb.Max.Z, 3.5},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-5 {
			t.Errorf("%s = %g, want %g", c.name, c.got, c.want)
		}
	}
}

func TestCheck(t *testing.T) {
	s := New()
	s.Add(Item{Shape: shape.Sphere{Radius: 1, Subdivisions: 6}, Position: mgl32.Vec3{4, 0, 0}})
	s.Add(Item{Shape: shape.Torus{OuterRadius: 1, InnerRadius: 0.5, SubdivisionsA: 8, SubdivisionsB: 8}})
	if err := s.Build(gputest.New(), newLookup()); err != nil {
		t.Fatal(err)
	}

	reports, err := s.Check(1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	if reports[0].Off != 0 {
		t.Errorf("sphere has %d off-surface vertices (max %g)", reports[0].Off, reports[0].Max)
	}
	if reports[1].Off == 0 {
		t.Error("torus unexpectedly on its surface")
	}
}
