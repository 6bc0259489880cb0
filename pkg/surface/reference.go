package surface

import (
	"github.com/chazu/primmesh/pkg/shape"
	"github.com/deadsy/sdfx/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// Marching cubes resolution limits for Reference, in cells along the
// longest bounding box axis.
const (
	DefaultCells = 64
	MinCells     = 8
	MaxCells     = 256
)

var _ shape.Shape = Reference{}

// Reference is the marching cubes tessellation of another shape's analytic
// solid. It emits a smooth approximation to compare against the generated
// mesh; vertex counts depend on the resolution, not on subdivisions.
type Reference struct {
	Of    shape.Shape
	Cells int
}

func (r Reference) Kind() string { return "reference " + r.Of.Kind() }

func (r Reference) Normalize() shape.Shape {
	cells := r.Cells
	if cells == 0 {
		cells = DefaultCells
	}
	return Reference{Of: r.Of.Normalize(), Cells: lo.Clamp(cells, MinCells, MaxCells)}
}

// Emit renders the solid and adds each triangle in sdfx's winding.
// Shapes with no analytic solid emit nothing.
func (r Reference) Emit(a shape.Assembler) {
	for _, tri := range r.triangles() {
		a.AddTri(tri[0], tri[1], tri[2])
	}
}

// VertexCount renders the solid to count its triangles.
func (r Reference) VertexCount() int {
	return 3 * len(r.triangles())
}

func (r Reference) triangles() [][3]mgl32.Vec3 {
	n := r.Normalize().(Reference)
	field, err := SDF(n.Of)
	if err != nil {
		return nil
	}
	tris := render.ToTriangles(field, render.NewMarchingCubesUniform(n.Cells))

	out := make([][3]mgl32.Vec3, 0, len(tris))
	for _, tri := range tris {
		var t [3]mgl32.Vec3
		for j := 0; j < 3; j++ {
			t[j] = toMgl(tri[j].X, tri[j].Y, tri[j].Z)
		}
		out = append(out, t)
	}
	return out
}

func toMgl(x, y, z float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}
