// Package scene holds an ordered list of placed primitives and turns them
// into compiled meshes, one mesh per item.
package scene

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/primmesh/pkg/gpu"
	"github.com/chazu/primmesh/pkg/mesh"
	"github.com/chazu/primmesh/pkg/shader"
	"github.com/chazu/primmesh/pkg/shape"
	"github.com/chazu/primmesh/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

// Item is one primitive placed in the scene.
type Item struct {
	// Name identifies the item in logs. Empty names are filled in by Add.
	Name     string
	Shape    shape.Shape
	Color    mgl32.Vec3
	Position mgl32.Vec3
}

// Model returns the item's model matrix.
func (it Item) Model() mgl32.Mat4 {
	return mgl32.Translate3D(it.Position.X(), it.Position.Y(), it.Position.Z())
}

// Scene is an ordered collection of items and, once built, their meshes.
type Scene struct {
	items  []Item
	meshes []*mesh.Mesh
	log    *slog.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger passed to every mesh the scene builds.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends an item. An unnamed item is named after its kind and index.
func (s *Scene) Add(it Item) {
	if it.Name == "" && it.Shape != nil {
		it.Name = fmt.Sprintf("%s%d", it.Shape.Kind(), len(s.items))
	}
	s.items = append(s.items, it)
}

// Items returns the scene's items in insertion order.
func (s *Scene) Items() []Item { return s.items }

// Len returns the number of items.
func (s *Scene) Len() int { return len(s.items) }

// Meshes returns the built meshes, parallel to Items. Empty until Build.
func (s *Scene) Meshes() []*mesh.Mesh { return s.meshes }

// Build generates and compiles one mesh per item, releasing any meshes
// from a previous Build first.
func (s *Scene) Build(dev gpu.Device, shaders shader.Lookup) error {
	if dev == nil {
		return errors.New("scene: build: nil device")
	}
	if shaders == nil {
		return errors.New("scene: build: nil shader lookup")
	}

	s.Release()

	meshes := make([]*mesh.Mesh, 0, len(s.items))
	for i, it := range s.items {
		if it.Shape == nil {
			for _, m := range meshes {
				m.Release()
			}
			return fmt.Errorf("scene: build: item %d (%q) has no shape", i, it.Name)
		}
		m := mesh.New(dev, shaders, mesh.WithLogger(s.log.With("item", it.Name)))
		m.Generate(it.Shape, it.Color)
		meshes = append(meshes, m)
	}
	s.meshes = meshes

	s.log.Info("scene built", "items", len(s.items), "vertices", s.VertexCount())
	return nil
}

// VertexCount returns the total number of vertices across built meshes.
func (s *Scene) VertexCount() int {
	total := 0
	for _, m := range s.meshes {
		total += m.VertexCount()
	}
	return total
}

// Draw renders every built mesh at its item's position.
func (s *Scene) Draw(projection, view mgl32.Mat4) {
	for i, m := range s.meshes {
		m.Render(projection, view, s.items[i].Model())
	}
}

// Release frees every mesh. Items are kept so the scene can be built again.
func (s *Scene) Release() {
	for _, m := range s.meshes {
		m.Release()
	}
	s.meshes = nil
}

// Bounds returns the world-space bounding box of the built meshes.
func (s *Scene) Bounds() sdf.Box3 {
	var (
		box   sdf.Box3
		found bool
	)
	for i, m := range s.meshes {
		if m.IsEmpty() {
			continue
		}
		b := surface.Bounds(m.Positions())
		p := s.items[i].Position
		b = b.Translate(v3.Vec{X: float64(p.X()), Y: float64(p.Y()), Z: float64(p.Z())})
		if !found {
			box, found = b, true
			continue
		}
		box = box.Extend(b)
	}
	return box
}

// Check measures each built mesh against its item's analytic surface.
func (s *Scene) Check(tolerance float64) ([]surface.Report, error) {
	reports := make([]surface.Report, 0, len(s.meshes))
	for i, m := range s.meshes {
		r, err := surface.Check(s.items[i].Shape, m.Positions(), tolerance)
		if err != nil {
			return nil, fmt.Errorf("scene: check %q: %w", s.items[i].Name, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
