// Package surface checks generated vertices against the analytic solid
// they approximate, using signed distance functions from
// github.com/deadsy/sdfx. A vertex that lies on the solid's surface has a
// distance of zero.
package surface

import (
	"fmt"
	"math"

	"github.com/chazu/primmesh/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

// SDF returns the signed distance function of the clamped shape.
func SDF(s shape.Shape) (sdf.SDF3, error) {
	switch n := s.Normalize().(type) {
	case shape.Cube:
		size := float64(n.Size)
		return wrap(sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0))

	case shape.Cuboid:
		return wrap(sdf.Box3D(toVec(n.Dimensions), 0))

	case shape.Cone:
		// r0 is the radius at -height/2, r1 at +height/2.
		return wrap(sdf.Cone3D(float64(n.Height), float64(n.Radius), 0, 0))

	case shape.Cylinder:
		return wrap(sdf.Cylinder3D(float64(n.Height), float64(n.Radius), 0))

	case shape.Tube:
		outer, err := sdf.Cylinder3D(float64(n.Height), float64(n.OuterRadius), 0)
		if err != nil {
			return nil, fmt.Errorf("surface: tube outer wall: %w", err)
		}
		// The bore is taller than the tube so the difference opens both ends.
		inner, err := sdf.Cylinder3D(2*float64(n.Height), float64(n.InnerRadius), 0)
		if err != nil {
			return nil, fmt.Errorf("surface: tube bore: %w", err)
		}
		return sdf.Difference3D(outer, inner), nil

	case shape.Torus:
		// Tube radius and center-line radius of the ring the torus should trace.
		tube := float64(n.OuterRadius-n.InnerRadius) / 2
		center := float64(n.InnerRadius) + tube
		circle, err := sdf.Circle2D(tube)
		if err != nil {
			return nil, fmt.Errorf("surface: torus section: %w", err)
		}
		section := sdf.Transform2D(circle, sdf.Translate2d(v2.Vec{X: center, Y: 0}))
		return wrap(sdf.Revolve3D(section))

	case shape.Sphere:
		return wrap(sdf.Sphere3D(float64(n.Radius)))

	case Reference:
		return SDF(n.Of)
	}
	return nil, fmt.Errorf("surface: unsupported shape %T", s)
}

func wrap(s sdf.SDF3, err error) (sdf.SDF3, error) {
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return s, nil
}

func toVec(v mgl32.Vec3) v3.Vec {
	return v3.Vec{X: float64(v.X()), Y: float64(v.Y()), Z: float64(v.Z())}
}

// Report summarizes how far a vertex stream strays from a surface.
type Report struct {
	// Max is the largest absolute distance of any vertex.
	Max float64
	// Mean is the average absolute distance.
	Mean float64
	// Worst is the index of the vertex at distance Max.
	Worst int
	// Off counts vertices farther than the tolerance passed to Check.
	Off int
}

// Deviation measures positions against the analytic surface of s.
func Deviation(s shape.Shape, positions []mgl32.Vec3) (Report, error) {
	return Check(s, positions, 0)
}

// Check is Deviation with a tolerance used to count off-surface vertices.
func Check(s shape.Shape, positions []mgl32.Vec3, tolerance float64) (Report, error) {
	field, err := SDF(s)
	if err != nil {
		return Report{}, err
	}

	var r Report
	if len(positions) == 0 {
		return r, nil
	}

	var sum float64
	for i, p := range positions {
		d := math.Abs(field.Evaluate(toVec(p)))
		sum += d
		if d > r.Max {
			r.Max = d
			r.Worst = i
		}
		if d > tolerance {
			r.Off++
		}
	}
	r.Mean = sum / float64(len(positions))
	return r, nil
}

// Bounds returns the axis-aligned bounding box of positions.
func Bounds(positions []mgl32.Vec3) sdf.Box3 {
	if len(positions) == 0 {
		return sdf.Box3{}
	}
	box := sdf.Box3{Min: toVec(positions[0]), Max: toVec(positions[0])}
	for _, p := range positions[1:] {
		box = box.Include(toVec(p))
	}
	return box
}
