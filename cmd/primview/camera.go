package main

import (
	"math"

	"github.com/chazu/primmesh/pkg/config"
	"github.com/deadsy/sdfx/sdf"
	"github.com/go-gl/mathgl/mgl32"
)

// framingMargin leaves some room around a framed scene.
const framingMargin = 1.15

// orbitCamera circles its target about the Z axis.
type orbitCamera struct {
	target mgl32.Vec3
	// offset is eye - target before rotation.
	offset mgl32.Vec3
	angle  float64
	speed  float64
	paused bool

	fov, near, far float32
}

func newOrbitCamera(c config.Camera, bounds sdf.Box3) *orbitCamera {
	cam := &orbitCamera{
		target: c.Target,
		offset: c.Eye.Sub(c.Target),
		speed:  float64(c.OrbitSpeed),
		fov:    mgl32.DegToRad(c.FOV),
		near:   c.Near,
		far:    c.Far,
	}

	size := bounds.Size()
	radius := float32(size.Length() / 2)
	if !c.Frame || radius <= 0 {
		return cam
	}

	center := bounds.Center()
	cam.target = mgl32.Vec3{float32(center.X), float32(center.Y), float32(center.Z)}
	dist := radius / float32(math.Sin(float64(cam.fov)/2)) * framingMargin
	cam.offset = cam.offset.Normalize().Mul(dist)
	cam.far = max(cam.far, dist+2*radius)
	return cam
}

func (c *orbitCamera) advance(seconds float64) {
	if c.paused {
		return
	}
	c.angle = math.Mod(c.angle+c.speed*seconds, 2*math.Pi)
}

func (c *orbitCamera) eye() mgl32.Vec3 {
	rot := mgl32.Rotate3DZ(float32(c.angle))
	return c.target.Add(rot.Mul3x1(c.offset))
}

func (c *orbitCamera) view() mgl32.Mat4 {
	up := mgl32.Vec3{0, 0, 1}
	// Looking straight along Z needs a different up vector.
	if c.offset.X() == 0 && c.offset.Y() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.eye(), c.target, up)
}

func (c *orbitCamera) projection(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(c.fov, aspect, c.near, c.far)
}
