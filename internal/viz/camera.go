package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	cameraNear = 0.1
	// worldSpan is how many world units fit across the shorter canvas side
	// at zoom 1.
	worldSpan = 14.0
)

// Camera orbits Target at Distance and projects with a simple perspective.
type Camera struct {
	Target           mgl64.Vec3
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera(target mgl64.Vec3) *Camera {
	return &Camera{Target: target, Distance: 30, RotX: 0.35, RotY: -0.5, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DX(c.RotX)).Mul3(mgl64.Rotate3DY(c.RotY))
}

// View maps a world point into camera space, the camera looking down -Z.
func (c *Camera) View(p mgl64.Vec3) mgl64.Vec3 {
	return c.rotation().Mul3x1(p.Sub(c.Target)).Mul(c.Zoom)
}

// Project maps a world point to dot coordinates on a sw x sh surface. ok is
// false when the point is behind the near plane; points in front but off
// screen are returned unclipped.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	v := c.View(p)
	dz := c.Distance - v.Z()
	if dz < cameraNear {
		return 0, 0, 0, false
	}
	scale := c.Distance / dz * float64(min(sw, sh)) / worldSpan
	x = int(math.Round(v.X()*scale)) + sw/2
	y = int(math.Round(-v.Y()*scale)) + sh/2
	return x, y, dz, true
}
