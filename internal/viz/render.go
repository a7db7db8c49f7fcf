package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

const sphereSegments = 24

// Line endpoints further than this many canvas sizes off screen are dropped
// rather than rasterized.
const offscreenLimit = 4

func drawSegment(c *Canvas, cam *Camera, a, b mgl64.Vec3) {
	sw, sh := c.DotWidth(), c.DotHeight()
	x0, y0, _, ok0 := cam.Project(a, sw, sh)
	x1, y1, _, ok1 := cam.Project(b, sw, sh)
	if !ok0 || !ok1 {
		return
	}
	if far(x0, y0, sw, sh) || far(x1, y1, sw, sh) {
		return
	}
	c.DrawLine(x0, y0, x1, y1)
}

func far(x, y, sw, sh int) bool {
	return absInt(x) > offscreenLimit*sw || absInt(y) > offscreenLimit*sh
}

// DrawMode selects how the cloth is drawn.
type DrawMode int

const (
	DrawStructural DrawMode = iota
	DrawSprings
	DrawFaces
	DrawNodes
)

var drawModeNames = [...]string{"structural", "springs", "faces", "nodes"}

func (d DrawMode) String() string {
	if d < 0 || int(d) >= len(drawModeNames) {
		return "unknown"
	}
	return drawModeNames[d]
}

// Next cycles through the modes.
func (d DrawMode) Next() DrawMode {
	return (d + 1) % DrawMode(len(drawModeNames))
}

// DrawMesh draws the cloth in the given mode: structural springs only,
// every spring, triangle outlines, or one dot per point.
func DrawMesh(c *Canvas, cam *Camera, m *cloth.Mesh, mode DrawMode) {
	pts := m.Points()
	switch mode {
	case DrawNodes:
		sw, sh := c.DotWidth(), c.DotHeight()
		for k := range pts {
			if x, y, _, ok := cam.Project(pts[k].Position, sw, sh); ok {
				c.Set(x, y)
			}
		}
	case DrawFaces:
		for _, f := range m.Faces() {
			a, b, d := pts[f[0]].Position, pts[f[1]].Position, pts[f[2]].Position
			drawSegment(c, cam, a, b)
			drawSegment(c, cam, b, d)
			drawSegment(c, cam, d, a)
		}
	default:
		for _, s := range m.Springs() {
			if mode == DrawStructural && s.Kind != cloth.Structural {
				continue
			}
			drawSegment(c, cam, pts[s.A].Position, pts[s.B].Position)
		}
	}
}

// DrawGround outlines the ground patch with a coarse grid.
func DrawGround(c *Canvas, cam *Camera, g *cloth.Ground) {
	const lines = 4
	o := g.Position
	for k := 0; k <= lines; k++ {
		f := float64(k) / lines
		drawSegment(c, cam,
			o.Add(mgl64.Vec3{f * g.Width, 0, 0}),
			o.Add(mgl64.Vec3{f * g.Width, 0, g.Depth}))
		drawSegment(c, cam,
			o.Add(mgl64.Vec3{0, 0, f * g.Depth}),
			o.Add(mgl64.Vec3{g.Width, 0, f * g.Depth}))
	}
}

// DrawSphere draws three great circles of the sphere.
func DrawSphere(c *Canvas, cam *Camera, s *cloth.Sphere) {
	circle := func(k int, plane int) mgl64.Vec3 {
		a := 2 * math.Pi * float64(k) / sphereSegments
		u, v := s.Radius*math.Cos(a), s.Radius*math.Sin(a)
		switch plane {
		case 0:
			return s.Center.Add(mgl64.Vec3{u, v, 0})
		case 1:
			return s.Center.Add(mgl64.Vec3{u, 0, v})
		default:
			return s.Center.Add(mgl64.Vec3{0, u, v})
		}
	}
	for plane := 0; plane < 3; plane++ {
		for k := 0; k < sphereSegments; k++ {
			drawSegment(c, cam, circle(k, plane), circle(k+1, plane))
		}
	}
}

func DrawColliders(c *Canvas, cam *Camera, colliders []cloth.Collider) {
	for _, col := range colliders {
		switch v := col.(type) {
		case *cloth.Ground:
			DrawGround(c, cam, v)
		case *cloth.Sphere:
			DrawSphere(c, cam, v)
		}
	}
}

// DrawScene clears the canvas and draws colliders then the mesh.
func DrawScene(c *Canvas, cam *Camera, m *cloth.Mesh, colliders []cloth.Collider, mode DrawMode) {
	c.Clear()
	DrawColliders(c, cam, colliders)
	DrawMesh(c, cam, m, mode)
}
