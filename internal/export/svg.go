package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/viz"
)

func svgHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// MeshToSVG draws the structural springs of the mesh, seen through cam, as
// SVG line segments. Springs with an endpoint behind the camera are skipped.
func MeshToSVG(m *cloth.Mesh, cam *viz.Camera, width, height int, strokeColor string) string {
	var sb strings.Builder
	svgHeader(&sb, width, height)
	fmt.Fprintf(&sb, `<g stroke="%s" stroke-width="0.8" fill="none">
`, strokeColor)

	pts := m.Points()
	for _, s := range m.Springs() {
		if s.Kind != cloth.Structural {
			continue
		}
		x1, y1, _, ok1 := cam.Project(pts[s.A].Position, width, height)
		x2, y2, _, ok2 := cam.Project(pts[s.B].Position, width, height)
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>
`, x1, y1, x2, y2)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index, scaled to fill the image
// with 10% padding.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}
	points := make([]mgl64.Vec2, len(values))
	for i, v := range values {
		points[i] = mgl64.Vec2{float64(i), v}
	}
	return PathToSVG(points, width, height, strokeColor)
}

// PathToSVG draws a polyline through points, scaled to fit.
func PathToSVG(points []mgl64.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X(), points[0].X()
	minY, maxY := points[0].Y(), points[0].Y()
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	svgHeader(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x := (p.X() - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y()-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// TraceToSVG plots the X/Y projection of a point trace.
func TraceToSVG(trace []mgl64.Vec3, width, height int, strokeColor string) string {
	points := make([]mgl64.Vec2, len(trace))
	for i, p := range trace {
		points[i] = mgl64.Vec2{p.X(), p.Y()}
	}
	return PathToSVG(points, width, height, strokeColor)
}
