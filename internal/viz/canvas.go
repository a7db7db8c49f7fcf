package viz

import (
	"strings"
)

const brailleBlank = 0x2800

// Dot bits of a braille cell, indexed by [row][col] of the 2x4 dot grid.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dot coordinates.
type Canvas struct {
	Width, Height int // in cells
	cells         []rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([]rune, w*h)}
	c.Clear()
	return c
}

// DotWidth and DotHeight are the canvas size in dots.
func (c *Canvas) DotWidth() int  { return c.Width * 2 }
func (c *Canvas) DotHeight() int { return c.Height * 4 }

func (c *Canvas) cell(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return 0, false
	}
	return (y/4)*c.Width + x/2, true
}

// Set lights the dot at (x, y). Out of range is ignored.
func (c *Canvas) Set(x, y int) {
	if k, ok := c.cell(x, y); ok {
		c.cells[k] |= dotBits[y%4][x%2]
	}
}

func (c *Canvas) Unset(x, y int) {
	if k, ok := c.cell(x, y); ok {
		c.cells[k] &^= dotBits[y%4][x%2]
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	k, ok := c.cell(x, y)
	return ok && c.cells[k]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBlank
	}
}

// Count returns the number of lit dots.
func (c *Canvas) Count() int {
	n := 0
	for _, r := range c.cells {
		for bits := r - brailleBlank; bits != 0; bits &= bits - 1 {
			n++
		}
	}
	return n
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) Lines() []string {
	out := make([]string, c.Height)
	for row := range out {
		out[row] = string(c.cells[row*c.Width : (row+1)*c.Width])
	}
	return out
}

func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n") + "\n"
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
