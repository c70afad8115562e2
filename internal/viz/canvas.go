package viz

import (
	"math"
	"strings"

	"github.com/san-kum/linksim/internal/geom"
)

// A braille cell is 2 dots wide and 4 dots high:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille characters addressed in dots. A canvas of
// Width x Height cells has Width*2 x Height*4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	row, col = y/4, x/2
	return row, col, row < c.Height && col < c.Width
}

// Set lights the dot at (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= dotBits[y%4][x%2]
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	row, col, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Cross marks a dot with a small plus sign.
func (c *Canvas) Cross(x, y int) {
	c.DrawLine(x-1, y, x+1, y)
	c.DrawLine(x, y-1, x, y+1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Viewport maps world coordinates onto a canvas with a uniform scale, so
// circles stay round. The world y axis points up.
type Viewport struct {
	origin geom.Point
	scale  float64
	offX   float64
	offY   float64
	height int
}

// NewViewport fits box, grown by margin (a fraction of its size) on every
// side, into the canvas.
func NewViewport(box geom.BBox, c *Canvas, margin float64) Viewport {
	w, h := box.Width(), box.Height()
	size := math.Max(math.Max(w, h), 1e-9)
	pad := size * margin
	w, h = math.Max(w, 1e-9)+2*pad, math.Max(h, 1e-9)+2*pad

	dw, dh := c.Dots()
	scale := math.Min(float64(dw-1)/w, float64(dh-1)/h)
	return Viewport{
		origin: geom.Pt(box.MinX-pad, box.MinY-pad),
		scale:  scale,
		offX:   (float64(dw-1) - w*scale) / 2,
		offY:   (float64(dh-1) - h*scale) / 2,
		height: dh,
	}
}

// Project returns the dot closest to p.
func (v Viewport) Project(p geom.Point) (x, y int) {
	q := p.Sub(v.origin)
	x = int(math.Round(v.offX + q.X*v.scale))
	y = v.height - 1 - int(math.Round(v.offY+q.Y*v.scale))
	return x, y
}
