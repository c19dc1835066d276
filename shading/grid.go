package shading

import "math"

// VerticesPerPoint is the number of mesh vertices the GPU path spends on
// each grid point (two triangles).
const VerticesPerPoint = 6

// GridVertex is one static point of the vector engine: pixel position and
// normalized surface coordinates.
type GridVertex struct {
	X, Y float32
	U, V float32
}

// Grid is the static point buffer uploaded once per rebuild.
type Grid struct {
	Width    int
	Height   int
	Step     float32
	Vertices []GridVertex
}

// NewGrid lays points at the centers of step-sized cells. When the surface
// would need more than maxPoints points the step is widened until it fits.
func NewGrid(width, height int, step float32, maxPoints int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if step <= 0 {
		step = 1
	}

	cols, rows := cells(width, height, step)
	if maxPoints > 0 && cols*rows > maxPoints {
		step *= float32(math.Sqrt(float64(cols*rows) / float64(maxPoints)))
		for {
			cols, rows = cells(width, height, step)
			if cols*rows <= maxPoints {
				break
			}
			step *= 1.01
		}
	}

	g := &Grid{
		Width:    width,
		Height:   height,
		Step:     step,
		Vertices: make([]GridVertex, 0, cols*rows),
	}
	w, h := float32(width), float32(height)
	for r := 0; r < rows; r++ {
		y := (float32(r) + 0.5) * step
		for c := 0; c < cols; c++ {
			x := (float32(c) + 0.5) * step
			g.Vertices = append(g.Vertices, GridVertex{X: x, Y: y, U: x / w, V: y / h})
		}
	}
	return g
}

// cells counts whole cells so every cell center stays on the surface.
func cells(width, height int, step float32) (int, int) {
	cols := int(float32(width) / step)
	rows := int(float32(height) / step)
	return max(cols, 1), max(rows, 1)
}

// Len returns the number of points.
func (g *Grid) Len() int {
	return len(g.Vertices)
}
