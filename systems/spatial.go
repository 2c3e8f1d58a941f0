// Package systems runs the shared simulation step over a particle collection.
package systems

import (
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/vmath"
)

// SpatialGrid buckets particle indices into uniform cells so collision checks
// only look at nearby particles. It is derived state, rebuilt every step.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // flat grid of particle indices
	count    int
}

// NewSpatialGrid creates a grid covering width x height.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	g := &SpatialGrid{cellSize: cellSize}
	g.resize(width, height)
	return g
}

func (g *SpatialGrid) resize(width, height float64) {
	cols := int(width/g.cellSize) + 1
	rows := int(height/g.cellSize) + 1
	if cols == g.cols && rows == g.rows {
		return
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}
	g.cols = cols
	g.rows = rows
	g.cells = cells
	g.count = 0
}

// Rebuild clears the grid and inserts every active particle, resizing to bounds first.
func (g *SpatialGrid) Rebuild(particles []*particle.Particle, bounds particle.Bounds) {
	g.resize(bounds.Width, bounds.Height)
	g.Clear()
	for i, p := range particles {
		if p.Active {
			g.Insert(i, p.Pos)
		}
	}
}

// Clear removes all indices from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds a particle index at the given position.
func (g *SpatialGrid) Insert(idx int, pos vmath.Vec) {
	c := g.cellIndex(pos)
	g.cells[c] = append(g.cells[c], idx)
	g.count++
}

// Count returns the number of inserted indices.
func (g *SpatialGrid) Count() int {
	return g.count
}

// CellOf returns the column and row holding pos.
func (g *SpatialGrid) CellOf(pos vmath.Vec) (col, row int) {
	idx := g.cellIndex(pos)
	return idx % g.cols, idx / g.cols
}

// Neighbors calls fn for every index in the 3x3 block of cells around pos.
// Iteration stops early if fn returns false.
func (g *SpatialGrid) Neighbors(pos vmath.Vec, fn func(idx int) bool) {
	col, row := g.CellOf(pos)
	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}
			for _, idx := range g.cells[r*g.cols+c] {
				if !fn(idx) {
					return
				}
			}
		}
	}
}

// cellIndex returns the flat index for a canvas position.
// Positions outside the grid land in the nearest edge cell.
func (g *SpatialGrid) cellIndex(pos vmath.Vec) int {
	col := int(pos.X / g.cellSize)
	row := int(pos.Y / g.cellSize)

	// Clamp to valid range
	if pos.X < 0 || col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if pos.Y < 0 || row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
