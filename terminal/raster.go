// Package terminal renders the swarm in a text terminal with tcell. Each
// cell shows two vertically stacked pixels using the upper half block, so
// a W×H terminal is a W×2H raster.
package terminal

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/vmath"
)

// Raster is an additive RGB framebuffer.
type Raster struct {
	W, H int
	pix  []colorful.Color
}

// NewRaster creates a w×h raster.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize reallocates the raster if the size changed.
func (r *Raster) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if w == r.W && h == r.H && r.pix != nil {
		return
	}
	r.W, r.H = w, h
	r.pix = make([]colorful.Color, w*h)
}

// Clear resets every pixel to black.
func (r *Raster) Clear() {
	clear(r.pix)
}

// At returns the pixel at (x, y), or black outside the raster.
func (r *Raster) At(x, y int) colorful.Color {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return colorful.Color{}
	}
	return r.pix[y*r.W+x]
}

// Plot adds c scaled by alpha to the pixel at (x, y). Channels saturate at 1.
func (r *Raster) Plot(x, y int, c colorful.Color, alpha float64) {
	if x < 0 || y < 0 || x >= r.W || y >= r.H || alpha <= 0 {
		return
	}
	p := &r.pix[y*r.W+x]
	p.R = math.Min(1, p.R+c.R*alpha)
	p.G = math.Min(1, p.G+c.G*alpha)
	p.B = math.Min(1, p.B+c.B*alpha)
}

// Draw rasterizes render states from a canvasW×canvasH canvas onto the
// whole raster. Trails are plotted first at reduced brightness.
func (r *Raster) Draw(states []particle.RenderState, canvasW, canvasH float64, trails bool) {
	if r.W == 0 || r.H == 0 || canvasW <= 0 || canvasH <= 0 {
		return
	}
	sx := float64(r.W) / canvasW
	sy := float64(r.H) / canvasH

	toPixel := func(p vmath.Vec) (int, int) {
		return int(math.Floor(p.X * sx)), int(math.Floor(p.Y * sy))
	}

	if trails {
		for i := range states {
			s := &states[i]
			for _, tp := range s.Trail {
				x, y := toPixel(tp.Pos)
				r.Plot(x, y, s.Color, tp.Alpha*s.Alpha*0.35)
			}
		}
	}

	for i := range states {
		s := &states[i]
		x, y := toPixel(s.Pos)
		r.Plot(x, y, s.Color, s.Alpha)

		// Large particles cover a small cross of pixels
		if s.Size*s.Scale*sx >= 1.5 {
			r.Plot(x-1, y, s.Color, s.Alpha*0.5)
			r.Plot(x+1, y, s.Color, s.Alpha*0.5)
			r.Plot(x, y-1, s.Color, s.Alpha*0.5)
			r.Plot(x, y+1, s.Color, s.Alpha*0.5)
		}
	}
}

// CellToCanvas maps a terminal cell to the canvas point under its centre.
func CellToCanvas(col, row, cols, rows int, canvasW, canvasH float64) vmath.Vec {
	if cols <= 0 || rows <= 0 {
		return vmath.Zero
	}
	return vmath.V(
		(float64(col)+0.5)*canvasW/float64(cols),
		(float64(row)+0.5)*canvasH/float64(rows),
	)
}
