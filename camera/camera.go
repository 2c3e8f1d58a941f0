// Package camera maps between screen pixels and the swarm canvas.
package camera

import (
	"math"

	"github.com/pthm-cable/swarm/vmath"
)

// Camera controls the viewport onto the canvas. The canvas is bounded; the
// camera centre is kept inside it.
type Camera struct {
	// Position is the camera center in canvas coordinates
	X, Y float64

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// DPIScale is canvas pixels per screen pixel at zoom 1.
	DPIScale float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Canvas dimensions
	CanvasW, CanvasH float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centred on the canvas at zoom 1. A non-positive
// dpiScale is treated as 1.
func New(viewportW, viewportH, canvasW, canvasH, dpiScale float64) *Camera {
	if dpiScale <= 0 {
		dpiScale = 1
	}
	c := &Camera{
		X:         canvasW / 2,
		Y:         canvasH / 2,
		Zoom:      1.0,
		DPIScale:  dpiScale,
		ViewportW: viewportW,
		ViewportH: viewportH,
		CanvasW:   canvasW,
		CanvasH:   canvasH,
		MaxZoom:   4.0,
	}
	c.updateMinZoom()
	return c
}

// scale is screen pixels per canvas pixel.
func (c *Camera) scale() float64 {
	return c.Zoom / c.DPIScale
}

// CanvasToScreen converts a canvas position to screen coordinates.
func (c *Camera) CanvasToScreen(p vmath.Vec) vmath.Vec {
	s := c.scale()
	return vmath.V(
		c.ViewportW/2+(p.X-c.X)*s,
		c.ViewportH/2+(p.Y-c.Y)*s,
	)
}

// ScreenToCanvas converts a screen position to canvas coordinates.
func (c *Camera) ScreenToCanvas(p vmath.Vec) vmath.Vec {
	s := c.scale()
	return vmath.V(
		c.X+(p.X-c.ViewportW/2)/s,
		c.Y+(p.Y-c.ViewportH/2)/s,
	)
}

// ScreenLength converts a canvas length to screen pixels.
func (c *Camera) ScreenLength(l float64) float64 {
	return l * c.scale()
}

// IsVisible returns true if a circle at p with the given canvas radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p vmath.Vec, radius float64) bool {
	s := c.scale()
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return math.Abs(p.X-c.X) <= halfW && math.Abs(p.Y-c.Y) <= halfH
}

func (c *Camera) updateMinZoom() {
	// At zoom Z the visible canvas is viewport*DPIScale/Z wide; never show
	// more than the canvas.
	c.MinZoom = math.Max(
		c.ViewportW*c.DPIScale/c.CanvasW,
		c.ViewportH*c.DPIScale/c.CanvasH,
	)
	if c.MinZoom > 1 {
		c.MinZoom = 1
	}
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// Resize updates viewport and canvas dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH, canvasW, canvasH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.CanvasW = canvasW
	c.CanvasH = canvasH
	c.updateMinZoom()
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	s := c.scale()
	c.X += dx / s
	c.Y += dy / s
	c.clampCenter()
}

func (c *Camera) clampCenter() {
	c.X = vmath.Clamp(c.X, 0, c.CanvasW)
	c.Y = vmath.Clamp(c.Y, 0, c.CanvasH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = vmath.Clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the canvas point under screen position anchor fixed.
func (c *Camera) ZoomAt(anchor vmath.Vec, factor float64) {
	before := c.ScreenToCanvas(anchor)
	c.ZoomBy(factor)
	after := c.ScreenToCanvas(anchor)
	c.X += before.X - after.X
	c.Y += before.Y - after.Y
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.CanvasW / 2
	c.Y = c.CanvasH / 2
	c.Zoom = math.Max(1.0, c.MinZoom)
}

// VisibleBounds returns the canvas-coordinate bounds of the visible area.
func (c *Camera) VisibleBounds() (minX, minY, maxX, maxY float64) {
	s := c.scale()
	halfW := c.ViewportW / (2 * s)
	halfH := c.ViewportH / (2 * s)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}
