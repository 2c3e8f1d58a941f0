package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/vmath"
)

// BackgroundRenderer clears the screen to a vertical gradient and outlines
// the canvas when it doesn't fill the window.
type BackgroundRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color
	border           rl.Color
}

// NewBackgroundRenderer creates a background fading from base at the top to
// a darker shade at the bottom.
func NewBackgroundRenderer(screenW, screenH int32, baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     rl.Color{R: baseR, G: baseG, B: baseB, A: 255},
		bottom:  rl.Color{R: baseR / 3, G: baseG / 3, B: baseB / 3, A: 255},
		border:  rl.Color{R: 60, G: 70, B: 90, A: 160},
	}
}

// Resize updates the screen size after a window resize.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW = screenW
	b.screenH = screenH
}

// Draw renders the background.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)

	minX, minY, maxX, maxY := cam.VisibleBounds()
	if minX >= 0 && minY >= 0 && maxX <= cam.CanvasW && maxY <= cam.CanvasH {
		return
	}
	tl := cam.CanvasToScreen(vmath.V(0, 0))
	br := cam.CanvasToScreen(vmath.V(cam.CanvasW, cam.CanvasH))
	rl.DrawRectangleLinesEx(rl.Rectangle{
		X:      float32(tl.X),
		Y:      float32(tl.Y),
		Width:  float32(br.X - tl.X),
		Height: float32(br.Y - tl.Y),
	}, 1, b.border)
}
