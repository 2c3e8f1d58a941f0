package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/input"
	"github.com/pthm-cable/swarm/ui"
)

// mousePointer is the tracker pointer id of the mouse.
const mousePointer = 0

// presetKeys maps the number row to presets in display order.
var presetKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive, rl.KeySix}

// handleInput processes keyboard, mouse and touch input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.eng.TogglePause()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyX) {
		g.clear()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		g.eng.Release()
	}
	presets := engine.Presets()
	for i, key := range presetKeys {
		if i < len(presets) && rl.IsKeyPressed(key) {
			g.applyPreset(presets[i])
		}
	}

	// Overlay toggles; drain the key queue so several presses in one frame all count
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := g.overlays.HandleKeyPress(key); ok {
			g.applyOverlay(id, on)
		}
	}

	// Camera controls
	g.handleCameraInput()

	// Pointer input goes to the swarm unless it's over the control panel
	g.handlePointer()
	g.handleTouches()
}

// applyOverlay pushes overlay state into the renderers.
func (g *Game) applyOverlay(id ui.OverlayID, on bool) {
	switch id {
	case ui.OverlayTrails:
		g.particles.Trails = on
	case ui.OverlayGlow:
		g.particles.Glow = on
	}
}

// handlePointer maps mouse buttons to tracker pointer events. Left attracts,
// right and middle repel. The wheel spins a vortex; with Ctrl held it zooms.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	overPanel := g.overlays.IsEnabled(ui.OverlayControls) && g.controls.Contains(mouse)
	pos := g.canvasPoint(mouse)
	tracker := g.eng.Tracker()

	down := func(b rl.MouseButton) bool { return rl.IsMouseButtonPressed(b) }
	switch {
	case overPanel:
	case down(rl.MouseButtonLeft):
		tracker.OnPointerDown(mousePointer, pos, input.ButtonPrimary)
	case down(rl.MouseButtonRight):
		tracker.OnPointerDown(mousePointer, pos, input.ButtonSecondary)
	case down(rl.MouseButtonMiddle):
		tracker.OnPointerDown(mousePointer, pos, input.ButtonMiddle)
	}

	held := rl.IsMouseButtonDown(rl.MouseButtonLeft) ||
		rl.IsMouseButtonDown(rl.MouseButtonRight) ||
		rl.IsMouseButtonDown(rl.MouseButtonMiddle)
	delta := rl.GetMouseDelta()
	if held && (delta.X != 0 || delta.Y != 0) {
		tracker.OnPointerMove(mousePointer, pos)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) ||
		rl.IsMouseButtonReleased(rl.MouseButtonRight) ||
		rl.IsMouseButtonReleased(rl.MouseButtonMiddle) {
		if !held {
			tracker.OnPointerUp(mousePointer)
		}
	}

	wheel := rl.GetMouseWheelMove()
	if wheel == 0 || overPanel {
		return
	}
	if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
		g.camera.ZoomAt(g.camera.CanvasToScreen(pos), 1+float64(wheel)*0.1)
		return
	}
	// raylib reports wheel-up as positive; the tracker expects DOM sign
	tracker.OnScroll(-float64(wheel), pos)
}

// handleTouches diffs the current touch points against the previous frame
// and forwards starts, moves and ends.
func (g *Game) handleTouches() {
	tracker := g.eng.Tracker()
	seen := make(map[int]bool, len(g.touches))

	n := int(rl.GetTouchPointCount())
	for i := 0; i < n; i++ {
		id := int(rl.GetTouchPointId(int32(i)))
		pos := g.canvasPoint(rl.GetTouchPosition(int32(i)))
		seen[id] = true
		if _, ok := g.touches[id]; ok {
			tracker.OnTouchMove(id, pos)
		} else {
			tracker.OnTouchStart(id, pos)
		}
		g.touches[id] = struct{}{}
	}
	for id := range g.touches {
		if !seen[id] {
			tracker.OnTouchEnd(id)
			delete(g.touches, id)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float64(rl.GetScreenWidth())
	h := float64(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h, g.camera.CanvasW, g.camera.CanvasH)
	g.background.Resize(int32(w), int32(h))
	g.perfPanel.SetPosition(int32(w)-260, int32(h)-140)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed in screen pixels
	panSpeed := 8.0

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
