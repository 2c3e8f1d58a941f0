package game

import (
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/ui"
	"github.com/pthm-cable/swarm/vmath"
)

// trajectorySteps is how far ahead the trajectory overlay predicts.
const trajectorySteps = 90

// Draw renders the game.
func (g *Game) Draw() {
	start := time.Now()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.background.Draw(g.camera)

	if g.overlays.IsEnabled(ui.OverlayFields) {
		sources := g.eng.Physics().Fields()
		sources = append(sources, g.eng.Tracker().Forces()...)
		g.fields.Draw(sources, g.camera, g.eng.SimTime())
	}

	g.particles.Draw(g.eng.Snapshot(), g.camera)

	if g.overlays.IsEnabled(ui.OverlayTrajectory) {
		g.drawTrajectory()
	}

	g.drawUI()

	rl.EndDrawing()

	g.eng.RecordRender(time.Since(start))
}

// drawTrajectory predicts the path of the particle nearest the cursor.
func (g *Game) drawTrajectory() {
	cursor := g.canvasPoint(rl.GetMousePosition())
	var nearest *particle.Particle
	best := math.Inf(1)
	for _, p := range g.eng.Particles() {
		if d := vmath.DistanceSq(p.Pos, cursor); d < best {
			best, nearest = d, p
		}
	}
	if nearest == nil {
		return
	}
	path := g.eng.Physics().PredictTrajectory(nearest, trajectorySteps, DT)
	g.fields.DrawTrajectory(path, g.camera)
}

// drawUI renders the HUD, panels and control legend.
func (g *Game) drawUI() {
	sw, sh := int32(g.screenWidth), int32(g.screenHeight)

	g.hud.Draw(ui.HUDData{
		Title:        "Swarm",
		Stats:        g.eng.Stats(),
		FPS:          rl.GetFPS(),
		Preset:       g.preset,
		ScreenWidth:  sw,
		ScreenHeight: sh,
	}, g.overlays.IsEnabled(ui.OverlayStats))

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.eng.Perf())
	}

	if g.overlays.IsEnabled(ui.OverlayControls) {
		g.handleControls(g.controls.Draw(g.overlays))
	}

	g.hud.DrawControls(sw, sh, "[Space] Pause  [1-6] Presets  [R] Reset  [E] Release  [X] Clear  [Wheel] Vortex  [Ctrl+Wheel] Zoom  [</>] Speed")
}

// handleControls applies the control panel's actions.
func (g *Game) handleControls(a ui.ControlAction) {
	if a.Changed {
		g.eng.SetParameters(a.Params)
	}
	if a.HasPreset {
		g.applyPreset(a.Preset)
	}
	if a.Reset {
		g.reset()
	}
	if a.Release {
		g.eng.Release()
	}
	if a.Clear {
		g.clear()
	}
}
