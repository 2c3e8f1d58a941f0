// Force field preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/forcepreview
package main

import (
	"fmt"
	"image/color"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/vmath"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 128
	arrowStep    = 32
	probeSteps   = 120
)

// FieldParams holds the previewed source.
type FieldParams struct {
	Kind     forces.Kind
	Strength float32
	Radius   float32
	Mass     float32
}

func defaultParams() FieldParams {
	return FieldParams{
		Kind:     forces.Attraction,
		Strength: 400,
		Radius:   150,
		Mass:     1,
	}
}

func (p FieldParams) source() forces.Source {
	c := vmath.V(previewSize/2, previewSize/2)
	s, r := float64(p.Strength), float64(p.Radius)
	switch p.Kind {
	case forces.Gravity:
		return forces.NewGravity(s)
	case forces.Wind:
		return forces.NewWind(s)
	case forces.Repulsion:
		return forces.NewRepulsion(c, s, r)
	case forces.Vortex:
		return forces.NewVortex(c, s, r)
	case forces.Noise:
		return forces.NewNoise(c, s, r)
	}
	return forces.NewAttraction(c, s, r)
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Force Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	magnitude := make([]float32, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	probe := vmath.V(previewSize*0.25, previewSize*0.3)
	var path []vmath.Vec
	needsRegen := true

	for !rl.WindowShouldClose() {
		mouse := rl.GetMousePosition()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) && inPreview(mouse) {
			probe = vmath.V(float64(mouse.X-10), float64(mouse.Y-10))
			needsRegen = true
		}

		if needsRegen {
			src := params.source()
			generateMagnitude(magnitude, src)
			updateTexture(texture, magnitude)
			path = predict(src, probe, float64(params.Mass))
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		drawArrows(params.source())
		drawPath(probe, path)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		var peak float32
		for _, v := range magnitude {
			peak = max(peak, v)
		}
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Peak: %.1f px/s^2  Source: %s", peak*float32(math.Abs(float64(params.Strength))), params.source()), 15, statsY, 16, rl.DarkGray)
		if len(path) > 0 {
			end := path[len(path)-1]
			rl.DrawText(fmt.Sprintf("Probe (%.0f, %.0f) -> (%.0f, %.0f) after %d steps", probe.X, probe.Y, end.X, end.Y, len(path)), 15, statsY+20, 16, rl.DarkGray)
		}
		rl.DrawText("Click or drag in the preview to move the probe", 15, statsY+40, 14, rl.Gray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Force Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Kind", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newKind := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "5",
			float32(params.Kind), 0, float32(forces.Noise),
		)
		rl.DrawText(params.Kind.String(), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if k := forces.Kind(math.Round(float64(newKind))); k != params.Kind {
			params.Kind = k
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Strength (px/s^2 at the source)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newStrength := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-2000", "2000",
			params.Strength, -2000, 2000,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.Strength), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newStrength != params.Strength {
			params.Strength = newStrength
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Radius (falloff reaches zero)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRadius := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"10", "400",
			params.Radius, 10, 400,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.Radius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRadius != params.Radius {
			params.Radius = newRadius
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Probe mass", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newMass := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.1", "10",
			params.Mass, 0.1, 10,
		)
		rl.DrawText(fmt.Sprintf("%.1f", params.Mass), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newMass != params.Mass {
			params.Mass = newMass
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Flip Sign") {
			params.Strength = -params.Strength
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			probe = vmath.V(previewSize*0.25, previewSize*0.3)
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		snippet := yamlSnippet(params)
		for _, line := range snippet {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			var text string
			for i, line := range snippet {
				if i > 0 {
					text += "\n"
				}
				text += line
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func inPreview(p rl.Vector2) bool {
	return p.X >= 10 && p.Y >= 10 && p.X < 10+previewSize && p.Y < 10+previewSize
}

// yamlSnippet returns the config keys the previewed source corresponds to.
func yamlSnippet(p FieldParams) []string {
	switch p.Kind {
	case forces.Gravity:
		return []string{"physics:", fmt.Sprintf("  gravity: {x: 0, y: %.1f}", p.Strength)}
	case forces.Wind:
		return []string{"physics:", fmt.Sprintf("  wind: {x: %.1f, y: 0}", p.Strength)}
	case forces.Attraction:
		return []string{
			"interaction:",
			fmt.Sprintf("  attraction_radius: %.0f", p.Radius),
			fmt.Sprintf("  attraction_strength: %.0f", p.Strength),
		}
	case forces.Repulsion:
		return []string{
			"interaction:",
			fmt.Sprintf("  repulsion_radius: %.0f", p.Radius),
			fmt.Sprintf("  repulsion_strength: %.0f", p.Strength),
		}
	case forces.Vortex:
		return []string{"interaction:", fmt.Sprintf("  wheel_strength: %.0f", math.Abs(float64(p.Strength)))}
	}
	return []string{"# noise fields are only created by presets"}
}

// generateMagnitude fills the grid with |F| normalised by |strength|.
func generateMagnitude(grid []float32, src forces.Source) {
	norm := math.Abs(src.Strength)
	cell := float64(previewSize) / gridSize
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			p := vmath.V((float64(x)+0.5)*cell, (float64(y)+0.5)*cell)
			var v float64
			if norm > 0 {
				v = vmath.Magnitude(src.Force(p)) / norm
			}
			grid[y*gridSize+x] = float32(math.Min(v, 1))
		}
	}
}

// predict integrates a probe particle under src alone.
func predict(src forces.Source, probe vmath.Vec, mass float64) []vmath.Vec {
	cfg := systems.DefaultConfig()
	cfg.Gravity = vmath.Zero
	cfg.CollisionDetection = false
	switch src.Kind {
	case forces.Gravity:
		cfg.Gravity = vmath.V(0, src.Strength)
	case forces.Wind:
		cfg.Wind = vmath.V(src.Strength, 0)
	}
	world := systems.NewWorld(cfg)
	if src.Kind != forces.Gravity && src.Kind != forces.Wind {
		world.AddField(src)
	}
	p := particle.New(probe, particle.Options{Mass: mass, MaxTrailLength: -1})
	return world.PredictTrajectory(p, probeSteps, 1.0/60)
}

func drawArrows(src forces.Source) {
	norm := math.Abs(src.Strength)
	if norm == 0 {
		return
	}
	for y := arrowStep / 2; y < previewSize; y += arrowStep {
		for x := arrowStep / 2; x < previewSize; x += arrowStep {
			p := vmath.V(float64(x), float64(y))
			f := src.Force(p)
			l := vmath.Magnitude(f)
			if l == 0 {
				continue
			}
			d := vmath.Scale(f, float64(arrowStep)*0.45/norm)
			from := rl.Vector2{X: float32(p.X) + 10, Y: float32(p.Y) + 10}
			to := rl.Vector2{X: from.X + float32(d.X), Y: from.Y + float32(d.Y)}
			rl.DrawLineEx(from, to, 1.5, rl.Fade(rl.White, 0.8))
			rl.DrawCircleV(to, 2, rl.White)
		}
	}
}

func drawPath(probe vmath.Vec, path []vmath.Vec) {
	prev := rl.Vector2{X: float32(probe.X) + 10, Y: float32(probe.Y) + 10}
	rl.DrawCircleV(prev, 5, rl.Orange)
	for _, p := range path {
		if p.X < 0 || p.Y < 0 || p.X > previewSize || p.Y > previewSize {
			break
		}
		next := rl.Vector2{X: float32(p.X) + 10, Y: float32(p.Y) + 10}
		rl.DrawLineEx(prev, next, 2, rl.Orange)
		prev = next
	}
}

// updateTexture updates the GPU texture from the grid values
func updateTexture(texture rl.Texture2D, grid []float32) {
	pixels := make([]color.RGBA, len(grid))
	for i, v := range grid {
		// dark blue -> cyan -> yellow -> white
		var r, g, b uint8
		if v < 0.25 {
			t := v / 0.25
			r = uint8(10 + t*30)
			g = uint8(20 + t*60)
			b = uint8(60 + t*100)
		} else if v < 0.5 {
			t := (v - 0.25) / 0.25
			r = uint8(40 + t*20)
			g = uint8(80 + t*120)
			b = uint8(160 + t*40)
		} else if v < 0.75 {
			t := (v - 0.5) / 0.25
			r = uint8(60 + t*140)
			g = uint8(200 - t*40)
			b = uint8(200 - t*150)
		} else {
			t := (v - 0.75) / 0.25
			r = uint8(200 + t*55)
			g = uint8(160 + t*95)
			b = uint8(50 + t*205)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
