package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Stats        engine.Stats
	FPS          int32
	Preset       string
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	panel    PanelDescriptor
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		panel:    statsPanel(),
	}
}

// Draw renders the title line and the stats panel.
func (h *HUD) Draw(data HUDData, showStats bool) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	status := "Running"
	statusColor := rl.LightGray
	if data.Stats.Paused {
		status = "PAUSED"
		statusColor = rl.Yellow
	}
	line := fmt.Sprintf("%s | FPS: %d | Particles: %d", status, data.FPS, data.Stats.Particles)
	if data.Preset != "" {
		line += " | Preset: " + data.Preset
	}
	rl.DrawText(line, 10, 35, 16, statusColor)

	if showStats {
		h.renderer.DrawPanelDescriptor(h.panel, data.Stats, data.ScreenWidth, data.ScreenHeight)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

func stats(data any) engine.Stats {
	return data.(engine.Stats)
}

// statsPanel lays out the engine stats.
func statsPanel() PanelDescriptor {
	return PanelDescriptor{
		ID:     "stats",
		Title:  "Swarm",
		Width:  240,
		Anchor: AnchorTopRight,
		Sections: []SectionDescriptor{
			{
				ID:    "population",
				Title: "Population",
				Fields: []FieldDescriptor{
					{
						ID: "particles", Label: "Live", Widget: WidgetLoadBar,
						Getter:    func(d any) float32 { return float32(stats(d).Particles) },
						MaxGetter: func(d any) float32 { return float32(stats(d).MaxParticles) },
					},
					{
						ID: "pooled", Label: "Pooled", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float32 { return float32(stats(d).Pooled) },
					},
					{
						ID: "formed", Label: "Formed", Widget: WidgetBar,
						Visible: func(d any) bool { return stats(d).Targets > 0 },
						Getter: func(d any) float32 {
							s := stats(d)
							return float32(s.Arrived) / float32(s.Targets)
						},
					},
				},
			},
			{
				ID:    "physics",
				Title: "Physics",
				Fields: []FieldDescriptor{
					{
						ID: "gravity", Label: "Gravity", Widget: WidgetText, Format: "%.2f",
						Getter: func(d any) float32 { return float32(stats(d).Physics.Gravity.Y) },
					},
					{
						ID: "wind", Label: "Wind", Widget: WidgetCenteredBar,
						Range:  FieldRange{Min: -50, Max: 50},
						Getter: func(d any) float32 { return float32(stats(d).Physics.Wind.X) },
					},
					{
						ID: "fields", Label: "Fields", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float32 { return float32(stats(d).Physics.Fields) },
					},
					{
						ID: "collisions", Label: "Hits", Widget: WidgetText,
						Visible: func(d any) bool { return stats(d).Physics.CollisionDetection },
						TextGetter: func(d any) string {
							p := stats(d).Physics
							grid := "brute"
							if p.GridActive {
								grid = "grid"
							}
							return fmt.Sprintf("%d / %d (%s)", p.Collisions, p.PairChecks, grid)
						},
					},
				},
			},
			{
				ID:    "input",
				Title: "Input",
				Fields: []FieldDescriptor{
					{
						ID: "interactions", Label: "Active", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float32 { return float32(stats(d).Input.Interactions) },
					},
					{
						ID: "pointer", Label: "Pointer", Widget: WidgetText,
						TextGetter: func(d any) string {
							p := stats(d).Input.Pointer
							return fmt.Sprintf("%.0f, %.0f", p.X, p.Y)
						},
					},
				},
			},
		},
	}
}

// PerfPanel renders the per-phase step timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Step: %s (max %s)",
		data.AvgStepDuration.Round(time.Microsecond),
		data.MaxStepDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range telemetry.Phases() {
		avg := data.PhaseAvg[name]
		pct := data.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
