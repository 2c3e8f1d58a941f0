package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/vmath"
)

// slider describes one physics slider.
type slider struct {
	label    string
	min, max float32
	format   string
	value    func(*ControlValues) *float32
}

var sliders = []slider{
	{"Gravity", -50, 50, "%.1f", func(v *ControlValues) *float32 { return &v.Gravity }},
	{"Wind", -50, 50, "%.1f", func(v *ControlValues) *float32 { return &v.Wind }},
	{"Friction", 0.8, 1, "%.3f", func(v *ControlValues) *float32 { return &v.Friction }},
	{"Bounce", 0, 1, "%.2f", func(v *ControlValues) *float32 { return &v.Bounce }},
	{"Time", 0.1, 3, "%.2fx", func(v *ControlValues) *float32 { return &v.TimeScale }},
}

// ControlValues mirrors the tunable world parameters.
type ControlValues struct {
	Gravity    float32
	Wind       float32
	Friction   float32
	Bounce     float32
	TimeScale  float32
	Collisions bool
}

// ControlAction is what the user asked for during one Draw.
type ControlAction struct {
	Params  engine.Params // nil fields unchanged
	Changed bool

	Preset    engine.Preset
	HasPreset bool

	Reset   bool // restore the initial configuration and respawn the scene
	Release bool // let formed particles go
	Clear   bool // remove every particle and field
}

// ControlPanel renders the left-side controls panel: physics sliders,
// preset buttons and overlay toggles.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	values   ControlValues
	presets  []engine.Preset
}

// NewControlPanel creates a new control panel.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		presets:  engine.Presets(),
	}
}

// Sync loads the slider values from the world state.
func (c *ControlPanel) Sync(s systems.State) {
	c.values = ControlValues{
		Gravity:    float32(s.Gravity.Y),
		Wind:       float32(s.Wind.X),
		Friction:   float32(s.Friction),
		Bounce:     float32(s.Bounce),
		TimeScale:  float32(s.TimeScale),
		Collisions: s.CollisionDetection,
	}
}

// Values returns the current slider values.
func (c *ControlPanel) Values() ControlValues {
	return c.values
}

// Contains reports whether a screen point is over the panel, so pointer
// input there isn't forwarded to the swarm.
func (c *ControlPanel) Contains(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, rl.Rectangle{
		X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height),
	})
}

// Draw renders the panel and returns the user's actions.
func (c *ControlPanel) Draw(overlays *OverlayRegistry) ControlAction {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := c.width - padding*2

	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := c.x + padding
	y := c.y + padding

	rl.DrawText("Controls", x, y, 16, rl.White)
	y += lineHeight + 4

	var action ControlAction
	prev := c.values

	// Physics sliders
	y = r.DrawSectionHeader(x, y, "Physics")
	sliderX := float32(x + r.Theme.LabelWidth)
	sliderW := float32(inner - r.Theme.LabelWidth - 50)
	for _, s := range sliders {
		v := s.value(&c.values)
		r.DrawLabel(x, y+4, s.label)
		*v = gui.SliderBar(
			rl.Rectangle{X: sliderX, Y: float32(y), Width: sliderW, Height: 18},
			"", "", *v, s.min, s.max,
		)
		r.DrawValue(int32(sliderX+sliderW)+6, y+4, fmt.Sprintf(s.format, *v))
		y += 24
	}
	collisionLabel := "Collisions: off"
	if c.values.Collisions {
		collisionLabel = "Collisions: on"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: 20}, collisionLabel) {
		c.values.Collisions = !c.values.Collisions
	}
	y += 26

	action.Params, action.Changed = diffParams(prev, c.values)

	// Presets, two per row
	y += 4
	y = r.DrawSectionHeader(x, y, "Presets")
	btnW := float32(inner-6) / 2
	for i, p := range c.presets {
		bx := float32(x) + float32(i%2)*(btnW+6)
		if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: btnW, Height: 22}, p.String()) {
			action.Preset = p
			action.HasPreset = true
		}
		if i%2 == 1 || i == len(c.presets)-1 {
			y += 28
		}
	}

	// Scene
	y += 4
	y = r.DrawSectionHeader(x, y, "Scene")
	thirdW := float32(inner-12) / 3
	action.Reset = gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: thirdW, Height: 22}, "Reset")
	action.Release = gui.Button(rl.Rectangle{X: float32(x) + thirdW + 6, Y: float32(y), Width: thirdW, Height: 22}, "Release")
	action.Clear = gui.Button(rl.Rectangle{X: float32(x) + 2*(thirdW+6), Y: float32(y), Width: thirdW, Height: 22}, "Clear")
	y += 30

	// Overlay toggles by category
	if overlays != nil {
		for _, category := range overlays.Categories() {
			rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
			y += lineHeight

			for _, desc := range overlays.ByCategory(category) {
				c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), inner)
				y += lineHeight
			}
			y += 4
		}
	}

	c.height = y - c.y + padding
	return action
}

// diffParams returns the parameters that moved between two readings.
func diffParams(prev, cur ControlValues) (engine.Params, bool) {
	var p engine.Params
	changed := false
	if cur.Gravity != prev.Gravity {
		g := vmath.V(0, float64(cur.Gravity))
		p.Physics.Gravity = &g
		changed = true
	}
	if cur.Wind != prev.Wind {
		w := vmath.V(float64(cur.Wind), 0)
		p.Physics.Wind = &w
		changed = true
	}
	if cur.Friction != prev.Friction {
		f := float64(cur.Friction)
		p.Physics.Friction = &f
		changed = true
	}
	if cur.Bounce != prev.Bounce {
		b := float64(cur.Bounce)
		p.Physics.Bounce = &b
		changed = true
	}
	if cur.TimeScale != prev.TimeScale {
		t := float64(cur.TimeScale)
		p.Physics.TimeScale = &t
		changed = true
	}
	if cur.Collisions != prev.Collisions {
		on := cur.Collisions
		p.Collisions = &on
		changed = true
	}
	return p, changed
}

// drawToggle draws a single overlay toggle line.
func (c *ControlPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "panels":
		return "Panels"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
