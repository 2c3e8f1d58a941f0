package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/vmath"
)

// kindColors tints the debug overlay per force kind.
var kindColors = map[forces.Kind]rl.Color{
	forces.Attraction: {R: 80, G: 200, B: 255, A: 255},
	forces.Repulsion:  {R: 255, G: 110, B: 80, A: 255},
	forces.Vortex:     {R: 190, G: 120, B: 255, A: 255},
	forces.Noise:      {R: 200, G: 200, B: 200, A: 255},
}

// FieldRenderer draws positional force sources as radius rings and
// trajectory previews as dotted paths.
type FieldRenderer struct{}

// NewFieldRenderer creates a new field overlay renderer.
func NewFieldRenderer() *FieldRenderer {
	return &FieldRenderer{}
}

// Draw renders each positional source. pulse animates the ring in seconds.
func (r *FieldRenderer) Draw(sources []forces.Source, cam *camera.Camera, pulse float64) {
	for _, s := range sources {
		if !s.Kind.Positional() {
			continue
		}
		color, ok := kindColors[s.Kind]
		if !ok {
			continue
		}
		radius := s.Radius
		if math.IsInf(radius, 0) || radius <= 0 {
			radius = 20
		}
		if !cam.IsVisible(s.Pos, radius) {
			continue
		}

		center := vec2(cam.CanvasToScreen(s.Pos))
		sr := float32(cam.ScreenLength(radius))

		color.A = 24
		rl.DrawCircleV(center, sr, color)
		color.A = 120
		rl.DrawCircleLinesV(center, sr, color)

		// Inner ring breathes with strength so stacked fields stay distinguishable
		breath := 0.5 + 0.5*math.Sin(pulse*4+s.Pos.X*0.01)
		color.A = uint8(60 + 80*breath)
		rl.DrawCircleLinesV(center, sr*float32(0.2+0.1*breath), color)
		rl.DrawCircleV(center, 3, color)
	}
}

// DrawTrajectory draws a predicted path with fading dots.
func (r *FieldRenderer) DrawTrajectory(path []vmath.Vec, cam *camera.Camera) {
	n := len(path)
	for i, p := range path {
		fade := 1 - float64(i)/float64(n)
		rl.DrawCircleV(vec2(cam.CanvasToScreen(p)), 2, rl.Color{R: 255, G: 230, B: 120, A: uint8(200 * fade)})
	}
}
