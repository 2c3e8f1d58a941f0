// Package renderer draws swarm snapshots with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/vmath"
)

// ParticleRenderer renders particles with trails and glow.
type ParticleRenderer struct {
	Trails bool
	Glow   bool

	// MinRadius keeps tiny particles visible when zoomed out.
	MinRadius float32
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{
		Trails:    true,
		Glow:      true,
		MinRadius: 0.75,
	}
}

// Color converts a particle colour and alpha to a raylib colour.
func Color(c colorful.Color, alpha float64) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: uint8(vmath.Clamp(alpha, 0, 1) * 255)}
}

// Draw renders all states and returns how many were on screen.
func (r *ParticleRenderer) Draw(states []particle.RenderState, cam *camera.Camera) int {
	drawn := 0

	rl.BeginBlendMode(rl.BlendAdditive)
	for i := range states {
		s := &states[i]
		radius := s.Size * s.Scale
		if !cam.IsVisible(s.Pos, radius+s.Glow) {
			continue
		}
		drawn++

		if r.Trails && len(s.Trail) > 1 {
			r.drawTrail(s, cam)
		}
		if r.Glow && s.Glow > 0 {
			r.drawGlow(s, cam)
		}
	}
	rl.EndBlendMode()

	// Cores are drawn with normal blending so overlapping glows don't wash them out
	for i := range states {
		s := &states[i]
		radius := s.Size * s.Scale
		if !cam.IsVisible(s.Pos, radius) {
			continue
		}
		pos := cam.CanvasToScreen(s.Pos)
		sr := float32(cam.ScreenLength(radius))
		if sr < r.MinRadius {
			sr = r.MinRadius
		}
		rl.DrawCircleV(vec2(pos), sr, Color(s.Color, s.Alpha))
		if s.Glow > 0 && sr > 2 {
			rl.DrawCircleV(vec2(pos), sr*0.5, Color(s.InnerGlow(), s.Alpha))
		}
	}
	return drawn
}

// drawTrail draws the trail as segments fading toward the oldest point.
func (r *ParticleRenderer) drawTrail(s *particle.RenderState, cam *camera.Camera) {
	n := len(s.Trail)
	for j := 0; j < n-1; j++ {
		a, b := s.Trail[j], s.Trail[j+1]
		alpha := b.Alpha * s.Alpha * 0.6
		if alpha < 0.01 {
			continue
		}
		width := float32(cam.ScreenLength(s.TrailSize(j + 1)))
		if width < 1 {
			width = 1
		}
		rl.DrawLineEx(
			vec2(cam.CanvasToScreen(a.Pos)),
			vec2(cam.CanvasToScreen(b.Pos)),
			width*2,
			Color(s.Color, alpha),
		)
	}
}

// drawGlow layers translucent circles out to Glow pixels beyond the core.
func (r *ParticleRenderer) drawGlow(s *particle.RenderState, cam *camera.Camera) {
	glowLayers := []struct {
		extent float64
		alpha  float64
	}{
		{1.0, 0.04},
		{0.6, 0.08},
		{0.3, 0.15},
	}

	pos := vec2(cam.CanvasToScreen(s.Pos))
	radius := s.Size * s.Scale
	for _, layer := range glowLayers {
		sr := float32(cam.ScreenLength(radius + s.Glow*layer.extent))
		rl.DrawCircleV(pos, sr, Color(s.Color, layer.alpha*s.Alpha))
	}
}

func vec2(v vmath.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(v.X), Y: float32(v.Y)}
}
