package particle

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/swarm/vmath"
)

// RenderState is the read-only view of a particle handed to renderers.
type RenderState struct {
	Pos      vmath.Vec
	Size     float64
	Color    colorful.Color
	Alpha    float64
	Glow     float64
	Rotation float64
	Scale    float64
	Trail    []TrailPoint
}

// Renderable reports whether the particle should be drawn.
func (p *Particle) Renderable() bool {
	return p.Active && p.Visible && p.Alpha > 0
}

// Render captures the particle's drawable state.
func (p *Particle) Render() RenderState {
	return RenderState{
		Pos:      p.Pos,
		Size:     p.Size,
		Color:    p.Color,
		Alpha:    p.Alpha,
		Glow:     p.Glow,
		Rotation: p.Rotation,
		Scale:    p.Scale,
		Trail:    p.Trail.Points(),
	}
}

// InnerGlow returns the brighter core color drawn over glowing particles.
func (s RenderState) InnerGlow() colorful.Color {
	return AdjustBrightness(s.Color, 0.5)
}

// TrailSize returns the drawn radius of the i-th trail point, growing toward the head.
func (s RenderState) TrailSize(i int) float64 {
	if len(s.Trail) == 0 {
		return 0
	}
	return s.Size * float64(i) / float64(len(s.Trail)) * 0.5
}
