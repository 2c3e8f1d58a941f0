// Package components defines ECS components binding particles to shape targets.
package components

import (
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/vmath"
)

// Slot points at the particle an entity steers.
type Slot struct {
	Particle *particle.Particle
}

// Target is where a particle is pulled once revealed.
type Target struct {
	Pos    vmath.Vec  // resting sample position
	Center vmath.Vec  // centre of the shape the sample belongs to
	Anim   shape.Anim // pattern motion applied around Pos
}

// Reveal gates homing behind a delay.
type Reveal struct {
	Delay    float64 // seconds after spawn
	Elapsed  float64
	Revealed bool
}

// Ready advances the reveal clock by dt and reports whether homing applies.
// Elapsed keeps running after the reveal so pattern motion can key off it.
func (r *Reveal) Ready(dt float64) bool {
	r.Elapsed += dt
	if !r.Revealed && r.Elapsed >= r.Delay {
		r.Revealed = true
	}
	return r.Revealed
}

// Since returns seconds since the reveal, or zero before it.
func (r *Reveal) Since() float64 {
	if !r.Revealed {
		return 0
	}
	return r.Elapsed - r.Delay
}

// Homing holds spring parameters pulling a particle to its target.
type Homing struct {
	Stiffness float64
	Damping   float64
	Arrived   bool // within arrival distance on the last step
}
