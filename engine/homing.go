package engine

import (
	"math"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/vmath"
)

// updateHoming advances reveal clocks and pulls revealed particles toward
// their pattern-animated targets with a damped spring.
func (e *Engine) updateHoming(dt float64) {
	floor := e.cfg.Height
	arriveSq := e.cfg.Homing.ArriveDistance * e.cfg.Homing.ArriveDistance

	query := e.targetFilter.Query()
	for query.Next() {
		slot, target, reveal, homing := query.Get()
		p := slot.Particle
		if p == nil || !p.Active {
			continue
		}

		wasRevealed := reveal.Revealed
		if !reveal.Ready(dt) {
			// Hold unrevealed particles where they spawned.
			p.Pos = p.Prev
			p.Vel = vmath.Zero
			p.Acc = vmath.Zero
			p.Visible = false
			continue
		}
		p.Visible = true
		if !wasRevealed && target.Anim.Pattern == shape.PatternExplosion {
			p.Vel = vmath.Scale(vmath.Rotate(vmath.V(1, 0), target.Anim.Angle), target.Anim.Speed)
		}

		since := reveal.Since()
		goal := targetAt(*target, since, floor)
		toGoal := vmath.Sub(goal, p.Pos)
		homing.Arrived = vmath.DistanceSq(goal, p.Pos) <= arriveSq

		acc := vmath.Sub(vmath.Scale(toGoal, homing.Stiffness), vmath.Scale(p.Vel, homing.Damping))
		if target.Anim.Pattern == shape.PatternFireworks && since >= burstAfter(target.Anim) {
			acc.Y += target.Anim.Gravity
		}
		p.AddForce(vmath.Scale(acc, p.Mass))
	}
}

// burstAfter is the time from launch to burst.
func burstAfter(a shape.Anim) float64 {
	return a.ExplosionDelay - a.LaunchDelay
}

// targetAt returns where a target wants its particle since seconds after the
// reveal. floor is the canvas bottom fireworks launch from.
func targetAt(t components.Target, since, floor float64) vmath.Vec {
	a := t.Anim
	switch a.Pattern {
	case shape.PatternWave:
		return vmath.V(t.Pos.X, t.Pos.Y+math.Sin(a.Phase+since*a.Speed)*a.Amplitude)

	case shape.PatternSpiral:
		// Wind in from a wider, rotated orbit onto the resting position.
		k := math.Exp(-since * a.Speed)
		r := a.Distance * (1 + k)
		angle := a.Angle + 2*math.Pi*k
		return vmath.Add(t.Center, vmath.Rotate(vmath.V(r, 0), angle))

	case shape.PatternFireworks:
		burst := burstAfter(a)
		if burst <= 0 || since >= burst {
			return t.Pos
		}
		launch := vmath.V(t.Center.X, floor)
		return vmath.LerpVec(launch, t.Center, vmath.EaseOut(since/burst))

	case shape.PatternGalaxy:
		angle := a.Angle + since*a.Speed
		r := a.Distance + a.Oscillation*math.Sin(since*a.Speed*2)
		return vmath.Add(t.Center, vmath.Rotate(vmath.V(r, 0), angle))

	default:
		return t.Pos
	}
}
