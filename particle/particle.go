// Package particle holds a single particle's kinematic and visual state and
// its per-frame physics step.
package particle

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/vmath"
)

// Scale limits applied after every animation step.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// Bounds is the rectangle particles bounce inside, anchored at the origin.
type Bounds struct {
	Width, Height float64
}

// Options configures a new particle. Zero fields take the documented default.
type Options struct {
	Vel                vmath.Vec
	Size               float64         // default 3
	Color              *colorful.Color // default white
	Alpha              float64         // default 1
	Glow               float64
	Mass               float64 // default 1; must be positive
	Friction           float64 // default 0.99; velocity multiplier per step
	Bounce             float64 // default 0.8; restitution
	Life               float64 // default 1
	MaxLife            float64 // default 1
	Decay              float64 // life lost per second; 0 = immortal
	MaxTrailLength     int     // default 10; negative disables the trail
	NonInteractive     bool
	AttractionRadius   float64 // default 50
	AttractionStrength float64 // default 0.1
	Rotation           float64
	RotationSpeed      float64
	Scale              float64 // default 1
	ScaleSpeed         float64

	// FixedSize recomputes Size as BaseSize*Scale each step instead of
	// compounding Size *= Scale.
	FixedSize bool

	Origin vmath.Vec // shape sample this particle was spawned from
}

// DefaultOptions returns options with every default filled in.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = 3
	}
	if o.Color == nil {
		c := White
		o.Color = &c
	}
	if o.Alpha == 0 {
		o.Alpha = 1
	}
	if o.Mass == 0 {
		o.Mass = 1
	}
	if o.Friction == 0 {
		o.Friction = 0.99
	}
	if o.Bounce == 0 {
		o.Bounce = 0.8
	}
	if o.Life == 0 {
		o.Life = 1
	}
	if o.MaxLife == 0 {
		o.MaxLife = 1
	}
	if o.MaxTrailLength == 0 {
		o.MaxTrailLength = 10
	}
	if o.AttractionRadius == 0 {
		o.AttractionRadius = 50
	}
	if o.AttractionStrength == 0 {
		o.AttractionStrength = 0.1
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	return o
}

// Particle is one simulated point. Its identity is its slot in the owning collection.
type Particle struct {
	// Kinematics
	Pos  vmath.Vec
	Prev vmath.Vec
	Vel  vmath.Vec
	Acc  vmath.Vec

	// Physical parameters
	Mass     float64
	Friction float64
	Bounce   float64

	// Appearance
	Size          float64
	BaseSize      float64
	Color         colorful.Color
	Alpha         float64
	Glow          float64
	Rotation      float64
	RotationSpeed float64
	Scale         float64
	ScaleSpeed    float64
	FixedSize     bool

	// Lifecycle
	Life    float64
	MaxLife float64
	Decay   float64

	Trail Trail

	// Interaction
	Interactive        bool
	AttractionRadius   float64
	AttractionStrength float64

	Origin vmath.Vec

	Active  bool
	Visible bool
}

// New creates an active particle at pos.
func New(pos vmath.Vec, opts Options) *Particle {
	p := &Particle{}
	p.configure(pos, opts)
	return p
}

// Configure reinitialises a pooled particle in place.
func (p *Particle) Configure(pos vmath.Vec, opts Options) {
	p.configure(pos, opts)
}

func (p *Particle) configure(pos vmath.Vec, opts Options) {
	opts = opts.withDefaults()
	trail := p.Trail
	trail.Resize(opts.MaxTrailLength)
	trail.Clear()

	*p = Particle{
		Pos:                pos,
		Prev:               pos,
		Vel:                opts.Vel,
		Mass:               opts.Mass,
		Friction:           opts.Friction,
		Bounce:             opts.Bounce,
		Size:               opts.Size,
		BaseSize:           opts.Size,
		Color:              *opts.Color,
		Alpha:              opts.Alpha,
		Glow:               opts.Glow,
		Rotation:           opts.Rotation,
		RotationSpeed:      opts.RotationSpeed,
		Scale:              opts.Scale,
		ScaleSpeed:         opts.ScaleSpeed,
		FixedSize:          opts.FixedSize,
		Life:               opts.Life,
		MaxLife:            opts.MaxLife,
		Decay:              opts.Decay,
		Trail:              trail,
		Interactive:        !opts.NonInteractive,
		AttractionRadius:   opts.AttractionRadius,
		AttractionStrength: opts.AttractionStrength,
		Origin:             opts.Origin,
		Active:             true,
		Visible:            true,
	}
}

// Update advances the particle by dt. External forces are applied before
// integration. Inactive particles are left untouched.
func (p *Particle) Update(dt float64, bounds Bounds, external []forces.Source) {
	if !p.Active {
		return
	}

	p.Prev = p.Pos

	for i := range external {
		p.ApplyForce(external[i])
	}

	p.Integrate(dt)
	p.HandleBoundaries(bounds)
	p.updateTrail()
	p.updateAnimation(dt)
	p.updateLifecycle(dt)
	p.updateAppearance()
}

// ApplyForce accumulates the source's force into acceleration, scaled by 1/mass.
func (p *Particle) ApplyForce(src forces.Source) {
	p.AddForce(src.Force(p.Pos))
}

// AddForce accumulates a raw force vector, scaled by 1/mass.
func (p *Particle) AddForce(f vmath.Vec) {
	p.Acc.X += f.X / p.Mass
	p.Acc.Y += f.Y / p.Mass
}

// Integrate applies acceleration, friction and velocity, then clears acceleration.
func (p *Particle) Integrate(dt float64) {
	p.Vel.X += p.Acc.X * dt
	p.Vel.Y += p.Acc.Y * dt

	p.Vel.X *= p.Friction
	p.Vel.Y *= p.Friction

	p.Pos.X += p.Vel.X * dt
	p.Pos.Y += p.Vel.Y * dt

	p.Acc = vmath.Zero

	// Never let a bad step poison the simulation.
	if !vmath.Finite(p.Pos) || !vmath.Finite(p.Vel) {
		switch {
		case vmath.Finite(p.Prev):
			p.Pos = p.Prev
		case vmath.Finite(p.Origin):
			p.Pos = p.Origin
		default:
			p.Pos = vmath.Zero
		}
		p.Vel = vmath.Zero
	}
}

// HandleBoundaries clamps the particle inside bounds, reflecting and damping
// the velocity component normal to the wall it crossed.
func (p *Particle) HandleBoundaries(b Bounds) {
	if p.Pos.X < 0 {
		p.Pos.X = 0
		p.Vel.X *= -p.Bounce
	} else if p.Pos.X > b.Width {
		p.Pos.X = b.Width
		p.Vel.X *= -p.Bounce
	}

	if p.Pos.Y < 0 {
		p.Pos.Y = 0
		p.Vel.Y *= -p.Bounce
	} else if p.Pos.Y > b.Height {
		p.Pos.Y = b.Height
		p.Vel.Y *= -p.Bounce
	}
}

func (p *Particle) updateTrail() {
	if p.Trail.Cap() == 0 {
		return
	}
	p.Trail.Push(TrailPoint{Pos: p.Prev, Alpha: p.Alpha})
	p.Trail.Fade(p.Alpha)
}

func (p *Particle) updateAnimation(dt float64) {
	p.Rotation += p.RotationSpeed * dt
	p.Scale = vmath.Clamp(p.Scale+p.ScaleSpeed*dt, MinScale, MaxScale)
}

func (p *Particle) updateLifecycle(dt float64) {
	if p.Decay <= 0 {
		return
	}
	p.Life -= p.Decay * dt
	if p.Life <= 0 {
		p.Active = false
	}
}

func (p *Particle) updateAppearance() {
	if p.MaxLife > 0 {
		p.Alpha = vmath.Clamp(p.Life/p.MaxLife, 0, 1)
	}

	// Size compounds by scale each step unless FixedSize is set.
	if p.FixedSize {
		p.Size = p.BaseSize * p.Scale
	} else {
		p.Size *= p.Scale
	}
}

// IsNear reports whether the particle lies within radius of pos.
// A non-positive radius uses the particle's own attraction radius.
func (p *Particle) IsNear(pos vmath.Vec, radius float64) bool {
	if radius <= 0 {
		radius = p.AttractionRadius
	}
	return vmath.Distance(p.Pos, pos) <= radius
}

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, Width, Height float64
}

// Bounds returns the particle's bounding box.
func (p *Particle) Bounds() Rect {
	return Rect{
		X:      p.Pos.X - p.Size,
		Y:      p.Pos.Y - p.Size,
		Width:  p.Size * 2,
		Height: p.Size * 2,
	}
}

// Clone returns an independent copy with an empty trail of the same capacity.
func (p *Particle) Clone() *Particle {
	c := *p
	c.Trail = NewTrail(p.Trail.Cap())
	return &c
}

// Reset revives the particle at pos with zeroed motion and full life.
func (p *Particle) Reset(pos vmath.Vec) {
	p.Pos = pos
	p.Prev = pos
	p.Vel = vmath.Zero
	p.Acc = vmath.Zero
	p.Life = p.MaxLife
	p.Alpha = 1
	p.Scale = 1
	p.Size = p.BaseSize
	p.Rotation = 0
	p.Trail.Clear()
	p.Active = true
	p.Visible = true
}

// Destroy deactivates the particle; it stays allocated until reclaimed.
func (p *Particle) Destroy() {
	p.Active = false
	p.Visible = false
	p.Trail.Clear()
}

// Speed returns the velocity magnitude.
func (p *Particle) Speed() float64 {
	return math.Hypot(p.Vel.X, p.Vel.Y)
}
