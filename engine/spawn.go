package engine

import (
	"io"
	"log/slog"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/vmath"
)

// SpawnOptions configures particles created from samples.
type SpawnOptions struct {
	// Particle overrides the engine's spawn defaults. Zero fields keep the default.
	Particle particle.Options
	Color    *particle.ColorMode // default the engine palette

	// Form binds each particle to its sample as a homing target. Without it
	// particles appear at their sample position and are left to physics.
	Form bool

	Pattern        shape.Pattern
	PatternOptions shape.PatternOptions
	Reveal         shape.Reveal
	RevealOptions  shape.RevealOptions
}

// spawnOptions merges per-call overrides over the engine defaults.
func (e *Engine) spawnOptions(o particle.Options) particle.Options {
	d := e.cfg.Particle
	phys := e.physics.Config()
	if d.Friction == 0 {
		d.Friction = phys.Friction
	}
	if d.Bounce == 0 {
		d.Bounce = phys.Bounce
	}

	if o.Vel != vmath.Zero {
		d.Vel = o.Vel
	}
	if o.Size != 0 {
		d.Size = o.Size
	}
	if o.Color != nil {
		d.Color = o.Color
	}
	if o.Alpha != 0 {
		d.Alpha = o.Alpha
	}
	if o.Glow != 0 {
		d.Glow = o.Glow
	}
	if o.Mass != 0 {
		d.Mass = o.Mass
	}
	if o.Friction != 0 {
		d.Friction = o.Friction
	}
	if o.Bounce != 0 {
		d.Bounce = o.Bounce
	}
	if o.Life != 0 {
		d.Life = o.Life
	}
	if o.MaxLife != 0 {
		d.MaxLife = o.MaxLife
	}
	if o.Decay != 0 {
		d.Decay = o.Decay
	}
	if o.MaxTrailLength != 0 {
		d.MaxTrailLength = o.MaxTrailLength
	}
	if o.NonInteractive {
		d.NonInteractive = true
	}
	if o.FixedSize {
		d.FixedSize = true
	}
	if o.RotationSpeed != 0 {
		d.RotationSpeed = o.RotationSpeed
	}
	if o.ScaleSpeed != 0 {
		d.ScaleSpeed = o.ScaleSpeed
	}
	d.Origin = o.Origin
	return d
}

// acquire takes a particle from the pool or allocates one. It returns nil
// once MaxParticles are live.
func (e *Engine) acquire(pos vmath.Vec, opts particle.Options) *particle.Particle {
	if len(e.particles) >= e.cfg.MaxParticles {
		return nil
	}
	var p *particle.Particle
	if n := len(e.pool); n > 0 {
		p = e.pool[n-1]
		e.pool[n-1] = nil
		e.pool = e.pool[:n-1]
		p.Configure(pos, opts)
	} else {
		p = particle.New(pos, opts)
	}
	e.particles = append(e.particles, p)
	e.collector.RecordSpawn(1)
	if e.onCreated != nil {
		e.onCreated(p)
	}
	return p
}

// Spawn creates one particle at pos. It returns nil when the swarm is full
// or pos is not finite.
func (e *Engine) Spawn(pos vmath.Vec, opts particle.Options) *particle.Particle {
	if !vmath.Finite(pos) {
		return nil
	}
	return e.acquire(pos, e.spawnOptions(opts))
}

// SpawnSamples creates one particle per sample and returns how many were
// created. Creation stops silently at MaxParticles; samples at non-finite
// positions are skipped.
func (e *Engine) SpawnSamples(samples []shape.Sample, opts SpawnOptions) int {
	if len(samples) == 0 {
		return 0
	}

	centre := shape.Centroid(samples)
	if opts.Pattern != shape.PatternNone {
		po := opts.PatternOptions
		if po.Center == nil {
			po.Center = &centre
		} else {
			centre = *po.Center
		}
		shape.Decorate(samples, opts.Pattern, po, e.rng)
	}
	if opts.Reveal != shape.RevealNone {
		shape.Animate(samples, opts.Reveal, opts.RevealOptions, e.rng)
	}

	mode := e.cfg.Color
	if opts.Color != nil {
		mode = *opts.Color
	}
	base := e.spawnOptions(opts.Particle)
	n := len(samples)

	created := 0
	for i := range samples {
		s := &samples[i]
		if !vmath.Finite(s.Pos) {
			continue
		}

		po := base
		po.Origin = s.Pos
		if s.Size > 0 && opts.Particle.Size == 0 {
			po.Size = s.Size
		}
		if s.Alpha > 0 && opts.Particle.Alpha == 0 {
			po.Alpha = s.Alpha
		}
		if opts.Particle.Color == nil {
			t := 0.0
			if n > 1 {
				t = float64(i) / float64(n-1)
			}
			c := particle.PaletteColor(mode, t, e.rng)
			po.Color = &c
		}

		start := s.Pos
		var target components.Target
		if opts.Form {
			target = components.Target{Pos: s.Pos, Center: centre, Anim: s.Anim}
			start = e.formStart(target)
		}

		p := e.acquire(start, po)
		if p == nil {
			slog.Warn("particle limit reached", "max", e.cfg.MaxParticles, "requested", n, "created", created)
			break
		}
		created++

		if opts.Form {
			e.bindTarget(p, target, s.Delay)
		}
	}
	return created
}

// formStart is where a formed particle appears before homing to its target.
func (e *Engine) formStart(t components.Target) vmath.Vec {
	switch t.Anim.Pattern {
	case shape.PatternExplosion:
		return t.Center
	case shape.PatternFireworks:
		return vmath.V(t.Center.X, e.cfg.Height)
	case shape.PatternSpiral:
		return targetAt(t, 0, e.cfg.Height)
	case shape.PatternNone:
		return vmath.V(e.rng.Float64()*e.cfg.Width, e.rng.Float64()*e.cfg.Height)
	default:
		return t.Pos
	}
}

func (e *Engine) bindTarget(p *particle.Particle, t components.Target, delay float64) {
	if old, ok := e.targets[p]; ok && e.world.Alive(old) {
		e.world.RemoveEntity(old)
	}
	slot := components.Slot{Particle: p}
	reveal := components.Reveal{Delay: delay}
	homing := components.Homing{
		Stiffness: e.cfg.Homing.Stiffness,
		Damping:   e.cfg.Homing.Damping,
	}
	e.targets[p] = e.targetMapper.NewEntity(&slot, &t, &reveal, &homing)
	if delay > 0 {
		p.Visible = false
	}
}

// SpawnText samples text, centres it on the canvas and spawns it.
func (e *Engine) SpawnText(text string, spec shape.FontSpec, mode shape.Mode, opts SpawnOptions) (int, error) {
	samples, err := e.sampler.SampleText(text, spec, mode)
	if err != nil {
		return 0, err
	}
	shape.Center(samples, e.cfg.Width, e.cfg.Height)
	n := e.SpawnSamples(samples, opts)
	slog.Info("shape generated", "source", "text", "text", text, "mode", mode.String(), "samples", len(samples), "particles", n)
	return n, nil
}

// SpawnSVG samples an SVG document, centres it on the canvas and spawns it.
// fill rasterizes closed shapes instead of tracing outlines.
func (e *Engine) SpawnSVG(r io.Reader, svg shape.SVGOptions, fill bool, opts SpawnOptions) (int, error) {
	var (
		samples []shape.Sample
		err     error
	)
	if fill {
		samples, err = e.sampler.FillSVG(r, svg)
	} else {
		samples, err = e.sampler.SampleSVG(r, svg)
	}
	if err != nil {
		return 0, err
	}
	shape.Center(samples, e.cfg.Width, e.cfg.Height)
	n := e.SpawnSamples(samples, opts)
	slog.Info("shape generated", "source", "svg", "fill", fill, "samples", len(samples), "particles", n)
	return n, nil
}

// CenterParticles translates every particle, its origin and its target so
// the swarm's bounding box is centred on the canvas.
func (e *Engine) CenterParticles() {
	if len(e.particles) == 0 {
		return
	}
	samples := make([]shape.Sample, len(e.particles))
	for i, p := range e.particles {
		samples[i].Pos = p.Pos
	}
	b := shape.Bounds(samples)
	off := vmath.V(e.cfg.Width/2-(b.X+b.Width/2), e.cfg.Height/2-(b.Y+b.Height/2))

	for _, p := range e.particles {
		p.Pos = vmath.Add(p.Pos, off)
		p.Prev = vmath.Add(p.Prev, off)
		p.Origin = vmath.Add(p.Origin, off)
	}
	query := e.targetFilter.Query()
	for query.Next() {
		_, t, _, _ := query.Get()
		t.Pos = vmath.Add(t.Pos, off)
		t.Center = vmath.Add(t.Center, off)
	}
}

// cleanup returns inactive particles to the pool, compacting in place.
func (e *Engine) cleanup() {
	alive := 0
	destroyed := 0
	for _, p := range e.particles {
		if p.Active {
			e.particles[alive] = p
			alive++
			continue
		}
		e.release(p)
		destroyed++
	}
	for i := alive; i < len(e.particles); i++ {
		e.particles[i] = nil
	}
	e.particles = e.particles[:alive]
	if destroyed > 0 {
		e.collector.RecordDestroy(destroyed)
	}
}

func (e *Engine) release(p *particle.Particle) {
	if ent, ok := e.targets[p]; ok {
		if e.world.Alive(ent) {
			e.world.RemoveEntity(ent)
		}
		delete(e.targets, p)
	}
	p.Destroy()
	e.pool = append(e.pool, p)
	if e.onDestroyed != nil {
		e.onDestroyed(p)
	}
}

// RemoveAll returns every particle to the pool.
func (e *Engine) RemoveAll() {
	n := len(e.particles)
	for i, p := range e.particles {
		e.release(p)
		e.particles[i] = nil
	}
	e.particles = e.particles[:0]
	if n > 0 {
		e.collector.RecordDestroy(n)
	}
}

// Release clears the targets of every formed particle, leaving the swarm to
// physics alone.
func (e *Engine) Release() {
	for p, ent := range e.targets {
		if e.world.Alive(ent) {
			e.world.RemoveEntity(ent)
		}
		p.Visible = true
		delete(e.targets, p)
	}
}
