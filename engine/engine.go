// Package engine owns a particle swarm: the particle pool, the physics world,
// input interactions and the shape targets particles form.
package engine

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/input"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// Config configures an Engine. Zero fields take the documented default.
type Config struct {
	Width, Height float64 // default 1280x720
	MaxParticles  int     // default 10000
	MaxDelta      float64 // largest step in seconds; default 1/30
	Seed          int64

	Physics  systems.Config
	Input    input.Config
	Sampler  shape.Config
	Particle particle.Options // spawn defaults; friction and bounce fall back to Physics
	Color    particle.ColorMode
	Homing   HomingConfig

	StatsWindow        int  // frames per telemetry window; default 60
	PerfWindow         int  // steps averaged by the perf collector; default 60
	LogStats           bool // log each telemetry window
	SnapshotOnBookmark bool // save a snapshot through the output manager on bookmarks

	Clock input.Clock // default the system clock
}

// HomingConfig tunes the spring pulling formed particles onto their targets.
type HomingConfig struct {
	Disabled       bool
	Stiffness      float64 // 1/s^2; default 40
	Damping        float64 // 1/s; default 10
	ArriveDistance float64 // default 2
}

// DefaultConfig returns a config with every default filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.MaxParticles <= 0 {
		c.MaxParticles = 10000
	}
	if c.MaxDelta <= 0 {
		c.MaxDelta = 1.0 / 30
	}
	if c.Physics == (systems.Config{}) {
		c.Physics = systems.DefaultConfig()
	}
	if c.Homing.Stiffness <= 0 {
		c.Homing.Stiffness = 40
	}
	if c.Homing.Damping <= 0 {
		c.Homing.Damping = 10
	}
	if c.Homing.ArriveDistance <= 0 {
		c.Homing.ArriveDistance = 2
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = 60
	}
	if c.PerfWindow <= 0 {
		c.PerfWindow = 60
	}
	if c.Clock == nil {
		c.Clock = input.SystemClock
	}
	return c
}

// Engine runs the swarm. It is not safe for concurrent use.
type Engine struct {
	cfg Config
	rng *rand.Rand

	particles []*particle.Particle
	pool      []*particle.Particle

	physics *systems.World
	tracker *input.Tracker
	sampler *shape.Sampler

	// Shape targets live in the ECS world, keyed back from their particle.
	world        *ecs.World
	targetMapper *ecs.Map4[components.Slot, components.Target, components.Reveal, components.Homing]
	targetFilter ecs.Filter4[components.Slot, components.Target, components.Reveal, components.Homing]
	targets      map[*particle.Particle]ecs.Entity

	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager

	paused  bool
	frame   int
	simTime float64

	onCreated   func(*particle.Particle)
	onDestroyed func(*particle.Particle)
	onDrag      func(input.DragEvent)
	onStats     func(telemetry.FrameStats)
}

// New creates an engine with an empty swarm.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	world := ecs.NewWorld()

	e := &Engine{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		physics: systems.NewWorld(cfg.Physics),
		tracker: input.NewTracker(cfg.Input, cfg.Clock),
		world:   world,
		targetMapper: ecs.NewMap4[
			components.Slot,
			components.Target,
			components.Reveal,
			components.Homing,
		](world),
		targetFilter: *ecs.NewFilter4[
			components.Slot,
			components.Target,
			components.Reveal,
			components.Homing,
		](world),
		targets:   make(map[*particle.Particle]ecs.Entity),
		collector: telemetry.NewCollector(cfg.StatsWindow),
		perf:      telemetry.NewPerfCollector(cfg.PerfWindow),
		bookmarks: telemetry.NewBookmarkDetector(10),
	}
	e.sampler = shape.NewSampler(cfg.Sampler, e.rng)
	return e
}

// Config returns the engine configuration with defaults applied.
func (e *Engine) Config() Config {
	return e.cfg
}

// Physics returns the physics world.
func (e *Engine) Physics() *systems.World { return e.physics }

// Tracker returns the input tracker.
func (e *Engine) Tracker() *input.Tracker { return e.tracker }

// Sampler returns the shape sampler.
func (e *Engine) Sampler() *shape.Sampler { return e.sampler }

// OnParticleCreated registers a hook called for every spawned particle.
func (e *Engine) OnParticleCreated(fn func(*particle.Particle)) { e.onCreated = fn }

// OnParticleDestroyed registers a hook called when a particle returns to the pool.
func (e *Engine) OnParticleDestroyed(fn func(*particle.Particle)) { e.onDestroyed = fn }

// OnDrag registers a hook receiving drag moves each frame.
func (e *Engine) OnDrag(fn func(input.DragEvent)) { e.onDrag = fn }

// OnStats registers a hook receiving each flushed telemetry window.
func (e *Engine) OnStats(fn func(telemetry.FrameStats)) { e.onStats = fn }

// SetOutput attaches an output manager for CSV telemetry and snapshots.
func (e *Engine) SetOutput(om *telemetry.OutputManager) { e.outputManager = om }

// Pause stops Update from advancing the simulation.
func (e *Engine) Pause() { e.paused = true }

// Resume restarts a paused engine.
func (e *Engine) Resume() { e.paused = false }

// TogglePause flips the paused state and returns the new value.
func (e *Engine) TogglePause() bool {
	e.paused = !e.paused
	return e.paused
}

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool { return e.paused }

// Bounds returns the canvas particles bounce inside.
func (e *Engine) Bounds() particle.Bounds {
	return particle.Bounds{Width: e.cfg.Width, Height: e.cfg.Height}
}

// Resize changes the canvas. Particles outside it are pushed back in on the next step.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	e.cfg.Width = width
	e.cfg.Height = height
	slog.Debug("canvas resized", "width", width, "height", height)
}

// Update advances the swarm by dt seconds. dt is clamped to MaxDelta.
func (e *Engine) Update(dt float64) {
	if e.paused || dt <= 0 {
		return
	}
	if dt > e.cfg.MaxDelta {
		dt = e.cfg.MaxDelta
	}

	e.perf.StartStep()

	e.perf.StartPhase(telemetry.PhaseInput)
	e.applyInteractions()

	e.perf.StartPhase(telemetry.PhaseHoming)
	if !e.cfg.Homing.Disabled {
		e.updateHoming(dt)
	}

	e.perf.StartPhase(telemetry.PhasePhysics)
	e.physics.Step(e.particles, dt, e.Bounds())
	e.collector.RecordCollisions(e.physics.State().Collisions)

	e.perf.StartPhase(telemetry.PhaseCleanup)
	e.cleanup()

	e.frame++
	e.simTime += dt
	e.collector.RecordFrame(dt)

	e.perf.StartPhase(telemetry.PhaseTelemetry)
	e.flushTelemetry()

	e.perf.EndStep()
}

// applyInteractions advances timed interactions and pushes their forces onto
// interactive particles in range.
func (e *Engine) applyInteractions() {
	e.tracker.Advance(e.cfg.Clock.Now())

	if e.onDrag != nil {
		for _, ev := range e.tracker.DrainDragEvents() {
			e.onDrag(ev)
		}
	} else {
		e.tracker.DrainDragEvents()
	}

	srcs := e.tracker.Forces()
	if len(srcs) == 0 {
		return
	}
	for _, p := range e.particles {
		if !p.Active || !p.Interactive {
			continue
		}
		for i := range srcs {
			if srcs[i].InRange(p.Pos) {
				p.ApplyForce(srcs[i])
			}
		}
	}
}

// Frame returns the number of steps taken.
func (e *Engine) Frame() int { return e.frame }

// SimTime returns simulated seconds.
func (e *Engine) SimTime() float64 { return e.simTime }

// Count returns the number of live particles.
func (e *Engine) Count() int { return len(e.particles) }

// Particles returns the live particles. The slice is owned by the engine.
func (e *Engine) Particles() []*particle.Particle { return e.particles }

// Snapshot returns render state for every renderable particle.
func (e *Engine) Snapshot() []particle.RenderState {
	out := make([]particle.RenderState, 0, len(e.particles))
	for _, p := range e.particles {
		if p.Renderable() {
			out = append(out, p.Render())
		}
	}
	return out
}

// Stats summarises the engine for display.
type Stats struct {
	Running      bool
	Paused       bool
	Frame        int
	SimTime      float64
	Particles    int
	MaxParticles int
	Pooled       int
	Targets      int
	Arrived      int
	Physics      systems.State
	Input        input.Stats
	Perf         telemetry.PerfStats
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("paused", s.Paused),
		slog.Int("frame", s.Frame),
		slog.Int("particles", s.Particles),
		slog.Int("pooled", s.Pooled),
		slog.Int("targets", s.Targets),
		slog.Int("arrived", s.Arrived),
		slog.Any("physics", s.Physics),
	)
}

// Stats returns the current engine summary.
func (e *Engine) Stats() Stats {
	arrived := 0
	query := e.targetFilter.Query()
	for query.Next() {
		_, _, _, h := query.Get()
		if h.Arrived {
			arrived++
		}
	}
	return Stats{
		Running:      !e.paused,
		Paused:       e.paused,
		Frame:        e.frame,
		SimTime:      e.simTime,
		Particles:    len(e.particles),
		MaxParticles: e.cfg.MaxParticles,
		Pooled:       len(e.pool),
		Targets:      len(e.targets),
		Arrived:      arrived,
		Physics:      e.physics.State(),
		Input:        e.tracker.Stats(),
		Perf:         e.perf.Stats(),
	}
}

// RecordRender times a render pass into the perf collector's render phase.
func (e *Engine) RecordRender(d time.Duration) {
	e.perf.RecordPhase(telemetry.PhaseRender, d)
}

// Perf returns the current performance window.
func (e *Engine) Perf() telemetry.PerfStats { return e.perf.Stats() }

// Params is a partial runtime update; nil fields are left alone.
type Params struct {
	Physics      systems.Params
	MaxParticles *int
	Color        *particle.ColorMode
	Collisions   *bool
}

// SetParameters applies p.
func (e *Engine) SetParameters(p Params) {
	e.physics.SetParameters(p.Physics)
	if p.MaxParticles != nil && *p.MaxParticles > 0 {
		e.cfg.MaxParticles = *p.MaxParticles
	}
	if p.Color != nil {
		e.cfg.Color = *p.Color
	}
	if p.Collisions != nil {
		e.physics.SetCollisions(*p.Collisions, e.physics.Config().CollisionResponse)
	}
}

// Reset removes every particle, field and interaction and restores the
// physics configuration. The engine stays paused or running as it was.
func (e *Engine) Reset() {
	e.RemoveAll()
	e.physics.Reset()
	e.tracker.Clear()
	slog.Info("engine reset")
}
