package systems

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/vmath"
)

// CollisionResponse selects what happens after two overlapping particles are separated.
type CollisionResponse uint8

const (
	// ResponseBounce exchanges an elastic impulse along the collision normal.
	ResponseBounce CollisionResponse = iota
	// ResponseNone only separates the pair.
	ResponseNone
)

func (r CollisionResponse) String() string {
	if r == ResponseNone {
		return "none"
	}
	return "bounce"
}

// ParseCollisionResponse maps "bounce" or "none" to its CollisionResponse.
func ParseCollisionResponse(s string) (CollisionResponse, error) {
	switch s {
	case "bounce", "":
		return ResponseBounce, nil
	case "none":
		return ResponseNone, nil
	}
	return 0, fmt.Errorf("unknown collision response %q", s)
}

// Config configures a World. Start from DefaultConfig; zero numeric fields
// are filled with their defaults at construction.
type Config struct {
	Gravity   vmath.Vec // default (0, 9.8); only Y is applied
	Wind      vmath.Vec // only X is applied
	Friction  float64   // default 0.99; default for spawned particles
	Bounce    float64   // default 0.8; default for spawned particles
	TimeScale float64   // default 1

	CollisionDetection bool // default true
	CollisionResponse  CollisionResponse

	GridSize               float64 // default 50
	UseSpatialPartitioning bool    // default true
	PartitionThreshold     int     // default 100; grid used only above this count
}

// DefaultConfig returns the default world configuration.
func DefaultConfig() Config {
	return Config{
		Gravity:                vmath.V(0, 9.8),
		Friction:               0.99,
		Bounce:                 0.8,
		TimeScale:              1,
		CollisionDetection:     true,
		CollisionResponse:      ResponseBounce,
		GridSize:               50,
		UseSpatialPartitioning: true,
		PartitionThreshold:     100,
	}
}

func (c Config) withDefaults() Config {
	if c.Friction == 0 {
		c.Friction = 0.99
	}
	if c.Bounce == 0 {
		c.Bounce = 0.8
	}
	if c.TimeScale == 0 {
		c.TimeScale = 1
	}
	if c.GridSize <= 0 {
		c.GridSize = 50
	}
	if c.PartitionThreshold == 0 {
		c.PartitionThreshold = 100
	}
	return c
}

// FieldID identifies a registered force field.
type FieldID uint64

type field struct {
	id  FieldID
	src forces.Source
}

// World owns the shared simulation step: global forces, persistent force
// fields and particle-particle collisions.
type World struct {
	cfg     Config
	initial Config

	fields []field
	nextID FieldID

	grid       *SpatialGrid
	useGrid    bool // grid rebuilt for the current step
	candidates []int
	checks     int
	collided   int
}

// NewWorld creates a world from cfg.
func NewWorld(cfg Config) *World {
	cfg = cfg.withDefaults()
	return &World{
		cfg:     cfg,
		initial: cfg,
		grid:    NewSpatialGrid(0, 0, cfg.GridSize),
	}
}

// Config returns the current configuration.
func (w *World) Config() Config {
	return w.cfg
}

// Step advances every active particle by dt scaled by the time scale.
// Particles are processed in index order: global forces, fields, collisions
// with later particles, then the particle's own update.
func (w *World) Step(particles []*particle.Particle, dt float64, bounds particle.Bounds) {
	dt *= w.cfg.TimeScale
	w.checks = 0
	w.collided = 0

	w.useGrid = w.cfg.UseSpatialPartitioning && len(particles) > w.cfg.PartitionThreshold
	if w.useGrid {
		w.grid.Rebuild(particles, bounds)
	}

	global := w.GlobalForces()

	for i, p := range particles {
		if !p.Active {
			continue
		}

		for _, f := range global {
			p.ApplyForce(f)
		}
		w.applyFields(p)

		if w.cfg.CollisionDetection {
			w.collide(particles, i)
		}

		// Forces are already accumulated; update only integrates.
		p.Update(dt, bounds, nil)
	}
}

// GlobalForces returns the always-on gravity and wind sources.
// A zero gravity or wind vector contributes nothing.
func (w *World) GlobalForces() []forces.Source {
	out := make([]forces.Source, 0, 2)
	if w.cfg.Gravity != vmath.Zero {
		out = append(out, forces.NewGravity(w.cfg.Gravity.Y))
	}
	if w.cfg.Wind != vmath.Zero {
		out = append(out, forces.NewWind(w.cfg.Wind.X))
	}
	return out
}

func (w *World) applyFields(p *particle.Particle) {
	for i := range w.fields {
		if w.fields[i].src.InRange(p.Pos) {
			p.ApplyForce(w.fields[i].src)
		}
	}
}

func (w *World) collide(particles []*particle.Particle, i int) {
	p := particles[i]
	check := func(j int) bool {
		if j <= i {
			return true
		}
		other := particles[j]
		if !other.Active {
			return true
		}
		w.checks++
		if ResolveCollision(p, other, w.cfg.CollisionResponse) {
			w.collided++
		}
		return true
	}

	if w.useGrid {
		// Visit candidates in index order so results match the brute-force path.
		w.candidates = w.candidates[:0]
		w.grid.Neighbors(p.Pos, func(j int) bool {
			if j > i {
				w.candidates = append(w.candidates, j)
			}
			return true
		})
		sort.Ints(w.candidates)
		for _, j := range w.candidates {
			check(j)
		}
		return
	}
	for j := i + 1; j < len(particles); j++ {
		check(j)
	}
}

// ResolveCollision separates p1 and p2 if their discs overlap and, for
// ResponseBounce, exchanges an impulse along the line of centres.
// It reports whether the pair overlapped. Coincident centres are skipped.
func ResolveCollision(p1, p2 *particle.Particle, response CollisionResponse) bool {
	dx := p2.Pos.X - p1.Pos.X
	dy := p2.Pos.Y - p1.Pos.Y
	dist := math.Hypot(dx, dy)
	minDist := p1.Size + p2.Size

	if dist >= minDist || dist == 0 {
		return false
	}

	nx := dx / dist
	ny := dy / dist

	// Half the overlap each along the normal.
	overlap := minDist - dist
	sx := nx * overlap * 0.5
	sy := ny * overlap * 0.5
	p1.Pos.X -= sx
	p1.Pos.Y -= sy
	p2.Pos.X += sx
	p2.Pos.Y += sy

	if response != ResponseBounce {
		return true
	}

	velAlongNormal := (p2.Vel.X-p1.Vel.X)*nx + (p2.Vel.Y-p1.Vel.Y)*ny
	if velAlongNormal > 0 {
		return true
	}

	restitution := math.Min(p1.Bounce, p2.Bounce)
	impulse := -(1 + restitution) * velAlongNormal
	total := p1.Mass + p2.Mass

	ix := impulse * nx
	iy := impulse * ny
	p1.Vel.X -= ix * p2.Mass / total
	p1.Vel.Y -= iy * p2.Mass / total
	p2.Vel.X += ix * p1.Mass / total
	p2.Vel.Y += iy * p1.Mass / total
	return true
}

// AddField registers a persistent force field and returns its id.
func (w *World) AddField(src forces.Source) FieldID {
	w.nextID++
	w.fields = append(w.fields, field{id: w.nextID, src: src})
	return w.nextID
}

// UpdateField replaces the source of a registered field.
func (w *World) UpdateField(id FieldID, src forces.Source) bool {
	for i := range w.fields {
		if w.fields[i].id == id {
			w.fields[i].src = src
			return true
		}
	}
	return false
}

// RemoveField unregisters a field. It reports whether the field existed.
func (w *World) RemoveField(id FieldID) bool {
	for i := range w.fields {
		if w.fields[i].id == id {
			w.fields = append(w.fields[:i], w.fields[i+1:]...)
			return true
		}
	}
	return false
}

// ClearFields removes every registered field.
func (w *World) ClearFields() {
	w.fields = w.fields[:0]
}

// Fields returns a copy of the registered sources in registration order.
func (w *World) Fields() []forces.Source {
	out := make([]forces.Source, len(w.fields))
	for i := range w.fields {
		out[i] = w.fields[i].src
	}
	return out
}

// FieldAt returns the first registered field whose radius covers pos.
func (w *World) FieldAt(pos vmath.Vec) (forces.Source, bool) {
	for i := range w.fields {
		if w.fields[i].src.InRange(pos) {
			return w.fields[i].src, true
		}
	}
	return forces.Source{}, false
}

// Default trajectory preview parameters.
const (
	DefaultPredictSteps = 10
	DefaultPredictDt    = 0.016
)

// PredictTrajectory integrates a copy of p under global and field forces
// and returns the position after each step. Collisions, boundaries and the
// live particle are untouched.
func (w *World) PredictTrajectory(p *particle.Particle, steps int, dt float64) []vmath.Vec {
	if steps <= 0 {
		steps = DefaultPredictSteps
	}
	if dt <= 0 {
		dt = DefaultPredictDt
	}

	tmp := p.Clone()
	global := w.GlobalForces()
	path := make([]vmath.Vec, 0, steps)
	for i := 0; i < steps; i++ {
		for _, f := range global {
			tmp.ApplyForce(f)
		}
		w.applyFields(tmp)
		tmp.Integrate(dt)
		path = append(path, tmp.Pos)
	}
	return path
}

// Params is a partial update for SetParameters; nil fields are left alone.
type Params struct {
	Gravity   *vmath.Vec
	Wind      *vmath.Vec
	Friction  *float64
	Bounce    *float64
	TimeScale *float64
}

// SetParameters applies the non-nil fields of p.
func (w *World) SetParameters(p Params) {
	if p.Gravity != nil {
		w.cfg.Gravity = *p.Gravity
	}
	if p.Wind != nil {
		w.cfg.Wind = *p.Wind
	}
	if p.Friction != nil {
		w.cfg.Friction = *p.Friction
	}
	if p.Bounce != nil {
		w.cfg.Bounce = *p.Bounce
	}
	if p.TimeScale != nil {
		w.cfg.TimeScale = *p.TimeScale
	}
}

// SetCollisions toggles collision detection and the response mode.
func (w *World) SetCollisions(enabled bool, response CollisionResponse) {
	w.cfg.CollisionDetection = enabled
	w.cfg.CollisionResponse = response
}

// State is a summary of the world for display and logging.
type State struct {
	Gravity             vmath.Vec
	Wind                vmath.Vec
	Friction            float64
	Bounce              float64
	TimeScale           float64
	Fields              int
	CollisionDetection  bool
	SpatialPartitioning bool
	GridActive          bool
	PairChecks          int
	Collisions          int
}

// State returns the current world summary including last-step collision counts.
func (w *World) State() State {
	return State{
		Gravity:             w.cfg.Gravity,
		Wind:                w.cfg.Wind,
		Friction:            w.cfg.Friction,
		Bounce:              w.cfg.Bounce,
		TimeScale:           w.cfg.TimeScale,
		Fields:              len(w.fields),
		CollisionDetection:  w.cfg.CollisionDetection,
		SpatialPartitioning: w.cfg.UseSpatialPartitioning,
		GridActive:          w.useGrid,
		PairChecks:          w.checks,
		Collisions:          w.collided,
	}
}

// LogValue implements slog.LogValuer.
func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("gravity_y", s.Gravity.Y),
		slog.Float64("wind_x", s.Wind.X),
		slog.Float64("friction", s.Friction),
		slog.Float64("bounce", s.Bounce),
		slog.Float64("time_scale", s.TimeScale),
		slog.Int("fields", s.Fields),
		slog.Bool("collisions", s.CollisionDetection),
		slog.Bool("grid", s.GridActive),
		slog.Int("pair_checks", s.PairChecks),
		slog.Int("collided", s.Collisions),
	)
}

// Reset restores the construction-time configuration and drops all fields.
func (w *World) Reset() {
	w.cfg = w.initial
	w.fields = nil
	w.grid.Clear()
	w.useGrid = false
	w.checks = 0
	w.collided = 0
}

// Preset field constructors.

// GravityField returns an attraction field at pos.
func GravityField(pos vmath.Vec) forces.Source {
	return forces.NewAttraction(pos, 100, 100)
}

// RepulsionField returns a repulsion field at pos.
func RepulsionField(pos vmath.Vec) forces.Source {
	return forces.NewRepulsion(pos, 100, 100)
}

// VortexField returns a vortex field at pos.
func VortexField(pos vmath.Vec) forces.Source {
	return forces.NewVortex(pos, 50, 100)
}

// NoiseField returns a noise field at pos.
func NoiseField(pos vmath.Vec) forces.Source {
	return forces.NewNoise(pos, 10, 100)
}
