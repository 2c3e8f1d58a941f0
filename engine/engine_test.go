package engine

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/input"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
	"github.com/pthm-cable/swarm/vmath"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

const frame = 1.0 / 60

// newTestEngine returns an engine with no gravity and no collisions so
// particles only move under the forces a test applies.
func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1000, 0)}
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 400, 300
	cfg.Physics = systems.DefaultConfig()
	cfg.Physics.Gravity = vmath.Zero
	cfg.Physics.CollisionDetection = false
	cfg.Clock = clk
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), clk
}

func run(e *Engine, seconds float64) {
	for i := 0; i < int(seconds/frame); i++ {
		e.Update(frame)
	}
}

func grid(n int, origin vmath.Vec, step float64) []shape.Sample {
	samples := make([]shape.Sample, n)
	for i := range samples {
		samples[i].Pos = vmath.V(origin.X+float64(i%10)*step, origin.Y+float64(i/10)*step)
	}
	return samples
}

func TestSpawnRespectsMaxParticles(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) { c.MaxParticles = 5 })

	for i := 0; i < 5; i++ {
		if e.Spawn(vmath.V(10, 10), particle.Options{}) == nil {
			t.Fatalf("spawn %d returned nil below the limit", i)
		}
	}
	if p := e.Spawn(vmath.V(10, 10), particle.Options{}); p != nil {
		t.Error("spawn past MaxParticles should return nil")
	}

	e.RemoveAll()
	got := e.SpawnSamples(grid(8, vmath.V(50, 50), 5), SpawnOptions{})
	if got != 5 || e.Count() != 5 {
		t.Errorf("SpawnSamples created %d (count %d), want 5", got, e.Count())
	}
}

func TestSpawnDefaultsFromPhysics(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) {
		c.Physics.Friction = 0.9
		c.Physics.Bounce = 0.5
	})
	p := e.Spawn(vmath.V(10, 10), particle.Options{})
	if p.Friction != 0.9 || p.Bounce != 0.5 {
		t.Errorf("friction %v bounce %v, want world defaults 0.9/0.5", p.Friction, p.Bounce)
	}
	if p.Size != 3 || p.Mass != 1 || p.Trail.Cap() != 10 {
		t.Errorf("size %v mass %v trail %d, want 3/1/10", p.Size, p.Mass, p.Trail.Cap())
	}

	q := e.Spawn(vmath.V(10, 10), particle.Options{Size: 7, Friction: 0.5})
	if q.Size != 7 || q.Friction != 0.5 {
		t.Errorf("overrides not applied: size %v friction %v", q.Size, q.Friction)
	}
}

func TestUpdateClampsDeltaAndPause(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	e.Update(1)
	if math.Abs(e.SimTime()-1.0/30) > 1e-12 {
		t.Errorf("sim time %v, want clamped 1/30", e.SimTime())
	}

	e.Pause()
	e.Update(frame)
	if e.Frame() != 1 {
		t.Errorf("paused update advanced to frame %d", e.Frame())
	}
	if e.TogglePause() {
		t.Error("TogglePause should resume")
	}
	e.Update(frame)
	if e.Frame() != 2 {
		t.Errorf("frame %d after resume, want 2", e.Frame())
	}
}

func TestCleanupPoolsParticles(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	var created, destroyed int
	e.OnParticleCreated(func(*particle.Particle) { created++ })
	e.OnParticleDestroyed(func(*particle.Particle) { destroyed++ })

	a := e.Spawn(vmath.V(10, 10), particle.Options{})
	e.Spawn(vmath.V(20, 10), particle.Options{})
	a.Destroy()
	e.Update(frame)

	if e.Count() != 1 || destroyed != 1 {
		t.Fatalf("count %d destroyed %d, want 1/1", e.Count(), destroyed)
	}
	if s := e.Stats(); s.Pooled != 1 {
		t.Errorf("pooled = %d, want 1", s.Pooled)
	}

	b := e.Spawn(vmath.V(30, 30), particle.Options{})
	if b != a {
		t.Error("spawn should reuse the pooled particle")
	}
	if !b.Active || !b.Visible || b.Pos != vmath.V(30, 30) {
		t.Errorf("reused particle not reconfigured: %+v", b)
	}
	if created != 3 {
		t.Errorf("created hook fired %d times, want 3", created)
	}

	e.RemoveAll()
	if e.Count() != 0 || destroyed != 3 || e.Stats().Pooled != 2 {
		t.Errorf("after RemoveAll count %d destroyed %d pooled %d", e.Count(), destroyed, e.Stats().Pooled)
	}
}

func TestDecayingParticlesAreReclaimed(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Spawn(vmath.V(10, 10), particle.Options{Decay: 10})
	run(e, 0.5)
	if e.Count() != 0 {
		t.Errorf("count = %d, want decayed particle reclaimed", e.Count())
	}
}

func TestFormedParticlesArrive(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	samples := grid(20, vmath.V(150, 120), 6)
	want := make([]vmath.Vec, len(samples))
	for i := range samples {
		want[i] = samples[i].Pos
	}

	n := e.SpawnSamples(samples, SpawnOptions{Form: true})
	if n != 20 || e.Stats().Targets != 20 {
		t.Fatalf("spawned %d with %d targets", n, e.Stats().Targets)
	}

	run(e, 4)

	for i, p := range e.Particles() {
		if d := vmath.Distance(p.Pos, want[i]); d > 0.5 {
			t.Errorf("particle %d is %.2f from its target", i, d)
		}
	}
	if s := e.Stats(); s.Arrived != 20 {
		t.Errorf("arrived = %d, want 20", s.Arrived)
	}
}

func TestRevealDelayHoldsParticles(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	centre := vmath.V(100, 150)
	samples := []shape.Sample{{Pos: vmath.V(200, 150)}}
	e.SpawnSamples(samples, SpawnOptions{
		Form:           true,
		Pattern:        shape.PatternExplosion,
		PatternOptions: shape.PatternOptions{Center: &centre},
		// 100px from the centre at 200px/s reveals after 0.5s.
		Reveal:        shape.RevealRadial,
		RevealOptions: shape.RevealOptions{Center: &centre},
	})
	p := e.Particles()[0]
	if p.Pos != centre {
		t.Fatalf("explosion should spawn at the centre, got %v", p.Pos)
	}

	delay := samples[0].Delay
	if math.Abs(delay-0.5) > 1e-9 {
		t.Fatalf("delay = %v, want 0.5", delay)
	}
	e.Update(frame)
	if p.Visible || p.Pos != centre {
		t.Errorf("before reveal: visible %v pos %v", p.Visible, p.Pos)
	}

	run(e, delay+0.1)
	if !p.Visible {
		t.Error("particle should be visible after its delay")
	}
	if p.Pos.X <= 100 {
		t.Errorf("revealed particle should head outward, at %v", p.Pos)
	}
}

func TestInteractionsPushParticles(t *testing.T) {
	e, clk := newTestEngine(t, nil)
	p := e.Spawn(vmath.V(100, 100), particle.Options{})
	still := e.Spawn(vmath.V(100, 200), particle.Options{NonInteractive: true})

	id := e.Tracker().CreateInteraction(vmath.V(150, 100), input.Attract, input.Options{
		Strength: 500,
		Radius:   100,
		Duration: time.Second,
	})
	e.Update(frame)
	if p.Vel.X <= 0 {
		t.Errorf("attraction should pull +x, vel %v", p.Vel)
	}
	if still.Vel != vmath.Zero {
		t.Errorf("non-interactive particle moved: %v", still.Vel)
	}

	clk.now = clk.now.Add(2 * time.Second)
	e.Update(frame)
	if _, ok := e.Tracker().Get(id); ok {
		t.Error("interaction should expire after its duration")
	}
}

func TestDragEventsReachHook(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	var got []input.DragEvent
	e.OnDrag(func(ev input.DragEvent) { got = append(got, ev) })

	id := e.Tracker().CreateDrag(vmath.V(10, 10))
	e.Tracker().Move(id, vmath.V(20, 20))
	e.Update(frame)

	if len(got) != 1 || got[0].Pos != vmath.V(20, 20) {
		t.Errorf("drag events = %+v", got)
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset  Preset
		opts    PresetOptions
		fields  int
		gravity float64
		wind    float64
	}{
		{PresetExplosion, PresetOptions{}, 2, 0, 0},
		{PresetGalaxy, DefaultPresetOptions(PresetGalaxy), 2, 0, 0},
		{PresetSpiral, PresetOptions{}, 2, 0, 0},
		{PresetWave, PresetOptions{}, 0, 0, 0},
		{PresetRain, DefaultPresetOptions(PresetRain), 0, 15, 20},
		{PresetRain, PresetOptions{}, 0, 9.8, 0},
		{PresetFireworks, PresetOptions{Gravity: 12}, 0, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			e.Physics().AddField(systems.NoiseField(vmath.V(1, 1)))

			e.ApplyPreset(tt.preset, tt.opts)

			if got := len(e.Physics().Fields()); got != tt.fields {
				t.Errorf("fields = %d, want %d", got, tt.fields)
			}
			st := e.Physics().State()
			if math.Abs(st.Gravity.Y-tt.gravity) > 1e-9 {
				t.Errorf("gravity = %v, want %v", st.Gravity.Y, tt.gravity)
			}
			if math.Abs(st.Wind.X-tt.wind) > 1e-9 {
				t.Errorf("wind = %v, want %v", st.Wind.X, tt.wind)
			}
		})
	}
}

func TestExplosionPresetFields(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.ApplyPreset(PresetExplosion, PresetOptions{})

	f := e.Physics().Fields()
	if f[0].Pos != vmath.V(200, 150) || f[0].Strength != 500 || f[0].Radius != 200 {
		t.Errorf("repulsion = %+v", f[0])
	}
	if f[1].Strength != 10 || f[1].Radius != 400 {
		t.Errorf("noise = %+v", f[1])
	}
}

func TestWavePresetReanimatesTargets(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.SpawnSamples(grid(5, vmath.V(100, 100), 10), SpawnOptions{Form: true})
	e.ApplyPreset(PresetWave, PresetOptions{})

	query := e.targetFilter.Query()
	for query.Next() {
		_, tg, _, _ := query.Get()
		if tg.Anim.Pattern != shape.PatternWave || tg.Anim.Amplitude != 20 {
			t.Errorf("target anim = %+v", tg.Anim)
		}
	}
}

func TestParsePreset(t *testing.T) {
	for _, p := range Presets() {
		got, err := ParsePreset(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePreset(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParsePreset("tornado"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestTargetAt(t *testing.T) {
	centre := vmath.V(100, 100)
	pos := vmath.V(150, 100)

	tests := []struct {
		name  string
		anim  shape.Anim
		since float64
		want  vmath.Vec
	}{
		{"none", shape.Anim{}, 3, pos},
		{"wave zero phase", shape.Anim{Pattern: shape.PatternWave, Speed: 2, Amplitude: 20}, 0, pos},
		{"wave quarter", shape.Anim{Pattern: shape.PatternWave, Speed: 1, Amplitude: 20}, math.Pi / 2, vmath.V(150, 120)},
		{"spiral settles", shape.Anim{Pattern: shape.PatternSpiral, Distance: 50, Speed: 1}, 50, pos},
		{"spiral starts wide", shape.Anim{Pattern: shape.PatternSpiral, Distance: 50, Speed: 1}, 0, vmath.V(200, 100)},
		{"fireworks launch", shape.Anim{Pattern: shape.PatternFireworks, LaunchDelay: 0.5, ExplosionDelay: 2}, 0, vmath.V(100, 300)},
		{"fireworks burst", shape.Anim{Pattern: shape.PatternFireworks, LaunchDelay: 0.5, ExplosionDelay: 2}, 1.5, pos},
		{"galaxy start", shape.Anim{Pattern: shape.PatternGalaxy, Distance: 50, Speed: 0.5, Oscillation: 5}, 0, pos},
		{"galaxy quarter turn", shape.Anim{Pattern: shape.PatternGalaxy, Distance: 50, Speed: 1}, math.Pi / 2, vmath.V(100, 150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := targetAt(components.Target{Pos: pos, Center: centre, Anim: tt.anim}, tt.since, 300)
			if vmath.Distance(got, tt.want) > 1e-6 {
				t.Errorf("targetAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.SpawnSamples(grid(3, vmath.V(100, 100), 10), SpawnOptions{Form: true})
	e.Spawn(vmath.V(50, 60), particle.Options{Vel: vmath.V(1, 2), Decay: 0.1})
	e.ApplyPreset(PresetGalaxy, PresetOptions{})
	run(e, 0.25)

	snap := e.CaptureSnapshot()
	if len(snap.Particles) != 4 || len(snap.Fields) != 2 {
		t.Fatalf("snapshot has %d particles, %d fields", len(snap.Particles), len(snap.Fields))
	}

	r, _ := newTestEngine(t, nil)
	if err := r.RestoreSnapshot(snap); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if r.Count() != 4 || r.Stats().Targets != 3 || len(r.Physics().Fields()) != 2 {
		t.Errorf("restored count %d targets %d fields %d", r.Count(), r.Stats().Targets, len(r.Physics().Fields()))
	}
	if r.Frame() != e.Frame() {
		t.Errorf("frame = %d, want %d", r.Frame(), e.Frame())
	}
	for i, p := range r.Particles() {
		want := snap.Particles[i]
		if p.Pos != vmath.V(want.X, want.Y) || p.Vel != vmath.V(want.VelX, want.VelY) {
			t.Errorf("particle %d at %v vel %v, want %+v", i, p.Pos, p.Vel, want)
		}
	}

	snap.Version = 99
	if err := r.RestoreSnapshot(snap); err == nil {
		t.Error("expected version error")
	}
}

func TestStatsWindowFlushes(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) { c.StatsWindow = 10 })
	e.SpawnSamples(grid(10, vmath.V(100, 100), 10), SpawnOptions{Form: true})

	var windows int
	var last int
	e.OnStats(func(s telemetry.FrameStats) {
		windows++
		last = s.Spawned
	})
	run(e, 25*frame)

	if windows != 2 {
		t.Errorf("windows = %d, want 2", windows)
	}
	if last != 0 {
		t.Errorf("second window spawned = %d, want 0", last)
	}
}

func TestSpawnText(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	n, err := e.SpawnText("Go", shape.FontSpec{Size: 40}, shape.ModeFill, SpawnOptions{})
	if err != nil {
		t.Fatalf("SpawnText: %v", err)
	}
	if n == 0 || n != e.Count() {
		t.Fatalf("spawned %d, count %d", n, e.Count())
	}

	c := shape.Centroid(samplesOf(e))
	if math.Abs(c.X-200) > 15 || math.Abs(c.Y-150) > 15 {
		t.Errorf("text centroid %v not near canvas centre", c)
	}
}

func samplesOf(e *Engine) []shape.Sample {
	out := make([]shape.Sample, e.Count())
	for i, p := range e.Particles() {
		out[i].Pos = p.Pos
	}
	return out
}

func TestSpawnSkipsNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		spawn func(e *Engine) (int, error)
	}{
		{"samples", func(e *Engine) (int, error) {
			samples := grid(5, vmath.V(100, 100), 10)
			samples = append(samples,
				shape.Sample{Pos: vmath.V(math.NaN(), 10)},
				shape.Sample{Pos: vmath.V(20, math.Inf(-1))},
			)
			return e.SpawnSamples(samples, SpawnOptions{}), nil
		}},
		{"formed samples", func(e *Engine) (int, error) {
			samples := grid(5, vmath.V(100, 100), 10)
			samples = append(samples, shape.Sample{Pos: vmath.V(math.NaN(), math.NaN())})
			return e.SpawnSamples(samples, SpawnOptions{Form: true}), nil
		}},
		{"svg", func(e *Engine) (int, error) {
			doc := `<svg viewBox="0 0 100 100">
				<polyline points="NaN,10 50,50 90,10"/>
				<polyline points="10,90 50,60 90,90"/>
			</svg>`
			return e.SpawnSVG(strings.NewReader(doc), shape.SVGOptions{}, false, SpawnOptions{})
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil)
			n, err := tc.spawn(e)
			if err != nil {
				t.Fatalf("spawn: %v", err)
			}
			if n == 0 {
				t.Fatal("expected the finite samples to spawn")
			}
			for i := 0; i < 5; i++ {
				e.Update(frame)
			}
			for i, p := range e.Particles() {
				if p.Active && (!vmath.Finite(p.Pos) || !vmath.Finite(p.Vel)) {
					t.Fatalf("particle %d active with pos %v vel %v", i, p.Pos, p.Vel)
				}
			}
		})
	}
}

func TestSpawnRejectsNonFinitePosition(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if p := e.Spawn(vmath.V(math.NaN(), 0), particle.Options{}); p != nil {
		t.Errorf("spawned at NaN: %v", p.Pos)
	}
	if e.Count() != 0 {
		t.Errorf("count = %d, want 0", e.Count())
	}
}
