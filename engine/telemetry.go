package engine

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/particle"
	"github.com/pthm-cable/swarm/telemetry"
	"github.com/pthm-cable/swarm/vmath"
)

// flushTelemetry closes the stats window when due, then reports and bookmarks it.
func (e *Engine) flushTelemetry() {
	if !e.collector.ShouldFlush(e.frame) {
		return
	}

	stats := e.collector.Flush(e.frame, e.simTime, e.sample())
	perfStats := e.perf.Stats()

	if e.onStats != nil {
		e.onStats(stats)
	}

	if e.cfg.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if e.outputManager != nil {
		if err := e.outputManager.WriteFrames(stats); err != nil {
			slog.Error("failed to write frames", "error", err)
		}
		if err := e.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range e.bookmarks.Check(stats) {
		if e.cfg.LogStats {
			bm.LogBookmark()
		}
		if e.outputManager == nil {
			continue
		}
		if err := e.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if e.cfg.SnapshotOnBookmark {
			snap := e.CaptureSnapshot()
			snap.Bookmark = &bm
			if path, err := e.outputManager.WriteSnapshot(snap); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			} else {
				slog.Info("snapshot saved", "path", path, "bookmark", string(bm.Type))
			}
		}
	}
}

// sample gathers the per-window state the collector cannot count itself.
func (e *Engine) sample() telemetry.Sample {
	s := telemetry.Sample{
		Particles:    len(e.particles),
		Pooled:       len(e.pool),
		Targets:      len(e.targets),
		Interactions: e.tracker.Stats().Interactions,
		Fields:       len(e.physics.Fields()),
		Speeds:       make([]float64, 0, len(e.particles)),
	}
	for _, p := range e.particles {
		s.Speeds = append(s.Speeds, p.Speed())
	}

	if len(e.targets) > 0 {
		s.TargetDists = make([]float64, 0, len(e.targets))
	}
	query := e.targetFilter.Query()
	for query.Next() {
		slot, t, _, h := query.Get()
		if h.Arrived {
			s.Arrived++
		}
		s.TargetDists = append(s.TargetDists, vmath.Distance(slot.Particle.Pos, t.Pos))
	}
	return s
}

// CaptureSnapshot records particles, targets and fields for a later restore.
// Pattern motion and pending reveal delays are not kept.
func (e *Engine) CaptureSnapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   e.cfg.Seed,
		Width:     e.cfg.Width,
		Height:    e.cfg.Height,
		Frame:     e.frame,
		SimTime:   e.simTime,
		Particles: make([]telemetry.ParticleState, 0, len(e.particles)),
	}

	for _, p := range e.particles {
		ps := telemetry.ParticleState{
			X: p.Pos.X, Y: p.Pos.Y,
			VelX: p.Vel.X, VelY: p.Vel.Y,
			Size:  p.Size,
			Mass:  p.Mass,
			Color: p.Color.Clamped().Hex(),
			Alpha: p.Alpha,
			Glow:  p.Glow,
			Life:  p.Life,
			Decay: p.Decay,
		}
		if ent, ok := e.targets[p]; ok && e.world.Alive(ent) {
			_, t, r, _ := e.targetMapper.Get(ent)
			delay := 0.0
			if !r.Revealed {
				delay = r.Delay - r.Elapsed
			}
			ps.Target = &telemetry.TargetState{X: t.Pos.X, Y: t.Pos.Y, Delay: delay}
		}
		snap.Particles = append(snap.Particles, ps)
	}

	for _, f := range e.physics.Fields() {
		snap.Fields = append(snap.Fields, telemetry.FieldState{
			Kind:     f.Kind.String(),
			X:        f.Pos.X,
			Y:        f.Pos.Y,
			Strength: f.Strength,
			Radius:   f.Radius,
		})
	}
	return snap
}

// RestoreSnapshot replaces the swarm with the snapshot's particles and fields.
func (e *Engine) RestoreSnapshot(snap *telemetry.Snapshot) error {
	if snap.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", snap.Version, telemetry.SnapshotVersion)
	}

	fields := make([]forces.Source, 0, len(snap.Fields))
	for _, fs := range snap.Fields {
		kind, err := forces.ParseKind(fs.Kind)
		if err != nil {
			return fmt.Errorf("restoring field: %w", err)
		}
		fields = append(fields, forces.Source{
			Kind:     kind,
			Pos:      vmath.V(fs.X, fs.Y),
			Strength: fs.Strength,
			Radius:   fs.Radius,
		})
	}

	e.RemoveAll()
	e.physics.ClearFields()
	for _, f := range fields {
		e.physics.AddField(f)
	}
	e.Resize(snap.Width, snap.Height)
	e.frame = snap.Frame
	e.simTime = snap.SimTime

	for _, ps := range snap.Particles {
		opts := particle.Options{
			Vel:   vmath.V(ps.VelX, ps.VelY),
			Size:  ps.Size,
			Mass:  ps.Mass,
			Alpha: ps.Alpha,
			Glow:  ps.Glow,
			Life:  ps.Life,
			Decay: ps.Decay,
		}
		if c, err := particle.ParseColor(ps.Color); err == nil {
			opts.Color = &c
		}
		pos := vmath.V(ps.X, ps.Y)
		p := e.acquire(pos, e.spawnOptions(opts))
		if p == nil {
			slog.Warn("particle limit reached restoring snapshot", "max", e.cfg.MaxParticles)
			break
		}
		if ps.Target != nil {
			tp := vmath.V(ps.Target.X, ps.Target.Y)
			e.bindTarget(p, components.Target{Pos: tp, Center: tp}, ps.Target.Delay)
		}
	}

	slog.Info("snapshot restored", "frame", snap.Frame, "particles", len(e.particles), "fields", len(fields))
	return nil
}
