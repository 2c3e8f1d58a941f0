package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/shape"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/vmath"
)

// Preset is a named arrangement of global forces and fields.
type Preset uint8

const (
	PresetExplosion Preset = iota
	PresetRain
	PresetFireworks
	PresetGalaxy
	PresetWave
	PresetSpiral
)

var presetNames = [...]string{
	PresetExplosion: "explosion",
	PresetRain:      "rain",
	PresetFireworks: "fireworks",
	PresetGalaxy:    "galaxy",
	PresetWave:      "wave",
	PresetSpiral:    "spiral",
}

func (p Preset) String() string {
	if int(p) < len(presetNames) {
		return presetNames[p]
	}
	return fmt.Sprintf("preset(%d)", p)
}

// ParsePreset maps a preset name to its Preset.
func ParsePreset(s string) (Preset, error) {
	for p, name := range presetNames {
		if name == s {
			return Preset(p), nil
		}
	}
	return 0, fmt.Errorf("unknown preset %q", s)
}

// Presets lists every preset in display order.
func Presets() []Preset {
	return []Preset{PresetExplosion, PresetRain, PresetFireworks, PresetGalaxy, PresetWave, PresetSpiral}
}

// PresetOptions tunes a preset. Zero fields fall back to the preset's own default.
type PresetOptions struct {
	Strength     float64 // explosion repulsion 500; spiral vortex 30
	Chaos        float64 // explosion noise 10
	Gravity      float64 // rain and fireworks 9.8
	Wind         float64 // rain horizontal gravity
	WindStrength float64 // rain wind
	Attraction   float64 // galaxy 50; spiral 10
	Rotation     float64 // galaxy vortex 20
}

// DefaultPresetOptions returns the tuned options a control panel starts each
// preset from.
func DefaultPresetOptions(p Preset) PresetOptions {
	o := PresetOptions{Strength: 100, Chaos: 5}
	switch p {
	case PresetExplosion:
		o.Strength, o.Chaos = 300, 20
	case PresetRain:
		o.Gravity, o.WindStrength = 15, 20
	case PresetFireworks:
		o.Gravity = 12
	case PresetGalaxy:
		o.Attraction, o.Rotation = 80, 40
	case PresetSpiral:
		o.Strength, o.Attraction = 50, 20
	}
	return o
}

func or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// ApplyPreset replaces the world's fields with the preset's arrangement.
func (e *Engine) ApplyPreset(p Preset, o PresetOptions) {
	centre := vmath.V(e.cfg.Width/2, e.cfg.Height/2)
	span := math.Max(e.cfg.Width, e.cfg.Height)

	e.physics.ClearFields()

	switch p {
	case PresetExplosion:
		e.physics.AddField(forces.NewRepulsion(centre, or(o.Strength, 500), span/2))
		e.physics.AddField(forces.NewNoise(centre, or(o.Chaos, 10), span))

	case PresetRain:
		gravity := vmath.V(o.Wind, or(o.Gravity, 9.8))
		wind := vmath.V(o.WindStrength, 0)
		e.physics.SetParameters(systems.Params{Gravity: &gravity, Wind: &wind})

	case PresetFireworks:
		gravity := e.physics.Config().Gravity
		gravity.Y = or(o.Gravity, 9.8)
		e.physics.SetParameters(systems.Params{Gravity: &gravity})

	case PresetGalaxy:
		e.physics.AddField(forces.NewAttraction(centre, or(o.Attraction, 50), span/2))
		e.physics.AddField(forces.NewVortex(centre, or(o.Rotation, 20), span/2))

	case PresetWave:
		e.rewave()

	case PresetSpiral:
		e.physics.AddField(forces.NewVortex(centre, or(o.Strength, 30), span/2))
		e.physics.AddField(forces.NewAttraction(centre, or(o.Attraction, 10), span/2))
	}

	slog.Info("preset applied", "preset", p.String(), "fields", len(e.physics.Fields()))
}

// rewave switches every formed particle to wave motion around its target.
func (e *Engine) rewave() {
	var samples [1]shape.Sample
	query := e.targetFilter.Query()
	for query.Next() {
		_, t, _, _ := query.Get()
		samples[0] = shape.Sample{Pos: t.Pos}
		shape.Wave(samples[:], shape.PatternOptions{}, e.rng)
		t.Anim = samples[0].Anim
	}
}
