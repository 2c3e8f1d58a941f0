package shape

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/swarm/vmath"
)

// ParsePattern maps a pattern name to its Pattern.
func ParsePattern(s string) (Pattern, error) {
	for p, name := range patternNames {
		if name == s {
			return Pattern(p), nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q", s)
}

// PatternOptions tunes a decorator. Zero fields take the pattern's default.
type PatternOptions struct {
	Center *vmath.Vec // spiral, explosion, galaxy; default the centroid

	Delay       float64 // wave 0.01/index, spiral 0.005/index, explosion max 0.5
	Speed       float64 // wave 2, spiral 1, galaxy orbit 0.5
	Amplitude   float64 // wave 20
	Oscillation float64 // galaxy 20
	GroupSize   int     // fireworks 20
	Gravity     float64 // fireworks 9.8
}

// Decorate attaches the pattern's animation seed to every sample in place.
// Random seeds are drawn from rng.
func Decorate(samples []Sample, p Pattern, opts PatternOptions, rng *rand.Rand) {
	switch p {
	case PatternWave:
		Wave(samples, opts, rng)
	case PatternSpiral:
		Spiral(samples, opts)
	case PatternExplosion:
		Explosion(samples, opts, rng)
	case PatternFireworks:
		Fireworks(samples, opts)
	case PatternGalaxy:
		Galaxy(samples, opts)
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func center(samples []Sample, opts PatternOptions) vmath.Vec {
	if opts.Center != nil {
		return *opts.Center
	}
	return Centroid(samples)
}

// Wave gives each sample a random phase and staggers reveals by index.
func Wave(samples []Sample, opts PatternOptions, rng *rand.Rand) {
	speed := orDefault(opts.Speed, 2)
	amp := orDefault(opts.Amplitude, 20)
	delay := orDefault(opts.Delay, 0.01)
	for i := range samples {
		samples[i].Anim = Anim{
			Pattern:   PatternWave,
			Phase:     rng.Float64() * 2 * math.Pi,
			Speed:     speed,
			Amplitude: amp,
		}
		samples[i].Delay = float64(i) * delay
	}
}

// Spiral records each sample's polar position around the centre.
func Spiral(samples []Sample, opts PatternOptions) {
	c := center(samples, opts)
	speed := orDefault(opts.Speed, 1)
	delay := orDefault(opts.Delay, 0.005)
	for i := range samples {
		samples[i].Anim = Anim{
			Pattern:  PatternSpiral,
			Angle:    vmath.Angle(c, samples[i].Pos),
			Distance: vmath.Distance(c, samples[i].Pos),
			Speed:    speed,
		}
		samples[i].Delay = float64(i) * delay
	}
}

// Explosion records polar position and a random outward speed and delay.
func Explosion(samples []Sample, opts PatternOptions, rng *rand.Rand) {
	c := center(samples, opts)
	maxDelay := orDefault(opts.Delay, 0.5)
	for i := range samples {
		samples[i].Anim = Anim{
			Pattern:  PatternExplosion,
			Angle:    vmath.Angle(c, samples[i].Pos),
			Distance: vmath.Distance(c, samples[i].Pos),
			Speed:    100 + rng.Float64()*200,
		}
		samples[i].Delay = rng.Float64() * maxDelay
	}
}

// Fireworks groups samples by index; each group launches half a second after
// the previous one and bursts 1.5s after launch.
func Fireworks(samples []Sample, opts PatternOptions) {
	size := opts.GroupSize
	if size <= 0 {
		size = 20
	}
	g := orDefault(opts.Gravity, 9.8)
	for i := range samples {
		group := i / size
		launch := float64(group) * 0.5
		samples[i].Anim = Anim{
			Pattern:        PatternFireworks,
			Group:          group,
			LaunchDelay:    launch,
			ExplosionDelay: launch + 1.5,
			Gravity:        g,
		}
		samples[i].Delay = launch
	}
}

// Galaxy records polar position with an angular oscillation; samples farther
// from the centre reveal later.
func Galaxy(samples []Sample, opts PatternOptions) {
	c := center(samples, opts)
	speed := orDefault(opts.Speed, 0.5)
	osc := orDefault(opts.Oscillation, 20)
	for i := range samples {
		angle := vmath.Angle(c, samples[i].Pos)
		dist := vmath.Distance(c, samples[i].Pos)
		samples[i].Anim = Anim{
			Pattern:     PatternGalaxy,
			Angle:       angle,
			Distance:    dist,
			Speed:       speed,
			Oscillation: math.Sin(angle*3) * osc,
		}
		samples[i].Delay = dist / 200 * 2
	}
}

// Custom rewrites every sample through fn.
func Custom(samples []Sample, fn func(i int, s Sample) Sample) {
	for i := range samples {
		samples[i] = fn(i, samples[i])
	}
}

// Reveal selects how Animate staggers sample delays.
type Reveal uint8

const (
	RevealNone Reveal = iota
	RevealSequential
	RevealSimultaneous
	RevealWave
	RevealRadial
)

var revealNames = [...]string{
	RevealNone:         "none",
	RevealSequential:   "sequential",
	RevealSimultaneous: "simultaneous",
	RevealWave:         "wave",
	RevealRadial:       "radial",
}

func (r Reveal) String() string {
	if int(r) < len(revealNames) {
		return revealNames[r]
	}
	return fmt.Sprintf("reveal(%d)", r)
}

// ParseReveal maps a reveal name to its Reveal.
func ParseReveal(s string) (Reveal, error) {
	for r, name := range revealNames {
		if name == s {
			return Reveal(r), nil
		}
	}
	return 0, fmt.Errorf("unknown reveal %q", s)
}

// RevealOptions tunes Animate. Zero fields take the documented default.
type RevealOptions struct {
	Delay       float64    // sequential step; default 0.01
	MaxDelay    float64    // simultaneous upper bound; default 1
	WaveWidth   float64    // wave period scale; default 100
	WaveDelay   float64    // wave amplitude; default 0.5
	RadialSpeed float64    // radial units per second; default 200
	Center      *vmath.Vec // radial centre; default the centroid
}

// Animate sets reveal delays in place. Wave delays may be negative, which
// reveals immediately.
func Animate(samples []Sample, r Reveal, opts RevealOptions, rng *rand.Rand) {
	switch r {
	case RevealSequential:
		step := orDefault(opts.Delay, 0.01)
		for i := range samples {
			samples[i].Delay = float64(i) * step
		}
	case RevealSimultaneous:
		maxDelay := orDefault(opts.MaxDelay, 1)
		for i := range samples {
			samples[i].Delay = rng.Float64() * maxDelay
		}
	case RevealWave:
		width := orDefault(opts.WaveWidth, 100)
		amp := orDefault(opts.WaveDelay, 0.5)
		for i := range samples {
			samples[i].Delay = math.Sin(samples[i].Pos.X/width) * amp
		}
	case RevealRadial:
		c := Centroid(samples)
		if opts.Center != nil {
			c = *opts.Center
		}
		speed := orDefault(opts.RadialSpeed, 200)
		for i := range samples {
			samples[i].Delay = vmath.Distance(samples[i].Pos, c) / speed
		}
	}
}
