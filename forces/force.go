// Package forces defines the closed set of force sources that act on particles.
package forces

import (
	"fmt"
	"math"

	"github.com/pthm-cable/swarm/vmath"
)

// Kind identifies the force model of a Source.
type Kind uint8

const (
	// Gravity is a uniform vertical push; position and radius are ignored.
	Gravity Kind = iota
	// Wind is a uniform horizontal push; position and radius are ignored.
	Wind
	// Attraction pulls toward the origin with linear falloff inside the radius.
	Attraction
	// Repulsion pushes away from the origin with linear falloff inside the radius.
	Repulsion
	// Vortex circulates around the origin with linear falloff inside the radius.
	Vortex
	// Noise adds hash-noise jitter regardless of distance.
	Noise
)

var kindNames = [...]string{
	Gravity:    "gravity",
	Wind:       "wind",
	Attraction: "attraction",
	Repulsion:  "repulsion",
	Vortex:     "vortex",
	Noise:      "noise",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind maps a force name to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown force kind %q", s)
}

// Positional reports whether the kind depends on the source origin.
func (k Kind) Positional() bool {
	return k == Attraction || k == Repulsion || k == Vortex
}

// noiseScale maps world coordinates into the noise domain.
const (
	noiseScale  = 0.01
	noiseOffset = 100
)

// Source is a single force emitter. Radius may be +Inf for global forces.
// Radius must be positive; it is not validated.
type Source struct {
	Kind     Kind
	Pos      vmath.Vec
	Strength float64
	Radius   float64
}

// NewGravity returns a uniform downward force.
func NewGravity(strength float64) Source {
	return Source{Kind: Gravity, Strength: strength, Radius: math.Inf(1)}
}

// NewWind returns a uniform horizontal force.
func NewWind(strength float64) Source {
	return Source{Kind: Wind, Strength: strength, Radius: math.Inf(1)}
}

// NewAttraction returns a force pulling toward pos.
func NewAttraction(pos vmath.Vec, strength, radius float64) Source {
	return Source{Kind: Attraction, Pos: pos, Strength: strength, Radius: radius}
}

// NewRepulsion returns a force pushing away from pos.
func NewRepulsion(pos vmath.Vec, strength, radius float64) Source {
	return Source{Kind: Repulsion, Pos: pos, Strength: strength, Radius: radius}
}

// NewVortex returns a circulating force around pos.
func NewVortex(pos vmath.Vec, strength, radius float64) Source {
	return Source{Kind: Vortex, Pos: pos, Strength: strength, Radius: radius}
}

// NewNoise returns a jitter force centred on pos.
func NewNoise(pos vmath.Vec, strength, radius float64) Source {
	return Source{Kind: Noise, Pos: pos, Strength: strength, Radius: radius}
}

// InRange reports whether p lies strictly inside the source radius.
// Uniform kinds are always in range.
func (s Source) InRange(p vmath.Vec) bool {
	if s.Kind == Gravity || s.Kind == Wind {
		return true
	}
	return vmath.Distance(p, s.Pos) < s.Radius
}

// Falloff returns strength*(1-d/radius) for d inside the radius and 0 otherwise.
func (s Source) Falloff(d float64) float64 {
	if d >= s.Radius {
		return 0
	}
	return s.Strength * (1 - d/s.Radius)
}

// Force returns the force this source exerts on a point at p, before mass scaling.
// A positional source with zero separation exerts no force.
func (s Source) Force(p vmath.Vec) vmath.Vec {
	switch s.Kind {
	case Gravity:
		return vmath.Vec{Y: s.Strength}
	case Wind:
		return vmath.Vec{X: s.Strength}
	case Attraction, Repulsion, Vortex:
		d := vmath.Distance(p, s.Pos)
		if d == 0 || d >= s.Radius {
			return vmath.Zero
		}
		mag := s.Falloff(d)
		toSource := vmath.Scale(vmath.Sub(s.Pos, p), 1/d)
		switch s.Kind {
		case Attraction:
			return vmath.Scale(toSource, mag)
		case Repulsion:
			return vmath.Scale(toSource, -mag)
		default:
			// Source-to-particle direction rotated +90 degrees.
			return vmath.Scale(vmath.Perp(vmath.Scale(toSource, -1)), mag)
		}
	case Noise:
		return vmath.Vec{
			X: vmath.Noise(p.X*noiseScale, p.Y*noiseScale) * s.Strength,
			Y: vmath.Noise(p.X*noiseScale+noiseOffset, p.Y*noiseScale+noiseOffset) * s.Strength,
		}
	}
	return vmath.Zero
}

func (s Source) String() string {
	switch s.Kind {
	case Gravity, Wind:
		return fmt.Sprintf("%s(%.3g)", s.Kind, s.Strength)
	}
	return fmt.Sprintf("%s(%.1f,%.1f s=%.3g r=%.1f)", s.Kind, s.Pos.X, s.Pos.Y, s.Strength, s.Radius)
}
