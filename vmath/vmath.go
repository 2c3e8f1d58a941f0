// Package vmath provides stateless 2D vector and scalar helpers used by the
// simulation core. Vectors are gonum r2 vectors so they compose with the rest
// of the gonum spatial tooling.
package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a 2D vector value. It has no identity.
type Vec = r2.Vec

// V builds a vector from components.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Zero is the origin.
var Zero = Vec{}

// Add returns a+b.
func Add(a, b Vec) Vec { return r2.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r2.Sub(a, b) }

// Scale returns v*f.
func Scale(v Vec, f float64) Vec { return r2.Scale(f, v) }

// Magnitude returns the Euclidean length of v.
func Magnitude(v Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns v scaled to unit length.
// The zero vector normalizes to the zero vector instead of NaN.
func Normalize(v Vec) Vec {
	mag := Magnitude(v)
	if mag == 0 {
		return Zero
	}
	return Vec{X: v.X / mag, Y: v.Y / mag}
}

// Distance returns the distance between a and b.
func Distance(a, b Vec) float64 {
	return math.Sqrt(DistanceSq(a, b))
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b Vec) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// Angle returns the direction from a to b in (-Pi, Pi].
func Angle(from, to Vec) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Rotate rotates v around the origin by angle radians.
func Rotate(v Vec, angle float64) Vec {
	sin, cos := math.Sincos(angle)
	return Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Perp returns v rotated by +90 degrees.
func Perp(v Vec) Vec {
	return Vec{X: -v.Y, Y: v.X}
}

// Finite reports whether both components are finite numbers.
func Finite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Lerp linearly interpolates between start and end.
func Lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

// LerpVec linearly interpolates between two vectors.
func LerpVec(a, b Vec, t float64) Vec {
	return Vec{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Map remaps v from [inMin, inMax] to [outMin, outMax].
// The input range must not be degenerate; a zero-width range yields NaN or Inf.
func Map(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// EaseIn is a quadratic ease-in.
func EaseIn(t float64) float64 {
	return t * t
}

// EaseOut is a quadratic ease-out.
func EaseOut(t float64) float64 {
	return t * (2 - t)
}

// EaseInOut is a quadratic ease-in-out.
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Smoothstep is the clamped cubic Hermite interpolant between edge0 and edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	x = Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return x * x * (3 - 2*x)
}

// Smootherstep is Perlin's quintic variant of Smoothstep.
func Smootherstep(edge0, edge1, x float64) float64 {
	x = Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return x * x * x * (x*(x*6-15) + 10)
}

// CubicBezier evaluates a one-dimensional cubic Bezier at t.
func CubicBezier(t, p0, p1, p2, p3 float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

// Noise returns a deterministic hash-based value in [-1, 1).
// It is not gradient noise; nearby inputs are not correlated.
func Noise(x, y float64) float64 {
	n := math.Sin(x*12.9898+y*78.233) * 43758.5453
	return (n-math.Floor(n))*2 - 1
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle wraps an angle to [0, 2*Pi).
func NormalizeAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// AngleDifference returns the signed shortest rotation from one angle to another, in [-Pi, Pi].
func AngleDifference(from, to float64) float64 {
	diff := to - from
	for diff > math.Pi {
		diff -= 2 * math.Pi
	}
	for diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return diff
}

// PointInRect reports whether p lies inside the rectangle at (x, y) with size (w, h), edges included.
func PointInRect(p Vec, x, y, w, h float64) bool {
	return p.X >= x && p.X <= x+w && p.Y >= y && p.Y <= y+h
}

// PointInCircle reports whether p lies within radius of center.
func PointInCircle(p, center Vec, radius float64) bool {
	return Distance(p, center) <= radius
}
