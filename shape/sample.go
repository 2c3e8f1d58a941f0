// Package shape turns text and SVG artwork into target sample points for
// particles to form. Sampling is a one-shot batch operation, not per-frame.
package shape

import (
	"errors"
	"math"

	"github.com/pthm-cable/swarm/vmath"
)

var (
	// ErrInvalidSVG is returned when an SVG document cannot be parsed.
	ErrInvalidSVG = errors.New("invalid svg")
	// ErrUnknownFont is returned for a font family with no bundled face.
	ErrUnknownFont = errors.New("unknown font family")
)

// Sample is one target point produced by rasterizing a shape.
type Sample struct {
	Pos    vmath.Vec
	Alpha  float64
	Source vmath.Vec // unjittered raster or outline position

	Size    float64 // set by OptimizeSamples; zero means the spawn default
	Density int     // samples emitted for this pixel in density mode
	Element int     // index of the SVG element it came from

	Delay float64 // seconds before the sample is revealed
	Anim  Anim
}

// Pattern tags the animation metadata attached to a sample.
type Pattern uint8

const (
	PatternNone Pattern = iota
	PatternWave
	PatternSpiral
	PatternExplosion
	PatternFireworks
	PatternGalaxy
)

var patternNames = [...]string{
	PatternNone:      "none",
	PatternWave:      "wave",
	PatternSpiral:    "spiral",
	PatternExplosion: "explosion",
	PatternFireworks: "fireworks",
	PatternGalaxy:    "galaxy",
}

func (p Pattern) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return "unknown"
}

// Anim carries the per-sample animation seed of a pattern decorator.
// Which fields are meaningful depends on Pattern.
type Anim struct {
	Pattern Pattern

	// Wave
	Phase     float64
	Speed     float64 // wave, spiral, explosion and galaxy orbit speed
	Amplitude float64

	// Spiral, explosion, galaxy: polar position around the sample centroid.
	Angle    float64
	Distance float64

	// Fireworks
	Group          int
	LaunchDelay    float64
	ExplosionDelay float64
	Gravity        float64

	// Galaxy
	Oscillation float64
}

// Centroid returns the mean finite sample position, or the zero vector when
// there is none.
func Centroid(samples []Sample) vmath.Vec {
	if len(samples) == 0 {
		return vmath.Zero
	}
	var sx, sy, n float64
	for i := range samples {
		if !vmath.Finite(samples[i].Pos) {
			continue
		}
		sx += samples[i].Pos.X
		sy += samples[i].Pos.Y
		n++
	}
	if n == 0 {
		return vmath.Zero
	}
	return vmath.V(sx/n, sy/n)
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X, Y, Width, Height float64
}

// Bounds returns the bounding box of the finite sample positions.
func Bounds(samples []Sample) Rect {
	if len(samples) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range samples {
		p := samples[i].Pos
		if !vmath.Finite(p) {
			continue
		}
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center translates samples in place so their bounding box is centred in a
// width x height canvas. Source positions move with them.
func Center(samples []Sample, width, height float64) {
	if len(samples) == 0 {
		return
	}
	b := Bounds(samples)
	off := vmath.V(width/2-(b.X+b.Width/2), height/2-(b.Y+b.Height/2))
	for i := range samples {
		samples[i].Pos = vmath.Add(samples[i].Pos, off)
		samples[i].Source = vmath.Add(samples[i].Source, off)
	}
}

// DefaultMergeDistance is the OptimizeSamples radius used when none is given.
const DefaultMergeDistance = 3

// Sizes a merged sample scales from when it had none. SVG outline samples
// always start from the smaller one.
const (
	defaultSampleSize = 3
	svgSampleSize     = 2
)

// OptimizeSamples greedily merges samples. Scanning in order, every later
// unconsumed sample within mergeDistance of the current one is folded into a
// running average of position and alpha. Each cluster becomes one sample whose
// size is sqrt(clusterSize) times its first member's size. O(n^2).
func OptimizeSamples(samples []Sample, mergeDistance float64) []Sample {
	return mergeSamples(samples, mergeDistance, defaultSampleSize)
}

func mergeSamples(samples []Sample, mergeDistance, baseSize float64) []Sample {
	if mergeDistance <= 0 {
		mergeDistance = DefaultMergeDistance
	}
	used := make([]bool, len(samples))
	out := make([]Sample, 0, len(samples))
	limit := mergeDistance * mergeDistance

	for i := range samples {
		if used[i] {
			continue
		}
		used[i] = true
		cur := samples[i]

		count := 1
		sx, sy, sa := cur.Pos.X, cur.Pos.Y, cur.Alpha
		for j := i + 1; j < len(samples); j++ {
			if used[j] {
				continue
			}
			if vmath.DistanceSq(cur.Pos, samples[j].Pos) <= limit {
				sx += samples[j].Pos.X
				sy += samples[j].Pos.Y
				sa += samples[j].Alpha
				count++
				used[j] = true
			}
		}

		n := float64(count)
		merged := cur
		merged.Pos = vmath.V(sx/n, sy/n)
		merged.Alpha = sa / n
		size := cur.Size
		if size == 0 {
			size = baseSize
		}
		merged.Size = math.Sqrt(n) * size
		out = append(out, merged)
	}
	return out
}
