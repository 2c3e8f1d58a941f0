package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// Collector accumulates per-frame events within windows and produces FrameStats.
type Collector struct {
	windowFrames int

	// Current window tracking
	windowStartFrame int
	frameTimes       []float64 // seconds

	spawned    int
	destroyed  int
	collisions int
}

// NewCollector creates a stats collector flushing every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 60
	}
	return &Collector{
		windowFrames: windowFrames,
		frameTimes:   make([]float64, 0, windowFrames),
	}
}

// RecordFrame records one frame's real delta time in seconds.
func (c *Collector) RecordFrame(dt float64) {
	c.frameTimes = append(c.frameTimes, dt)
}

// RecordSpawn records n particles entering the simulation.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordDestroy records n particles returning to the pool.
func (c *Collector) RecordDestroy(n int) {
	c.destroyed += n
}

// RecordCollisions records resolved collision pairs.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Sample is the state snapshot the caller provides at flush time.
type Sample struct {
	Particles    int
	Pooled       int
	Targets      int
	Arrived      int
	Interactions int
	Fields       int
	Speeds       []float64
	TargetDists  []float64
}

// Flush produces FrameStats and resets counters for the next window.
func (c *Collector) Flush(frame int, simTime float64, s Sample) FrameStats {
	out := FrameStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       simTime,
		Particles:        s.Particles,
		Pooled:           s.Pooled,
		Targets:          s.Targets,
		Spawned:          c.spawned,
		Destroyed:        c.destroyed,
		Collisions:       c.collisions,
		Interactions:     s.Interactions,
		Fields:           s.Fields,
	}

	if len(c.frameTimes) > 0 {
		mean, std := stat.MeanStdDev(c.frameTimes, nil)
		if len(c.frameTimes) < 2 {
			std = 0
		}
		out.FrameMeanMS = mean * 1000
		out.FrameStdMS = std * 1000
		if mean > 0 {
			out.FPS = 1 / mean
		}
	}

	out.SpeedMean, out.SpeedP10, out.SpeedP50, out.SpeedP90 = ComputeDistribution(s.Speeds)
	if len(s.TargetDists) > 0 {
		out.TargetDistMean = stat.Mean(s.TargetDists, nil)
	}
	if s.Targets > 0 {
		out.ArrivedFrac = float64(s.Arrived) / float64(s.Targets)
	}

	c.windowStartFrame = frame
	c.frameTimes = c.frameTimes[:0]
	c.spawned = 0
	c.destroyed = 0
	c.collisions = 0

	return out
}
