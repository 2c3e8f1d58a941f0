package particle

import "github.com/pthm-cable/swarm/vmath"

// TrailPoint is one remembered position with its faded alpha.
type TrailPoint struct {
	Pos   vmath.Vec
	Alpha float64
}

// Trail is a fixed-capacity ring buffer of recent positions, oldest first.
// Pushing into a full trail evicts the oldest point.
type Trail struct {
	points []TrailPoint
	head   int // index of the oldest point
	count  int
}

// NewTrail creates a trail holding at most capacity points.
// A capacity of zero or less disables the trail.
func NewTrail(capacity int) Trail {
	if capacity < 0 {
		capacity = 0
	}
	return Trail{points: make([]TrailPoint, capacity)}
}

// Cap returns the maximum number of retained points.
func (t *Trail) Cap() int {
	return len(t.points)
}

// Len returns the number of retained points.
func (t *Trail) Len() int {
	return t.count
}

// Push appends a point, evicting the oldest when full.
func (t *Trail) Push(p TrailPoint) {
	n := len(t.points)
	if n == 0 {
		return
	}
	if t.count < n {
		t.points[(t.head+t.count)%n] = p
		t.count++
		return
	}
	t.points[t.head] = p
	t.head = (t.head + 1) % n
}

// At returns the i-th point, 0 being the oldest.
func (t *Trail) At(i int) TrailPoint {
	return t.points[(t.head+i)%len(t.points)]
}

// Fade rewrites every retained alpha as a linear ramp from 0 at the oldest
// point toward half of alpha at the newest.
func (t *Trail) Fade(alpha float64) {
	n := len(t.points)
	for i := 0; i < t.count; i++ {
		idx := (t.head + i) % n
		t.points[idx].Alpha = float64(i) / float64(t.count) * alpha * 0.5
	}
}

// Points returns a copy of the retained points, oldest first.
func (t *Trail) Points() []TrailPoint {
	if t.count == 0 {
		return nil
	}
	out := make([]TrailPoint, t.count)
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Clear drops all points but keeps the capacity.
func (t *Trail) Clear() {
	t.head = 0
	t.count = 0
}

// Resize changes capacity, keeping the newest points that still fit.
func (t *Trail) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity == len(t.points) {
		return
	}
	pts := t.Points()
	*t = NewTrail(capacity)
	if len(pts) > capacity {
		pts = pts[len(pts)-capacity:]
	}
	for _, p := range pts {
		t.Push(p)
	}
}
