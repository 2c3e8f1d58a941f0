package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}
	mean, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	if math.Abs(p10-1.9) > 0.001 || math.Abs(p50-5.5) > 0.001 || math.Abs(p90-9.1) > 0.001 {
		t.Errorf("percentiles = %v %v %v", p10, p50, p90)
	}
	if values[0] != 10 {
		t.Error("input was sorted in place")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(3)
	for frame := 1; frame <= 3; frame++ {
		c.RecordFrame(0.02)
	}
	c.RecordSpawn(10)
	c.RecordDestroy(4)
	c.RecordCollisions(2)

	if c.ShouldFlush(2) {
		t.Error("flush requested before window filled")
	}
	if !c.ShouldFlush(3) {
		t.Fatal("flush not requested at window end")
	}

	s := c.Flush(3, 0.06, Sample{
		Particles: 6,
		Targets:   4,
		Arrived:   1,
		Speeds:    []float64{1, 2, 3},
	})
	if s.Spawned != 10 || s.Destroyed != 4 || s.Collisions != 2 {
		t.Errorf("event counts = %+v", s)
	}
	if math.Abs(s.FPS-50) > 1e-9 || math.Abs(s.FrameMeanMS-20) > 1e-9 || s.FrameStdMS > 1e-9 {
		t.Errorf("timing = fps %v mean %v std %v", s.FPS, s.FrameMeanMS, s.FrameStdMS)
	}
	if math.Abs(s.SpeedMean-2) > 1e-9 || math.Abs(s.ArrivedFrac-0.25) > 1e-9 {
		t.Errorf("speed mean %v arrived %v", s.SpeedMean, s.ArrivedFrac)
	}

	next := c.Flush(6, 0.12, Sample{})
	if next.Spawned != 0 || next.WindowStartFrame != 3 || next.FPS != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
