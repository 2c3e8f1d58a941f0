package vmath

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec
		want Vec
	}{
		{"zero vector", V(0, 0), V(0, 0)},
		{"axis aligned", V(5, 0), V(1, 0)},
		{"diagonal", V(3, 4), V(0.6, 0.8)},
		{"negative", V(0, -2), V(0, -1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if math.Abs(got.X-tc.want.X) > eps || math.Abs(got.Y-tc.want.Y) > eps {
				t.Errorf("Normalize(%v) = %v, want %v", tc.in, got, tc.want)
			}
			if !Finite(got) {
				t.Errorf("Normalize(%v) produced non-finite result %v", tc.in, got)
			}
		})
	}
}

func TestDistanceAndMagnitude(t *testing.T) {
	if d := Distance(V(1, 1), V(4, 5)); math.Abs(d-5) > eps {
		t.Errorf("Distance = %f, want 5", d)
	}
	if d := DistanceSq(V(1, 1), V(4, 5)); math.Abs(d-25) > eps {
		t.Errorf("DistanceSq = %f, want 25", d)
	}
	if m := Magnitude(V(-3, 4)); math.Abs(m-5) > eps {
		t.Errorf("Magnitude = %f, want 5", m)
	}
}

func TestAngleRange(t *testing.T) {
	tests := []struct {
		to   Vec
		want float64
	}{
		{V(1, 0), 0},
		{V(0, 1), math.Pi / 2},
		{V(-1, 0), math.Pi},
		{V(0, -1), -math.Pi / 2},
	}
	for _, tc := range tests {
		got := Angle(Zero, tc.to)
		if math.Abs(got-tc.want) > eps {
			t.Errorf("Angle(0, %v) = %f, want %f", tc.to, got, tc.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("Angle(0, %v) = %f outside (-Pi, Pi]", tc.to, got)
		}
	}
}

func TestRotateAndPerp(t *testing.T) {
	r := Rotate(V(1, 0), math.Pi/2)
	if math.Abs(r.X) > eps || math.Abs(r.Y-1) > eps {
		t.Errorf("Rotate((1,0), Pi/2) = %v, want (0,1)", r)
	}
	p := Perp(V(1, 0))
	if p.X != 0 || p.Y != 1 {
		t.Errorf("Perp((1,0)) = %v, want (0,1)", p)
	}
	if d := Dot(V(1, 2), V(3, 4)); d != 11 {
		t.Errorf("Dot = %f, want 11", d)
	}
}

func TestEasing(t *testing.T) {
	fns := map[string]func(float64) float64{
		"EaseIn":    EaseIn,
		"EaseOut":   EaseOut,
		"EaseInOut": EaseInOut,
	}
	for name, fn := range fns {
		if got := fn(0); math.Abs(got) > eps {
			t.Errorf("%s(0) = %f, want 0", name, got)
		}
		if got := fn(1); math.Abs(got-1) > eps {
			t.Errorf("%s(1) = %f, want 1", name, got)
		}
	}
	if got := EaseInOut(0.5); math.Abs(got-0.5) > eps {
		t.Errorf("EaseInOut(0.5) = %f, want 0.5", got)
	}
}

func TestSmoothstepClamps(t *testing.T) {
	if got := Smoothstep(0, 1, -5); got != 0 {
		t.Errorf("Smoothstep below edge0 = %f, want 0", got)
	}
	if got := Smoothstep(0, 1, 5); got != 1 {
		t.Errorf("Smoothstep above edge1 = %f, want 1", got)
	}
	if got := Smootherstep(0, 1, 0.5); math.Abs(got-0.5) > eps {
		t.Errorf("Smootherstep(0.5) = %f, want 0.5", got)
	}
}

func TestLerpClampMap(t *testing.T) {
	if got := Lerp(10, 20, 0.25); got != 12.5 {
		t.Errorf("Lerp = %f, want 12.5", got)
	}
	if got := Clamp(7, 0, 5); got != 5 {
		t.Errorf("Clamp = %f, want 5", got)
	}
	if got := Map(5, 0, 10, 100, 200); got != 150 {
		t.Errorf("Map = %f, want 150", got)
	}
}

func TestNoiseDeterministicAndBounded(t *testing.T) {
	for i := 0; i < 1000; i++ {
		x := float64(i) * 0.37
		y := float64(i) * -1.13
		a := Noise(x, y)
		b := Noise(x, y)
		if a != b {
			t.Fatalf("Noise not deterministic at (%f,%f): %f vs %f", x, y, a, b)
		}
		if a < -1 || a > 1 {
			t.Fatalf("Noise(%f,%f) = %f outside [-1,1]", x, y, a)
		}
	}
}

func TestAngleHelpers(t *testing.T) {
	if got := NormalizeAngle(-math.Pi / 2); math.Abs(got-3*math.Pi/2) > eps {
		t.Errorf("NormalizeAngle(-Pi/2) = %f, want 3Pi/2", got)
	}
	if got := AngleDifference(0.1, 2*math.Pi-0.1); math.Abs(got+0.2) > eps {
		t.Errorf("AngleDifference = %f, want -0.2", got)
	}
}
