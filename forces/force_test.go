package forces

import (
	"math"
	"testing"

	"github.com/pthm-cable/swarm/vmath"
)

func TestFalloff(t *testing.T) {
	for _, kind := range []Kind{Attraction, Repulsion, Vortex} {
		t.Run(kind.String(), func(t *testing.T) {
			src := Source{Kind: kind, Pos: vmath.V(0, 0), Strength: 10, Radius: 10}
			tests := []struct {
				d    float64
				want float64
			}{
				{1, 9},
				{5, 5},
				{9.5, 0.5},
				{10, 0},
				{25, 0},
			}
			for _, tc := range tests {
				got := vmath.Magnitude(src.Force(vmath.V(tc.d, 0)))
				if math.Abs(got-tc.want) > 1e-9 {
					t.Errorf("d=%.1f: |F| = %f, want %f", tc.d, got, tc.want)
				}
			}
		})
	}
}

func TestDirection(t *testing.T) {
	p := vmath.V(5, 0)
	origin := vmath.V(0, 0)

	att := NewAttraction(origin, 10, 10).Force(p)
	if att.X >= 0 || att.Y != 0 {
		t.Errorf("attraction should point toward origin, got %v", att)
	}

	rep := NewRepulsion(origin, 10, 10).Force(p)
	if rep.X <= 0 || rep.Y != 0 {
		t.Errorf("repulsion should point away from origin, got %v", rep)
	}

	vor := NewVortex(origin, 10, 10).Force(p)
	if math.Abs(vor.X) > 1e-9 || vor.Y <= 0 {
		t.Errorf("vortex should be tangential (+90 deg of origin->particle), got %v", vor)
	}
}

func TestZeroSeparationSkipped(t *testing.T) {
	for _, kind := range []Kind{Attraction, Repulsion, Vortex} {
		src := Source{Kind: kind, Pos: vmath.V(3, 3), Strength: 10, Radius: 10}
		f := src.Force(vmath.V(3, 3))
		if f != vmath.Zero {
			t.Errorf("%s at zero separation = %v, want zero", kind, f)
		}
	}
}

func TestUniformKinds(t *testing.T) {
	g := NewGravity(9.8).Force(vmath.V(1000, -50))
	if g.X != 0 || g.Y != 9.8 {
		t.Errorf("gravity = %v, want (0, 9.8)", g)
	}
	w := NewWind(-3).Force(vmath.V(0, 0))
	if w.X != -3 || w.Y != 0 {
		t.Errorf("wind = %v, want (-3, 0)", w)
	}
	if !NewGravity(1).InRange(vmath.V(1e9, 1e9)) {
		t.Error("gravity should always be in range")
	}
}

func TestNoiseIgnoresDistance(t *testing.T) {
	src := NewNoise(vmath.V(0, 0), 4, 1)
	p := vmath.V(500, 700)
	f := src.Force(p)
	if f == vmath.Zero {
		t.Fatal("noise outside radius should still apply")
	}
	if math.Abs(f.X) > 4 || math.Abs(f.Y) > 4 {
		t.Errorf("noise force %v exceeds strength", f)
	}
	if f != src.Force(p) {
		t.Error("noise force should be deterministic")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Gravity, Wind, Attraction, Repulsion, Vortex, Noise} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("magnet"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
