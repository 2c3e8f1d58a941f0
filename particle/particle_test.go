package particle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/vmath"
)

var bigBounds = Bounds{Width: 1000, Height: 1000}

func unitParticle(pos vmath.Vec) *Particle {
	return New(pos, Options{Mass: 1, Friction: 1})
}

func TestAttractionAtRadiusEdgeIsZero(t *testing.T) {
	p := unitParticle(vmath.V(0, 0))
	p.Update(1, bigBounds, []forces.Source{forces.NewAttraction(vmath.V(10, 0), 1, 10)})

	if p.Vel != vmath.Zero {
		t.Errorf("velocity = %v, want (0,0)", p.Vel)
	}
	if p.Pos != vmath.Zero {
		t.Errorf("position = %v, want (0,0)", p.Pos)
	}
}

func TestAttractionSingleStep(t *testing.T) {
	p := unitParticle(vmath.V(0, 0))
	p.Update(1, bigBounds, []forces.Source{forces.NewAttraction(vmath.V(5, 0), 10, 10)})

	if math.Abs(p.Vel.X-5) > 1e-9 || p.Vel.Y != 0 {
		t.Errorf("velocity = %v, want (5,0)", p.Vel)
	}
	if math.Abs(p.Pos.X-5) > 1e-9 || p.Pos.Y != 0 {
		t.Errorf("position = %v, want (5,0)", p.Pos)
	}
	if p.Acc != vmath.Zero {
		t.Errorf("acceleration not reset: %v", p.Acc)
	}
}

func TestMassScaling(t *testing.T) {
	src := forces.NewRepulsion(vmath.V(100, 100), 8, 50)
	light := New(vmath.V(110, 100), Options{Mass: 1})
	heavy := New(vmath.V(110, 100), Options{Mass: 2})

	light.ApplyForce(src)
	heavy.ApplyForce(src)

	if math.Abs(light.Acc.X-2*heavy.Acc.X) > 1e-9 {
		t.Errorf("light acc %v should be twice heavy acc %v", light.Acc, heavy.Acc)
	}
}

func TestBoundaryBounceDoesNotCreateEnergy(t *testing.T) {
	tests := []struct {
		name   string
		pos    vmath.Vec
		vel    vmath.Vec
		bounce float64
	}{
		{"left wall", vmath.V(1, 50), vmath.V(-20, 0), 0.8},
		{"right wall", vmath.V(99, 50), vmath.V(20, 0), 0.5},
		{"top wall", vmath.V(50, 1), vmath.V(0, -20), 1.0},
		{"bottom wall", vmath.V(50, 99), vmath.V(0, 20), 0.01},
	}
	b := Bounds{Width: 100, Height: 100}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.pos, Options{Vel: tc.vel, Friction: 1, Bounce: tc.bounce})
			before := math.Max(math.Abs(tc.vel.X), math.Abs(tc.vel.Y))
			p.Update(1, b, nil)

			after := math.Max(math.Abs(p.Vel.X), math.Abs(p.Vel.Y))
			if after > before+1e-9 {
				t.Errorf("speed grew from %f to %f", before, after)
			}
			if p.Pos.X < 0 || p.Pos.X > b.Width || p.Pos.Y < 0 || p.Pos.Y > b.Height {
				t.Errorf("position %v escaped bounds", p.Pos)
			}
			if math.Signbit(p.Vel.X) == math.Signbit(tc.vel.X) && tc.vel.X != 0 {
				t.Errorf("x velocity not reflected: %v", p.Vel)
			}
		})
	}
}

func TestTrailBoundedLength(t *testing.T) {
	p := New(vmath.V(10, 10), Options{MaxTrailLength: 5, Vel: vmath.V(3, 1)})
	for i := 0; i < 50; i++ {
		p.Update(0.016, bigBounds, nil)
		if p.Trail.Len() > 5 {
			t.Fatalf("trail length %d exceeds 5 after %d updates", p.Trail.Len(), i+1)
		}
	}
	if p.Trail.Len() != 5 {
		t.Errorf("trail length = %d, want 5", p.Trail.Len())
	}

	pts := p.Trail.Points()
	if pts[0].Alpha != 0 {
		t.Errorf("oldest trail alpha = %f, want 0", pts[0].Alpha)
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Alpha < pts[i-1].Alpha {
			t.Errorf("trail alpha should grow toward newest: %v", pts)
		}
	}
	if newest := pts[len(pts)-1].Alpha; newest > p.Alpha*0.5+1e-9 {
		t.Errorf("newest trail alpha %f exceeds half particle alpha %f", newest, p.Alpha)
	}
}

func TestTrailEvictsOldest(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 5; i++ {
		tr.Push(TrailPoint{Pos: vmath.V(float64(i), 0)})
	}
	pts := tr.Points()
	if len(pts) != 3 {
		t.Fatalf("len = %d, want 3", len(pts))
	}
	for i, want := range []float64{2, 3, 4} {
		if pts[i].Pos.X != want {
			t.Errorf("point %d = %f, want %f", i, pts[i].Pos.X, want)
		}
	}
}

func TestDisabledTrail(t *testing.T) {
	p := New(vmath.V(10, 10), Options{MaxTrailLength: -1})
	p.Update(0.1, bigBounds, nil)
	if p.Trail.Len() != 0 {
		t.Errorf("disabled trail has %d points", p.Trail.Len())
	}
}

func TestScaleClamp(t *testing.T) {
	grow := New(vmath.V(10, 10), Options{ScaleSpeed: 100})
	grow.Update(1, bigBounds, nil)
	if grow.Scale != MaxScale {
		t.Errorf("scale = %f, want %f", grow.Scale, MaxScale)
	}

	shrink := New(vmath.V(10, 10), Options{ScaleSpeed: -100})
	shrink.Update(1, bigBounds, nil)
	if shrink.Scale != MinScale {
		t.Errorf("scale = %f, want %f", shrink.Scale, MinScale)
	}
}

func TestSizeCompoundsByScale(t *testing.T) {
	p := New(vmath.V(10, 10), Options{Size: 2, Scale: 1.5})
	p.Update(0.016, bigBounds, nil)
	p.Update(0.016, bigBounds, nil)
	if math.Abs(p.Size-2*1.5*1.5) > 1e-9 {
		t.Errorf("compounded size = %f, want %f", p.Size, 2*1.5*1.5)
	}

	fixed := New(vmath.V(10, 10), Options{Size: 2, Scale: 1.5, FixedSize: true})
	fixed.Update(0.016, bigBounds, nil)
	fixed.Update(0.016, bigBounds, nil)
	if math.Abs(fixed.Size-3) > 1e-9 {
		t.Errorf("fixed size = %f, want 3", fixed.Size)
	}
}

func TestDecayDeactivates(t *testing.T) {
	p := New(vmath.V(10, 10), Options{Life: 1, MaxLife: 1, Decay: 0.6})

	p.Update(1, bigBounds, nil)
	if !p.Active {
		t.Fatal("particle died too early")
	}
	if math.Abs(p.Alpha-0.4) > 1e-9 {
		t.Errorf("alpha = %f, want 0.4", p.Alpha)
	}

	p.Update(1, bigBounds, nil)
	if p.Active {
		t.Error("particle should be inactive after life reaches 0")
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		t.Errorf("alpha %f outside [0,1]", p.Alpha)
	}

	frozen := p.Pos
	p.Vel = vmath.V(100, 100)
	p.Update(1, bigBounds, nil)
	if p.Pos != frozen {
		t.Error("inactive particle should not move")
	}
}

func TestNonFiniteStepRejected(t *testing.T) {
	p := New(vmath.V(10, 10), Options{})
	p.Update(math.Inf(1), bigBounds, []forces.Source{forces.NewGravity(1)})
	if !vmath.Finite(p.Pos) {
		t.Errorf("position became non-finite: %v", p.Pos)
	}
}

func TestNonFiniteFallback(t *testing.T) {
	nan := vmath.V(math.NaN(), math.NaN())
	tests := []struct {
		name   string
		prev   vmath.Vec
		origin vmath.Vec
		want   vmath.Vec
	}{
		{"previous position", vmath.V(7, 8), vmath.V(3, 4), vmath.V(7, 8)},
		{"origin when previous is bad", nan, vmath.V(3, 4), vmath.V(3, 4)},
		{"zero when both are bad", nan, vmath.V(math.Inf(1), 0), vmath.Zero},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New(vmath.V(10, 10), Options{Origin: tc.origin})
			p.Prev = tc.prev
			p.Pos = vmath.V(math.NaN(), 0)
			p.Integrate(0.1)
			if p.Pos != tc.want {
				t.Errorf("pos = %v, want %v", p.Pos, tc.want)
			}
			if p.Vel != vmath.Zero {
				t.Errorf("vel = %v, want zero", p.Vel)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := New(vmath.V(10, 10), Options{Vel: vmath.V(1, 0)})
	p.Update(0.1, bigBounds, nil)

	c := p.Clone()
	c.Update(1, bigBounds, []forces.Source{forces.NewWind(50)})

	if p.Pos == c.Pos {
		t.Error("clone update should not move original")
	}
	if p.Trail.Len() != 1 {
		t.Errorf("original trail length = %d, want 1", p.Trail.Len())
	}
}

func TestResetAndDestroy(t *testing.T) {
	p := New(vmath.V(10, 10), Options{Decay: 5, Size: 4})
	p.Update(1, bigBounds, nil)
	p.Reset(vmath.V(1, 2))
	if !p.Active || p.Life != p.MaxLife || p.Pos != vmath.V(1, 2) || p.Size != 4 {
		t.Errorf("reset particle in unexpected state: %+v", p)
	}

	p.Destroy()
	if p.Active || p.Visible || p.Renderable() {
		t.Error("destroyed particle should be inactive and hidden")
	}
}

func TestPalettes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, mode := range []ColorMode{ColorGradient, ColorRainbow, ColorMono, ColorFire, ColorOcean, ColorRandom} {
		c := PaletteColor(mode, 0.5, rng)
		if !c.IsValid() {
			t.Errorf("%s produced out-of-gamut color %v", mode, c)
		}
	}
	if got := Fire(1); got.Hex() != "#ffffff" {
		t.Errorf("Fire(1) = %s, want #ffffff", got.Hex())
	}
	if got := AdjustBrightness(White, 0.5); got.Hex() != "#ffffff" {
		t.Errorf("brightening white should clamp, got %s", got.Hex())
	}
	if _, err := ParseColor("#00d4ff"); err != nil {
		t.Errorf("ParseColor: %v", err)
	}
	if _, err := ParseColorMode("plaid"); err == nil {
		t.Error("expected error for unknown color mode")
	}
}
