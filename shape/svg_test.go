package shape

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/swarm/vmath"
)

func sampleSVG(t *testing.T, doc string, opts SVGOptions) []Sample {
	t.Helper()
	s := NewSampler(DefaultConfig(), nil)
	out, err := s.SampleSVG(strings.NewReader(doc), opts)
	if err != nil {
		t.Fatalf("SampleSVG: %v", err)
	}
	return out
}

func TestSampleSVGCircle(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200">
		<circle cx="100" cy="100" r="50"/>
	</svg>`
	got := sampleSVG(t, doc, SVGOptions{})
	// floor(2*pi*50 / 5)
	if len(got) != 62 {
		t.Fatalf("got %d samples, want 62", len(got))
	}
	for _, s := range got {
		if d := vmath.Distance(s.Pos, vmath.V(100, 100)); math.Abs(d-50) > 1e-6 {
			t.Fatalf("sample %v at distance %v from centre", s.Pos, d)
		}
	}
}

func TestSampleSVGSmallCircleMinimum(t *testing.T) {
	got := sampleSVG(t, `<svg><circle cx="5" cy="5" r="1"/></svg>`, SVGOptions{})
	if len(got) != 8 {
		t.Errorf("got %d samples, want minimum of 8", len(got))
	}
}

func TestSampleSVGLine(t *testing.T) {
	got := sampleSVG(t, `<svg><line x1="0" y1="0" x2="100" y2="0"/></svg>`, SVGOptions{})
	if len(got) != 21 {
		t.Fatalf("got %d samples, want 21", len(got))
	}
	if !near(got[0].Pos, vmath.V(0, 0), eps) || !near(got[20].Pos, vmath.V(100, 0), 1e-9) {
		t.Errorf("endpoints %v %v", got[0].Pos, got[20].Pos)
	}
}

func TestSampleSVGRect(t *testing.T) {
	got := sampleSVG(t, `<svg><rect x="10" y="10" width="40" height="10"/></svg>`, SVGOptions{})
	// Perimeter 100 at spacing 5.
	if len(got) != 20 {
		t.Fatalf("got %d samples, want 20", len(got))
	}
	for _, s := range got {
		onX := math.Abs(s.Pos.X-10) < 1e-9 || math.Abs(s.Pos.X-50) < 1e-9
		onY := math.Abs(s.Pos.Y-10) < 1e-9 || math.Abs(s.Pos.Y-20) < 1e-9
		if !onX && !onY {
			t.Fatalf("sample %v not on the rect edge", s.Pos)
		}
	}
}

func TestSampleSVGPaths(t *testing.T) {
	tests := []struct {
		name  string
		d     string
		count int
		first vmath.Vec
	}{
		{"absolute square", "M 10 10 H 60 V 60 H 10 Z", 40, vmath.V(10, 10)},
		{"relative square", "m10 10 l50 0 l0 50 l-50 0 z", 40, vmath.V(10, 10)},
		{"packed numbers", "M10,10L60,10L60,60L10,60Z", 40, vmath.V(10, 10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sampleSVG(t, `<svg><path d="`+tc.d+`"/></svg>`, SVGOptions{})
			if len(got) != tc.count {
				t.Fatalf("got %d samples, want %d", len(got), tc.count)
			}
			if !near(got[0].Pos, tc.first, 1e-9) {
				t.Errorf("first sample %v, want %v", got[0].Pos, tc.first)
			}
		})
	}
}

func TestSampleSVGCurves(t *testing.T) {
	t.Run("cubic", func(t *testing.T) {
		got := sampleSVG(t, `<svg><path d="M0 0 C 0 50 100 50 100 0"/></svg>`, SVGOptions{})
		if len(got) < 2 {
			t.Fatalf("got %d samples", len(got))
		}
		if !near(got[len(got)-1].Pos, vmath.V(100, 0), 1e-6) {
			t.Errorf("last sample %v, want (100, 0)", got[len(got)-1].Pos)
		}
		for _, s := range got {
			if s.Pos.Y < -1e-9 || s.Pos.Y > 37.5+1e-9 {
				t.Fatalf("sample %v outside the curve's hull", s.Pos)
			}
		}
	})

	t.Run("arc", func(t *testing.T) {
		got := sampleSVG(t, `<svg><path d="M0 50 A 50 50 0 0 1 100 50"/></svg>`, SVGOptions{Spacing: 2})
		for _, s := range got {
			// Resampling cuts chords; allow the sagitta of a short segment.
			if d := vmath.Distance(s.Pos, vmath.V(50, 50)); math.Abs(d-50) > 0.5 {
				t.Fatalf("sample %v at radius %v", s.Pos, d)
			}
		}
	})

	t.Run("smooth and quadratic", func(t *testing.T) {
		got := sampleSVG(t, `<svg><path d="M0 0 Q 25 50 50 0 T 100 0 S 150 50 200 0"/></svg>`, SVGOptions{})
		if len(got) == 0 {
			t.Fatal("no samples")
		}
		if !near(got[len(got)-1].Pos, vmath.V(200, 0), 1e-6) {
			t.Errorf("last sample %v, want (200, 0)", got[len(got)-1].Pos)
		}
	})
}

func TestSampleSVGViewBoxAndScale(t *testing.T) {
	doc := `<svg viewBox="-50,-50,100,100"><line x1="-10" y1="0" x2="10" y2="0"/></svg>`
	got := sampleSVG(t, doc, SVGOptions{Scale: 2})
	if !near(got[0].Pos, vmath.V(80, 100), 1e-9) {
		t.Errorf("first sample %v, want (80, 100)", got[0].Pos)
	}
	if !near(got[len(got)-1].Pos, vmath.V(120, 100), 1e-9) {
		t.Errorf("last sample %v, want (120, 100)", got[len(got)-1].Pos)
	}
}

func TestSampleSVGElementIndex(t *testing.T) {
	doc := `<svg><g><line x1="0" y1="0" x2="10" y2="0"/></g><polygon points="0,20 10,20 10,30"/></svg>`
	got := sampleSVG(t, doc, SVGOptions{})
	seen := map[int]bool{}
	for _, s := range got {
		seen[s.Element] = true
	}
	if !seen[0] || !seen[1] || len(seen) != 2 {
		t.Errorf("element indices %v, want {0, 1}", seen)
	}
}

func TestSampleSVGOptimize(t *testing.T) {
	doc := `<svg viewBox="0 0 500 500"><circle cx="250" cy="250" r="200"/></svg>`
	raw := sampleSVG(t, doc, SVGOptions{Spacing: 1, NoOptimize: true})
	merged := sampleSVG(t, doc, SVGOptions{Spacing: 1})
	if len(raw) < minOptimizeCount {
		t.Fatalf("raw count %d below optimize threshold", len(raw))
	}
	if len(merged) >= len(raw) {
		t.Errorf("merged %d >= raw %d", len(merged), len(raw))
	}

	// Each outline cluster of k samples is sized sqrt(k)*2.
	total := 0
	for i, m := range merged {
		k := (m.Size / svgSampleSize) * (m.Size / svgSampleSize)
		if math.Abs(k-math.Round(k)) > 1e-6 || k < 1 {
			t.Fatalf("sample %d size %v is not sqrt(k)*%d", i, m.Size, svgSampleSize)
		}
		total += int(math.Round(k))
	}
	if total != len(raw) {
		t.Errorf("clusters cover %d samples, want %d", total, len(raw))
	}
}

func TestSampleSVGInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "this is not svg"},
		{"wrong root", "<html><body/></html>"},
		{"broken xml", "<svg><circle></svg>"},
		{"bad path", `<svg><path d="10 10 20 20"/></svg>`},
		{"truncated path", `<svg><path d="M 10"/></svg>`},
		{"overflowing path number", `<svg><path d="M 0 0 L 1e999 10"/></svg>`},
	}
	s := NewSampler(DefaultConfig(), nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SampleSVG(strings.NewReader(tc.doc), SVGOptions{})
			if !errors.Is(err, ErrInvalidSVG) {
				t.Fatalf("err = %v, want ErrInvalidSVG", err)
			}
		})
	}
}

func TestSampleSVGNonFiniteCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		empty bool
	}{
		{"leading NaN point", `<svg viewBox="0 0 100 100"><polyline points="NaN,10 50,50 90,10"/></svg>`, true},
		{"Inf point ends the list", `<svg viewBox="0 0 100 100"><polyline points="10,10 50,50 Inf,10"/></svg>`, false},
		{"NaN attribute", `<svg viewBox="0 0 100 100"><circle cx="NaN" cy="50" r="20"/></svg>`, false},
		{"NaN viewBox", `<svg viewBox="0 NaN 100 100"><line x1="0" y1="0" x2="50" y2="0"/></svg>`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sampleSVG(t, tc.doc, SVGOptions{NoOptimize: true})
			if tc.empty && len(got) != 0 {
				t.Fatalf("got %d samples, want none", len(got))
			}
			if !tc.empty && len(got) == 0 {
				t.Fatal("expected samples from the finite coordinates")
			}
			for i, s := range got {
				if !vmath.Finite(s.Pos) || !vmath.Finite(s.Source) {
					t.Fatalf("sample %d not finite: %+v", i, s)
				}
			}
			c := Centroid(got)
			b := Bounds(got)
			if !vmath.Finite(c) || math.IsNaN(b.Width) || math.IsNaN(b.Height) {
				t.Errorf("centroid %v bounds %+v not finite", c, b)
			}
		})
	}
}

func TestBoundsIgnoresNonFinite(t *testing.T) {
	samples := []Sample{
		{Pos: vmath.V(0, 0)},
		{Pos: vmath.V(math.NaN(), 5)},
		{Pos: vmath.V(10, 20)},
	}
	b := Bounds(samples)
	if b != (Rect{X: 0, Y: 0, Width: 10, Height: 20}) {
		t.Errorf("bounds = %+v", b)
	}
	if c := Centroid(samples); c != vmath.V(5, 10) {
		t.Errorf("centroid = %v, want (5,10)", c)
	}
	if b := Bounds(samples[1:2]); b != (Rect{}) {
		t.Errorf("bounds of only NaN = %+v, want zero", b)
	}
}

func TestReadSVGMetadata(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want SVGMetadata
	}{
		{
			name: "viewBox and units",
			doc:  `<svg width="200px" height="100" viewBox="0 0 50 25"><g><rect width="1" height="1"/><circle r="2"/></g><text>x</text></svg>`,
			want: SVGMetadata{Bounds: Rect{Width: 50, Height: 25}, ElementCount: 2, HasViewBox: true, Width: 200, Height: 100},
		},
		{
			name: "defaults",
			doc:  `<svg><line/></svg>`,
			want: SVGMetadata{Bounds: Rect{Width: 100, Height: 100}, ElementCount: 1, Width: 100, Height: 100},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadSVGMetadata(strings.NewReader(tc.doc))
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestFillSVGRect(t *testing.T) {
	s := NewSampler(DefaultConfig(), nil)
	got, err := s.FillSVG(strings.NewReader(`<svg><rect x="0" y="0" width="20" height="20"/></svg>`), SVGOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// Scan stride 5 hits x,y in {0,5,10,15}.
	if len(got) != 16 {
		t.Fatalf("got %d samples, want 16", len(got))
	}
	for _, smp := range got {
		if smp.Pos.X >= 20 || smp.Pos.Y >= 20 {
			t.Errorf("sample %v outside the rect", smp.Pos)
		}
	}
}
