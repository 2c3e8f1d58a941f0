package shape

import (
	"errors"
	"math"
	"testing"
)

func TestSampleTextEmpty(t *testing.T) {
	s := NewSampler(DefaultConfig(), nil)
	for _, text := range []string{"", "   ", "\t\n"} {
		got, err := s.SampleText(text, FontSpec{}, ModeFill)
		if err != nil {
			t.Fatalf("SampleText(%q): %v", text, err)
		}
		if len(got) != 0 {
			t.Errorf("SampleText(%q) returned %d samples", text, len(got))
		}
	}
}

func TestSampleTextModes(t *testing.T) {
	s := NewSampler(DefaultConfig(), nil)
	spec := FontSpec{Size: 48}

	fill, err := s.SampleText("Hi", spec, ModeFill)
	if err != nil {
		t.Fatal(err)
	}
	outline, err := s.SampleText("Hi", spec, ModeOutline)
	if err != nil {
		t.Fatal(err)
	}
	density, err := s.SampleText("Hi", spec, ModeDensity)
	if err != nil {
		t.Fatal(err)
	}

	if len(fill) == 0 || len(outline) == 0 {
		t.Fatalf("fill=%d outline=%d, want both non-empty", len(fill), len(outline))
	}
	// Every pixel over the fill threshold is also over the density threshold
	// and emits at least one sample.
	if len(density) < len(fill) {
		t.Errorf("density=%d < fill=%d", len(density), len(fill))
	}
	for _, smp := range fill {
		if smp.Alpha <= 128.0/255 || smp.Alpha > 1 {
			t.Fatalf("fill alpha %v outside (128/255, 1]", smp.Alpha)
		}
		if smp.Pos != smp.Source {
			t.Fatalf("quality 1 sample jittered: %v vs %v", smp.Pos, smp.Source)
		}
	}
	for _, smp := range density {
		if smp.Density < 1 || smp.Density > 6 {
			t.Fatalf("density count %d outside 1..6", smp.Density)
		}
	}
}

func TestSampleTextPadding(t *testing.T) {
	s := NewSampler(DefaultConfig(), nil)
	got, err := s.SampleText("X", FontSpec{Size: 40}, ModeFill)
	if err != nil {
		t.Fatal(err)
	}
	b := Bounds(got)
	// Glyphs start after half a font size of padding.
	if b.X < 20-2 || b.Y < 20-2 {
		t.Errorf("bounds %+v intrude into padding", b)
	}
}

func TestSampleTextUnknownFont(t *testing.T) {
	s := NewSampler(DefaultConfig(), nil)
	_, err := s.SampleText("A", FontSpec{Family: "Comic Sans MS"}, ModeFill)
	if !errors.Is(err, ErrUnknownFont) {
		t.Fatalf("err = %v, want ErrUnknownFont", err)
	}
}

func TestMeasureText(t *testing.T) {
	s := NewSampler(DefaultConfig(), nil)
	short, err := s.MeasureText("I", FontSpec{Size: 50})
	if err != nil {
		t.Fatal(err)
	}
	long, err := s.MeasureText("WWW", FontSpec{Size: 50})
	if err != nil {
		t.Fatal(err)
	}
	if long.Width <= short.Width {
		t.Errorf("WWW width %v <= I width %v", long.Width, short.Width)
	}
	if math.Abs(short.Height-60) > eps {
		t.Errorf("height = %v, want 60", short.Height)
	}
	if short.Family != "go" || short.Weight != "bold" {
		t.Errorf("defaults not applied: %+v", short)
	}
}

func TestIsBold(t *testing.T) {
	tests := []struct {
		weight string
		want   bool
	}{
		{"bold", true},
		{"700", true},
		{"600", true},
		{"500", false},
		{"normal", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := isBold(tc.weight); got != tc.want {
			t.Errorf("isBold(%q) = %v, want %v", tc.weight, got, tc.want)
		}
	}
}
