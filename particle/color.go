package particle

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorMode selects the palette used when spawning particles.
type ColorMode uint8

const (
	ColorGradient ColorMode = iota
	ColorRainbow
	ColorMono
	ColorFire
	ColorOcean
	ColorRandom
)

var colorModeNames = [...]string{
	ColorGradient: "gradient",
	ColorRainbow:  "rainbow",
	ColorMono:     "mono",
	ColorFire:     "fire",
	ColorOcean:    "ocean",
	ColorRandom:   "random",
}

func (m ColorMode) String() string {
	if int(m) < len(colorModeNames) {
		return colorModeNames[m]
	}
	return fmt.Sprintf("colormode(%d)", m)
}

// ParseColorMode maps a palette name to its ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	for m, name := range colorModeNames {
		if name == s {
			return ColorMode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown color mode %q", s)
}

// Palette anchors.
var (
	White = colorful.Color{R: 1, G: 1, B: 1}
	Cyan  = rgb255(0, 212, 255)
)

func rgb255(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// PaletteColor picks a color from the palette at position t in [0,1].
// rng is only consulted by ColorRandom.
func PaletteColor(mode ColorMode, t float64, rng *rand.Rand) colorful.Color {
	switch mode {
	case ColorRainbow:
		return Rainbow(t)
	case ColorMono:
		return White
	case ColorFire:
		return Fire(t)
	case ColorOcean:
		return Ocean(t)
	case ColorRandom:
		return RandomHSL(rng, [2]float64{0, 360}, [2]float64{0.6, 1}, [2]float64{0.4, 0.8})
	default:
		return Cyan
	}
}

// Rainbow maps position to a fully saturated hue.
func Rainbow(position float64) colorful.Color {
	hue := math.Mod(position*360, 360)
	if hue < 0 {
		hue += 360
	}
	return colorful.Hsl(hue, 1, 0.5)
}

// Fire ramps red, orange, yellow, white with intensity.
func Fire(intensity float64) colorful.Color {
	intensity = clamp01(intensity)
	switch {
	case intensity < 0.33:
		f := intensity / 0.33
		return rgb255(255, uint8(math.Round(165*f)), 0)
	case intensity < 0.66:
		f := (intensity - 0.33) / 0.33
		return rgb255(255, uint8(math.Round(165+90*f)), 0)
	default:
		f := (intensity - 0.66) / 0.34
		return rgb255(255, 255, uint8(math.Round(255*f)))
	}
}

// Ocean ramps from deep blue to cyan with depth.
func Ocean(depth float64) colorful.Color {
	depth = clamp01(depth)
	return rgb255(0, uint8(math.Round(100+depth*155)), uint8(math.Round(200+depth*55)))
}

// Gradient blends two colors in RGB.
func Gradient(t float64, from, to colorful.Color) colorful.Color {
	return from.BlendRgb(to, t)
}

// RandomHSL draws a color with hue in degrees and saturation/lightness in [0,1].
func RandomHSL(rng *rand.Rand, hue, sat, light [2]float64) colorful.Color {
	h := hue[0] + rng.Float64()*(hue[1]-hue[0])
	s := sat[0] + rng.Float64()*(sat[1]-sat[0])
	l := light[0] + rng.Float64()*(light[1]-light[0])
	return colorful.Hsl(h, s, l)
}

// AdjustBrightness scales each channel by (1+factor), clamped to the gamut.
func AdjustBrightness(c colorful.Color, factor float64) colorful.Color {
	return colorful.Color{R: c.R * (1 + factor), G: c.G * (1 + factor), B: c.B * (1 + factor)}.Clamped()
}

// ParseColor accepts "#rrggbb" hex notation.
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parsing color %q: %w", s, err)
	}
	return c, nil
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
