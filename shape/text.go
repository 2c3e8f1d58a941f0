package shape

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pthm-cable/swarm/vmath"
)

// Mode selects how a raster is turned into samples.
type Mode uint8

const (
	// ModeFill samples filled glyphs where alpha > 128.
	ModeFill Mode = iota
	// ModeOutline samples a stroke along glyph edges.
	ModeOutline
	// ModeDensity emits 1-6 jittered samples per pixel with alpha > 50.
	ModeDensity
)

var modeNames = [...]string{
	ModeFill:    "fill",
	ModeOutline: "outline",
	ModeDensity: "density",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseMode maps a mode name to its Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown sampling mode %q", s)
}

// Alpha thresholds a pixel must exceed to produce samples.
const (
	fillThreshold    = 128
	densityThreshold = 50
)

// Config holds sampler defaults. Start from DefaultConfig; zero numeric
// fields are filled at construction.
type Config struct {
	FontSize   float64 // default 120
	FontFamily string  // default "go"
	FontWeight string  // default "bold"
	Spacing    int     // raster scan stride in pixels; default 2
	Quality    int     // jittered samples per hit pixel in fill mode; default 1

	MergeDistance float64 // default 3

	SVGSpacing    float64 // distance between outline samples; default 5
	SVGScale      float64 // default 1
	SVGQuality    int     // default 1
	OptimizePaths bool    // merge SVG samples when there are at least 100
}

// DefaultConfig returns the default sampler configuration.
func DefaultConfig() Config {
	return Config{
		FontSize:      120,
		FontFamily:    "go",
		FontWeight:    "bold",
		Spacing:       2,
		Quality:       1,
		MergeDistance: DefaultMergeDistance,
		SVGSpacing:    5,
		SVGScale:      1,
		SVGQuality:    1,
		OptimizePaths: true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.FontFamily == "" {
		c.FontFamily = d.FontFamily
	}
	if c.FontWeight == "" {
		c.FontWeight = d.FontWeight
	}
	if c.Spacing <= 0 {
		c.Spacing = d.Spacing
	}
	if c.Quality <= 0 {
		c.Quality = d.Quality
	}
	if c.MergeDistance <= 0 {
		c.MergeDistance = d.MergeDistance
	}
	if c.SVGSpacing <= 0 {
		c.SVGSpacing = d.SVGSpacing
	}
	if c.SVGScale <= 0 {
		c.SVGScale = d.SVGScale
	}
	if c.SVGQuality <= 0 {
		c.SVGQuality = d.SVGQuality
	}
	return c
}

// Sampler rasterizes text and SVG into samples. Parsed fonts and faces are
// cached; a Sampler is safe for concurrent use except for its rng, which
// callers must not share across goroutines.
type Sampler struct {
	cfg Config
	rng *rand.Rand

	mu    sync.Mutex
	fonts map[fontKey]*opentype.Font
	faces map[faceKey]font.Face
}

// NewSampler creates a sampler. rng drives sample jitter; nil seeds one from 1.
func NewSampler(cfg Config, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Sampler{
		cfg:   cfg.withDefaults(),
		rng:   rng,
		fonts: make(map[fontKey]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Config returns the sampler configuration.
func (s *Sampler) Config() Config {
	return s.cfg
}

// SetConfig replaces the configuration. Cached fonts are kept.
func (s *Sampler) SetConfig(cfg Config) {
	s.cfg = cfg.withDefaults()
}

func (s *Sampler) spec(spec FontSpec) FontSpec {
	if spec.Size <= 0 {
		spec.Size = s.cfg.FontSize
	}
	if spec.Family == "" {
		spec.Family = s.cfg.FontFamily
	}
	if spec.Weight == "" {
		spec.Weight = s.cfg.FontWeight
	}
	return spec
}

// TextMetrics describes the measured extent of a string.
type TextMetrics struct {
	Width    float64
	Height   float64 // 1.2 x font size
	Ascent   float64
	Descent  float64
	FontSize float64
	Family   string
	Weight   string
}

// MeasureText measures text without rasterizing it.
func (s *Sampler) MeasureText(text string, spec FontSpec) (TextMetrics, error) {
	spec = s.spec(spec)
	face, err := s.face(spec)
	if err != nil {
		return TextMetrics{}, err
	}
	m := face.Metrics()
	return TextMetrics{
		Width:    fixedToFloat(font.MeasureString(face, text)),
		Height:   spec.Size * 1.2,
		Ascent:   fixedToFloat(m.Ascent),
		Descent:  fixedToFloat(m.Descent),
		FontSize: spec.Size,
		Family:   spec.Family,
		Weight:   spec.Weight,
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// SampleText rasterizes text and samples it in the given mode. Samples come
// back in row-major scan order in raster coordinates. Empty or whitespace-only
// text yields no samples and no error.
func (s *Sampler) SampleText(text string, spec FontSpec, mode Mode) ([]Sample, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	spec = s.spec(spec)
	face, err := s.face(spec)
	if err != nil {
		return nil, err
	}

	mask := s.rasterize(text, face, spec.Size)

	switch mode {
	case ModeOutline:
		lineWidth := math.Max(2, spec.Size/20)
		mask = strokeMask(mask, fillThreshold, lineWidth)
		return s.scanFill(mask, s.cfg.Spacing, s.cfg.Quality), nil
	case ModeDensity:
		return s.scanDensity(mask, s.cfg.Spacing), nil
	default:
		return s.scanFill(mask, s.cfg.Spacing, s.cfg.Quality), nil
	}
}

// rasterize draws text onto an alpha canvas sized to the measured width plus
// half a font size of padding on every side, with the text's top at the padding.
func (s *Sampler) rasterize(text string, face font.Face, size float64) *image.Alpha {
	pad := size * 0.5
	width := fixedToFloat(font.MeasureString(face, text))
	w := int(math.Ceil(width + pad*2))
	h := int(math.Ceil(size*1.5 + pad*2))

	img := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(int(pad), int(pad)+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}

func (s *Sampler) jitter(spacing float64) float64 {
	return s.rng.Float64()*spacing - spacing/2
}

// scanFill emits a sample per hit pixel, or quality jittered samples when
// quality > 1.
func (s *Sampler) scanFill(img *image.Alpha, spacing, quality int) []Sample {
	b := img.Bounds()
	sp := float64(spacing)
	var out []Sample
	for y := b.Min.Y; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x += spacing {
			a := img.AlphaAt(x, y).A
			if a <= fillThreshold {
				continue
			}
			src := vmath.V(float64(x), float64(y))
			alpha := float64(a) / 255
			if quality <= 1 {
				out = append(out, Sample{Pos: src, Source: src, Alpha: alpha})
				continue
			}
			for q := 0; q < quality; q++ {
				pos := vmath.V(src.X+s.jitter(sp), src.Y+s.jitter(sp))
				out = append(out, Sample{Pos: pos, Source: src, Alpha: alpha})
			}
		}
	}
	return out
}

// scanDensity emits floor(alpha/255*5)+1 jittered samples per hit pixel.
func (s *Sampler) scanDensity(img *image.Alpha, spacing int) []Sample {
	b := img.Bounds()
	sp := float64(spacing)
	var out []Sample
	for y := b.Min.Y; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x += spacing {
			a := img.AlphaAt(x, y).A
			if a <= densityThreshold {
				continue
			}
			alpha := float64(a) / 255
			n := int(math.Floor(alpha*5)) + 1
			src := vmath.V(float64(x), float64(y))
			for i := 0; i < n; i++ {
				out = append(out, Sample{
					Pos:     vmath.V(src.X+s.jitter(sp), src.Y+s.jitter(sp)),
					Source:  src,
					Alpha:   alpha,
					Density: n,
				})
			}
		}
	}
	return out
}

// strokeMask returns an opaque band of roughly lineWidth straddling the edge
// of the thresholded shape: dilate(mask) minus erode(mask) with radius
// lineWidth/2.
func strokeMask(src *image.Alpha, threshold uint8, lineWidth float64) *image.Alpha {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	r := lineWidth / 2
	ri := int(math.Ceil(r))

	inside := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inside[y*w+x] = src.AlphaAt(b.Min.X+x, b.Min.Y+y).A > threshold
		}
	}
	at := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return inside[y*w+x]
	}

	// Disc kernel offsets.
	var kernel []image.Point
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= r*r {
				kernel = append(kernel, image.Pt(dx, dy))
			}
		}
	}

	out := image.NewAlpha(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			anyIn, allIn := false, true
			for _, k := range kernel {
				if at(x+k.X, y+k.Y) {
					anyIn = true
				} else {
					allIn = false
				}
				if anyIn && !allIn {
					break
				}
			}
			if anyIn && !allIn {
				out.Pix[y*out.Stride+x] = 0xff
			}
		}
	}
	return out
}
