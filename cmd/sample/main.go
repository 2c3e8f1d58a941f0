// Command sample samples text or an SVG file offline and writes the samples
// as CSV, one row per particle the engine would spawn.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/shape"
)

// row is one sample in CSV form.
type row struct {
	Index   int     `csv:"index"`
	X       float64 `csv:"x"`
	Y       float64 `csv:"y"`
	SourceX float64 `csv:"source_x"`
	SourceY float64 `csv:"source_y"`
	Alpha   float64 `csv:"alpha"`
	Size    float64 `csv:"size"`
	Density int     `csv:"density"`
	Element int     `csv:"element"`
	Delay   float64 `csv:"delay"`
	Pattern string  `csv:"pattern"`
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	text := flag.String("text", "", "Text to sample")
	svgPath := flag.String("svg", "", "SVG file to sample (takes precedence over -text)")
	fill := flag.Bool("fill", false, "Rasterize SVG shapes instead of tracing outlines")
	mode := flag.String("mode", "", "Text mode: fill, outline or density (empty = config)")
	pattern := flag.String("pattern", "none", "Pattern: none, wave, spiral, explosion, fireworks, galaxy")
	reveal := flag.String("reveal", "none", "Reveal: none, sequential, simultaneous, wave, radial")
	center := flag.Bool("center", true, "Centre samples on the configured canvas")
	out := flag.String("out", "", "Output CSV path (empty = stdout)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	samples, err := sample(cfg, rng, *text, *svgPath, *fill, *mode)
	if err != nil {
		slog.Error("sampling failed", "error", err)
		os.Exit(1)
	}

	if *center {
		shape.Center(samples, cfg.Derived.CanvasW, cfg.Derived.CanvasH)
	}
	if err := decorate(samples, rng, *pattern, *reveal); err != nil {
		slog.Error("invalid option", "error", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			slog.Error("failed to create output", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := writeCSV(w, samples); err != nil {
		slog.Error("failed to write csv", "error", err)
		os.Exit(1)
	}

	b := shape.Bounds(samples)
	slog.Info("samples written",
		"count", len(samples),
		"width", b.Width,
		"height", b.Height,
		"seed", *seed,
	)
}

func sample(cfg *config.Config, rng *rand.Rand, text, svgPath string, fill bool, mode string) ([]shape.Sample, error) {
	sampler := shape.NewSampler(cfg.ShapeSampler(), rng)

	if svgPath != "" {
		f, err := os.Open(svgPath)
		if err != nil {
			return nil, fmt.Errorf("opening svg: %w", err)
		}
		defer f.Close()
		if fill {
			return sampler.FillSVG(f, shape.SVGOptions{})
		}
		return sampler.SampleSVG(f, shape.SVGOptions{})
	}

	if text == "" {
		text = cfg.Scene.Text
	}
	m := cfg.Derived.Mode
	if mode != "" {
		var err error
		if m, err = shape.ParseMode(mode); err != nil {
			return nil, err
		}
	}
	return sampler.SampleText(text, shape.FontSpec{}, m)
}

func decorate(samples []shape.Sample, rng *rand.Rand, pattern, reveal string) error {
	p, err := shape.ParsePattern(pattern)
	if err != nil {
		return err
	}
	r, err := shape.ParseReveal(reveal)
	if err != nil {
		return err
	}
	if p != shape.PatternNone {
		shape.Decorate(samples, p, shape.PatternOptions{}, rng)
	}
	if r != shape.RevealNone {
		shape.Animate(samples, r, shape.RevealOptions{}, rng)
	}
	return nil
}

func writeCSV(w io.Writer, samples []shape.Sample) error {
	rows := make([]row, len(samples))
	for i, s := range samples {
		rows[i] = row{
			Index:   i,
			X:       s.Pos.X,
			Y:       s.Pos.Y,
			SourceX: s.Source.X,
			SourceY: s.Source.Y,
			Alpha:   s.Alpha,
			Size:    s.Size,
			Density: s.Density,
			Element: s.Element,
			Delay:   s.Delay,
			Pattern: s.Anim.Pattern.String(),
		}
	}
	return gocsv.Marshal(rows, w)
}
