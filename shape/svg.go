package shape

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/vector"

	"github.com/pthm-cable/swarm/vmath"
)

// svgDoc is the subset of an SVG document the sampler understands.
type svgDoc struct {
	width, height float64
	viewBox       Rect
	hasViewBox    bool
	elements      []svgElement
}

type svgElement struct {
	tag   string
	attrs map[string]string
}

var shapeTags = map[string]bool{
	"path":     true,
	"circle":   true,
	"ellipse":  true,
	"rect":     true,
	"line":     true,
	"polyline": true,
	"polygon":  true,
}

// parseSVG decodes the root <svg> element and every shape element beneath it
// in document order. Transforms and styles are ignored.
func parseSVG(r io.Reader) (*svgDoc, error) {
	dec := xml.NewDecoder(r)
	var doc *svgDoc

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSVG, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		attrs := make(map[string]string, len(se.Attr))
		for _, a := range se.Attr {
			attrs[a.Name.Local] = a.Value
		}

		if doc == nil {
			if se.Name.Local != "svg" {
				return nil, fmt.Errorf("%w: root element is <%s>", ErrInvalidSVG, se.Name.Local)
			}
			doc = newSVGDoc(attrs)
			continue
		}
		if shapeTags[se.Name.Local] {
			doc.elements = append(doc.elements, svgElement{tag: se.Name.Local, attrs: attrs})
		}
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: no <svg> element", ErrInvalidSVG)
	}
	return doc, nil
}

func newSVGDoc(attrs map[string]string) *svgDoc {
	doc := &svgDoc{viewBox: Rect{Width: 100, Height: 100}}
	if vb, ok := attrs["viewBox"]; ok {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
		if len(f) == 4 {
			var v [4]float64
			valid := true
			for i := range f {
				n, err := parseFinite(f[i])
				if err != nil {
					valid = false
					break
				}
				v[i] = n
			}
			if valid && v[2] > 0 && v[3] > 0 {
				doc.viewBox = Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
				doc.hasViewBox = true
			}
		}
	}
	doc.width = doc.viewBox.Width
	doc.height = doc.viewBox.Height
	if w, ok := parseLength(attrs["width"]); ok && w > 0 {
		doc.width = w
	}
	if h, ok := parseLength(attrs["height"]); ok && h > 0 {
		doc.height = h
	}
	return doc
}

// parseLength reads the leading number of an attribute, ignoring units.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			end++
			continue
		}
		break
	}
	// Back off a trailing exponent marker from a unit like "em".
	for end > 0 {
		v, err := parseFinite(s[:end])
		if err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}

func (e svgElement) num(name string) float64 {
	v, _ := parseLength(e.attrs[name])
	return v
}

// parseFinite is strconv.ParseFloat without NaN, Inf or overflow.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

func parsePoints(s string) []vmath.Vec {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r' })
	pts := make([]vmath.Vec, 0, len(f)/2)
	for i := 0; i+1 < len(f); i += 2 {
		x, err1 := parseFinite(f[i])
		y, err2 := parseFinite(f[i+1])
		if err1 != nil || err2 != nil {
			break
		}
		pts = append(pts, vmath.V(x, y))
	}
	return pts
}

// SVGMetadata summarises an SVG document.
type SVGMetadata struct {
	Bounds       Rect // viewBox, or 0 0 100 100 when absent
	ElementCount int  // shape elements found
	HasViewBox   bool
	Width        float64
	Height       float64
}

// ReadSVGMetadata parses r and reports its bounds and element count.
func ReadSVGMetadata(r io.Reader) (SVGMetadata, error) {
	doc, err := parseSVG(r)
	if err != nil {
		return SVGMetadata{}, err
	}
	return SVGMetadata{
		Bounds:       doc.viewBox,
		ElementCount: len(doc.elements),
		HasViewBox:   doc.hasViewBox,
		Width:        doc.width,
		Height:       doc.height,
	}, nil
}

// SVGOptions overrides the sampler's SVG settings. Zero fields take the
// sampler configuration.
type SVGOptions struct {
	Spacing       float64
	Scale         float64
	Quality       int
	MergeDistance float64
	NoOptimize    bool
}

func (s *Sampler) svgOptions(o SVGOptions) SVGOptions {
	if o.Spacing <= 0 {
		o.Spacing = s.cfg.SVGSpacing
	}
	if o.Scale <= 0 {
		o.Scale = s.cfg.SVGScale
	}
	if o.Quality <= 0 {
		o.Quality = s.cfg.SVGQuality
	}
	if o.MergeDistance <= 0 {
		o.MergeDistance = s.cfg.MergeDistance
	}
	if !s.cfg.OptimizePaths {
		o.NoOptimize = true
	}
	return o
}

// minOptimizeCount is the sample count below which SVG output is not merged.
const minOptimizeCount = 100

// SampleSVG samples the outlines of every shape element in r. Coordinates
// are relative to the viewBox origin and multiplied by the scale.
func (s *Sampler) SampleSVG(r io.Reader, opts SVGOptions) ([]Sample, error) {
	doc, err := parseSVG(r)
	if err != nil {
		return nil, err
	}
	opts = s.svgOptions(opts)

	var out []Sample
	for i, el := range doc.elements {
		pts, err := el.outline(opts.Spacing/opts.Scale, opts.Scale)
		if err != nil {
			return nil, fmt.Errorf("%w: <%s> %d: %v", ErrInvalidSVG, el.tag, i, err)
		}
		for _, p := range pts {
			src := doc.toCanvas(p, opts.Scale)
			if !vmath.Finite(src) {
				continue
			}
			for q := 0; q < opts.Quality; q++ {
				off := float64(q) * 0.5
				pos := src
				if off > 0 {
					pos = vmath.V(src.X+s.rng.Float64()*2*off-off, src.Y+s.rng.Float64()*2*off-off)
				}
				out = append(out, Sample{Pos: pos, Source: src, Alpha: 1, Element: i})
			}
		}
	}

	if !opts.NoOptimize && len(out) >= minOptimizeCount {
		out = mergeSamples(out, opts.MergeDistance, svgSampleSize)
	}
	return out, nil
}

func (d *svgDoc) toCanvas(p vmath.Vec, scale float64) vmath.Vec {
	return vmath.V((p.X-d.viewBox.X)*scale, (p.Y-d.viewBox.Y)*scale)
}

// outline returns outline sample points in user units. spacing is in user
// units; scale only affects curve resolution.
func (e svgElement) outline(spacing, scale float64) ([]vmath.Vec, error) {
	switch e.tag {
	case "circle":
		r := e.num("r")
		return ellipsePoints(vmath.V(e.num("cx"), e.num("cy")), r, r, spacing), nil
	case "ellipse":
		return ellipsePoints(vmath.V(e.num("cx"), e.num("cy")), e.num("rx"), e.num("ry"), spacing), nil
	case "rect":
		w, h := e.num("width"), e.num("height")
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		x, y := e.num("x"), e.num("y")
		pl := polyline{pts: []vmath.Vec{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, closed: true}
		return resample(pl, spacing, 8), nil
	case "line":
		pl := polyline{pts: []vmath.Vec{
			{X: e.num("x1"), Y: e.num("y1")},
			{X: e.num("x2"), Y: e.num("y2")},
		}}
		return resample(pl, spacing, 2), nil
	case "polyline", "polygon":
		pts := parsePoints(e.attrs["points"])
		if e.tag == "polygon" && len(pts) > 2 {
			pts = append(pts, pts[0])
		}
		var out []vmath.Vec
		for i := 0; i+1 < len(pts); i++ {
			seg := resample(polyline{pts: pts[i : i+2]}, spacing, 2)
			if i > 0 {
				seg = seg[1:] // shared vertex
			}
			out = append(out, seg...)
		}
		if len(pts) == 1 {
			out = append(out, pts[0])
		}
		return out, nil
	case "path":
		subs, err := flattenPath(e.attrs["d"], scale)
		if err != nil {
			return nil, err
		}
		var out []vmath.Vec
		for _, sp := range subs {
			out = append(out, resample(sp, spacing, 1)...)
		}
		return out, nil
	}
	return nil, nil
}

// ellipsePoints places max(8, circumference/spacing) points evenly by angle.
func ellipsePoints(c vmath.Vec, rx, ry, spacing float64) []vmath.Vec {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	// Ramanujan's approximation.
	circ := math.Pi * (3*(rx+ry) - math.Sqrt((3*rx+ry)*(rx+3*ry)))
	n := max(8, int(math.Floor(circ/spacing)))
	out := make([]vmath.Vec, n)
	for i := range out {
		a := float64(i) / float64(n) * 2 * math.Pi
		out[i] = vmath.V(c.X+math.Cos(a)*rx, c.Y+math.Sin(a)*ry)
	}
	return out
}

// resample walks a polyline by arc length, emitting max(minSegs,
// floor(length/spacing)) evenly spaced segments' endpoints. Closed polylines
// do not repeat the start point.
func resample(pl polyline, spacing float64, minSegs int) []vmath.Vec {
	if len(pl.pts) == 0 {
		return nil
	}
	total := pl.length()
	if total == 0 {
		return []vmath.Vec{pl.pts[0]}
	}

	pts := pl.pts
	if pl.closed {
		pts = append(append([]vmath.Vec(nil), pl.pts...), pl.pts[0])
	}

	n := max(minSegs, int(math.Floor(total/spacing)))
	count := n + 1
	if pl.closed {
		count = n
	}
	step := total / float64(n)

	out := make([]vmath.Vec, 0, count)
	seg := 0
	segStart := 0.0 // arc length at pts[seg]
	segLen := vmath.Distance(pts[0], pts[1])
	for k := 0; k < count; k++ {
		target := float64(k) * step
		for seg < len(pts)-2 && target > segStart+segLen {
			segStart += segLen
			seg++
			segLen = vmath.Distance(pts[seg], pts[seg+1])
		}
		t := 0.0
		if segLen > 0 {
			t = vmath.Clamp((target-segStart)/segLen, 0, 1)
		}
		out = append(out, vmath.LerpVec(pts[seg], pts[seg+1], t))
	}
	return out
}

// FillSVG rasterizes the interiors of every shape element and samples the
// result on a spacing grid like filled text.
func (s *Sampler) FillSVG(r io.Reader, opts SVGOptions) ([]Sample, error) {
	doc, err := parseSVG(r)
	if err != nil {
		return nil, err
	}
	opts = s.svgOptions(opts)

	w := int(math.Ceil(doc.viewBox.Width * opts.Scale))
	h := int(math.Ceil(doc.viewBox.Height * opts.Scale))
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	ras := vector.NewRasterizer(w, h)

	for i, el := range doc.elements {
		subs, err := el.fillGeometry(opts.Scale)
		if err != nil {
			return nil, fmt.Errorf("%w: <%s> %d: %v", ErrInvalidSVG, el.tag, i, err)
		}
		if len(subs) == 0 {
			continue
		}
		ras.Reset(w, h)
		for _, sp := range subs {
			if len(sp.pts) < 3 {
				continue
			}
			p := doc.toCanvas(sp.pts[0], opts.Scale)
			ras.MoveTo(float32(p.X), float32(p.Y))
			for _, q := range sp.pts[1:] {
				p = doc.toCanvas(q, opts.Scale)
				ras.LineTo(float32(p.X), float32(p.Y))
			}
			ras.ClosePath()
		}
		ras.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	}

	spacing := max(1, int(math.Round(opts.Spacing)))
	return s.scanFill(dst, spacing, opts.Quality), nil
}

// fillGeometry returns closed outlines in user units for rasterization.
// Lines and polylines have no interior.
func (e svgElement) fillGeometry(scale float64) ([]polyline, error) {
	switch e.tag {
	case "circle", "ellipse":
		rx, ry := e.num("r"), e.num("r")
		if e.tag == "ellipse" {
			rx, ry = e.num("rx"), e.num("ry")
		}
		// Fine angular steps; spacing 1 device pixel.
		pts := ellipsePoints(vmath.V(e.num("cx"), e.num("cy")), rx, ry, 1/scale)
		return []polyline{{pts: pts, closed: true}}, nil
	case "rect":
		w, h := e.num("width"), e.num("height")
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		x, y := e.num("x"), e.num("y")
		return []polyline{{pts: []vmath.Vec{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, closed: true}}, nil
	case "polygon":
		return []polyline{{pts: parsePoints(e.attrs["points"]), closed: true}}, nil
	case "path":
		return flattenPath(e.attrs["d"], scale)
	}
	return nil, nil
}
