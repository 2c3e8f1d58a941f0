package shape

import (
	"fmt"
	"math"

	"github.com/pthm-cable/swarm/vmath"
)

// polyline is a flattened subpath in SVG user units.
type polyline struct {
	pts    []vmath.Vec
	closed bool
}

func (p polyline) length() float64 {
	var l float64
	for i := 1; i < len(p.pts); i++ {
		l += vmath.Distance(p.pts[i-1], p.pts[i])
	}
	if p.closed && len(p.pts) > 1 {
		l += vmath.Distance(p.pts[len(p.pts)-1], p.pts[0])
	}
	return l
}

// pathScanner tokenizes SVG path data.
type pathScanner struct {
	s   string
	pos int
}

func isPathSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == ','
}

func isCommand(c byte) bool {
	switch c | 0x20 { // lower-case
	case 'm', 'l', 'h', 'v', 'c', 's', 'q', 't', 'a', 'z':
		return true
	}
	return false
}

func (p *pathScanner) skip() {
	for p.pos < len(p.s) && isPathSpace(p.s[p.pos]) {
		p.pos++
	}
}

func (p *pathScanner) done() bool {
	p.skip()
	return p.pos >= len(p.s)
}

// command consumes a command letter if one is next.
func (p *pathScanner) command() (byte, bool) {
	p.skip()
	if p.pos < len(p.s) && isCommand(p.s[p.pos]) {
		c := p.s[p.pos]
		p.pos++
		return c, true
	}
	return 0, false
}

// number reads a float, accepting forms like "-.5", "1e-3" and "1.5.5" (two numbers).
func (p *pathScanner) number() (float64, error) {
	p.skip()
	start := p.pos
	i := p.pos
	if i < len(p.s) && (p.s[i] == '+' || p.s[i] == '-') {
		i++
	}
	digits := false
	for i < len(p.s) && p.s[i] >= '0' && p.s[i] <= '9' {
		i++
		digits = true
	}
	if i < len(p.s) && p.s[i] == '.' {
		i++
		for i < len(p.s) && p.s[i] >= '0' && p.s[i] <= '9' {
			i++
			digits = true
		}
	}
	if !digits {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	if i < len(p.s) && (p.s[i] == 'e' || p.s[i] == 'E') {
		j := i + 1
		if j < len(p.s) && (p.s[j] == '+' || p.s[j] == '-') {
			j++
		}
		k := j
		for k < len(p.s) && p.s[k] >= '0' && p.s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	p.pos = i
	return parseFinite(p.s[start:i])
}

// flag reads an arc flag, which may be packed without separators.
func (p *pathScanner) flag() (bool, error) {
	p.skip()
	if p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '0':
			p.pos++
			return false, nil
		case '1':
			p.pos++
			return true, nil
		}
	}
	return false, fmt.Errorf("expected arc flag at offset %d", p.pos)
}

func (p *pathScanner) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// pathBuilder accumulates flattened subpaths.
type pathBuilder struct {
	out      []polyline
	cur      []vmath.Vec
	pos      vmath.Vec
	start    vmath.Vec
	ctrl     vmath.Vec // last control point for smooth curves
	lastOp   byte
	tolScale float64 // scale applied to lengths when choosing segment counts
}

func (b *pathBuilder) moveTo(p vmath.Vec) {
	b.flush(false)
	b.cur = []vmath.Vec{p}
	b.pos = p
	b.start = p
}

func (b *pathBuilder) lineTo(p vmath.Vec) {
	if len(b.cur) == 0 {
		b.cur = []vmath.Vec{b.pos}
	}
	b.cur = append(b.cur, p)
	b.pos = p
}

func (b *pathBuilder) close() {
	b.flush(true)
	b.pos = b.start
	b.cur = nil
}

func (b *pathBuilder) flush(closed bool) {
	if len(b.cur) > 0 {
		b.out = append(b.out, polyline{pts: b.cur, closed: closed})
	}
	b.cur = nil
}

// segments picks a flattening resolution from the control polygon length.
func (b *pathBuilder) segments(ctrlLen float64) int {
	n := int(math.Ceil(ctrlLen * b.tolScale / 3))
	if n < 4 {
		n = 4
	}
	if n > 64 {
		n = 64
	}
	return n
}

func (b *pathBuilder) cubicTo(c1, c2, p vmath.Vec) {
	p0 := b.pos
	n := b.segments(vmath.Distance(p0, c1) + vmath.Distance(c1, c2) + vmath.Distance(c2, p))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		b.lineTo(vmath.V(
			vmath.CubicBezier(t, p0.X, c1.X, c2.X, p.X),
			vmath.CubicBezier(t, p0.Y, c1.Y, c2.Y, p.Y),
		))
	}
	b.ctrl = c2
}

func (b *pathBuilder) quadTo(c, p vmath.Vec) {
	p0 := b.pos
	n := b.segments(vmath.Distance(p0, c) + vmath.Distance(c, p))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		b.lineTo(vmath.V(
			u*u*p0.X+2*u*t*c.X+t*t*p.X,
			u*u*p0.Y+2*u*t*c.Y+t*t*p.Y,
		))
	}
	b.ctrl = c
}

// arcTo flattens an elliptical arc using the endpoint-to-centre conversion.
func (b *pathBuilder) arcTo(rx, ry, phiDeg float64, large, sweep bool, p vmath.Vec) {
	p0 := b.pos
	if p0 == p {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		b.lineTo(p)
		return
	}

	phi := vmath.DegToRad(phiDeg)
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx := (p0.X - p.X) / 2
	dy := (p0.Y - p.Y) / 2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// Scale radii up if they cannot span the endpoints.
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx

	cx := cosPhi*cx1 - sinPhi*cy1 + (p0.X+p.X)/2
	cy := sinPhi*cx1 + cosPhi*cy1 + (p0.Y+p.Y)/2

	theta1 := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	theta2 := math.Atan2((-y1-cy1)/ry, (-x1-cx1)/rx)
	delta := theta2 - theta1
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}

	n := b.segments(math.Abs(delta) * math.Max(rx, ry))
	for i := 1; i <= n; i++ {
		t := theta1 + delta*float64(i)/float64(n)
		ex := rx * math.Cos(t)
		ey := ry * math.Sin(t)
		pt := vmath.V(cosPhi*ex-sinPhi*ey+cx, sinPhi*ex+cosPhi*ey+cy)
		if i == n {
			pt = p
		}
		b.lineTo(pt)
	}
}

// reflect returns the smooth-curve control point: the previous control
// mirrored through the current point when the previous command was of the
// same family, otherwise the current point.
func (b *pathBuilder) reflect(family string) vmath.Vec {
	prev := b.lastOp | 0x20
	for i := 0; i < len(family); i++ {
		if prev == family[i] {
			return vmath.Sub(vmath.Scale(b.pos, 2), b.ctrl)
		}
	}
	return b.pos
}

// flattenPath parses SVG path data into polylines in user units. lengthScale
// is the user-to-output scale used to choose curve resolution.
func flattenPath(d string, lengthScale float64) ([]polyline, error) {
	sc := &pathScanner{s: d}
	b := &pathBuilder{tolScale: lengthScale}
	if b.tolScale <= 0 {
		b.tolScale = 1
	}

	var op byte
	for !sc.done() {
		if c, ok := sc.command(); ok {
			op = c
		} else if op == 0 {
			return nil, fmt.Errorf("path data must start with a command")
		}

		rel := op >= 'a'
		base := vmath.Zero
		if rel {
			base = b.pos
		}
		pt := func(x, y float64) vmath.Vec { return vmath.V(base.X+x, base.Y+y) }

		switch op | 0x20 {
		case 'm':
			a, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			b.moveTo(pt(a[0], a[1]))
			// Further coordinate pairs are implicit line-tos.
			if rel {
				op = 'l'
			} else {
				op = 'L'
			}
			b.lastOp = 'm'
			continue
		case 'l':
			a, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			b.lineTo(pt(a[0], a[1]))
		case 'h':
			a, err := sc.numbers(1)
			if err != nil {
				return nil, err
			}
			x := a[0]
			if rel {
				x += b.pos.X
			}
			b.lineTo(vmath.V(x, b.pos.Y))
		case 'v':
			a, err := sc.numbers(1)
			if err != nil {
				return nil, err
			}
			y := a[0]
			if rel {
				y += b.pos.Y
			}
			b.lineTo(vmath.V(b.pos.X, y))
		case 'c':
			a, err := sc.numbers(6)
			if err != nil {
				return nil, err
			}
			b.cubicTo(pt(a[0], a[1]), pt(a[2], a[3]), pt(a[4], a[5]))
		case 's':
			a, err := sc.numbers(4)
			if err != nil {
				return nil, err
			}
			b.cubicTo(b.reflect("cs"), pt(a[0], a[1]), pt(a[2], a[3]))
		case 'q':
			a, err := sc.numbers(4)
			if err != nil {
				return nil, err
			}
			b.quadTo(pt(a[0], a[1]), pt(a[2], a[3]))
		case 't':
			a, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			b.quadTo(b.reflect("qt"), pt(a[0], a[1]))
		case 'a':
			r, err := sc.numbers(3)
			if err != nil {
				return nil, err
			}
			large, err := sc.flag()
			if err != nil {
				return nil, err
			}
			sweep, err := sc.flag()
			if err != nil {
				return nil, err
			}
			end, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			b.arcTo(r[0], r[1], r[2], large, sweep, pt(end[0], end[1]))
		case 'z':
			b.close()
			b.lastOp = op
			op = 0 // a command must follow z
			continue
		}
		b.lastOp = op
	}
	b.flush(false)
	return b.out, nil
}
