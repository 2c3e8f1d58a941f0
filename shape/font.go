package shape

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSpec selects a font. Zero fields take the sampler's configured values.
type FontSpec struct {
	Size   float64
	Family string // "go" (sans) or "mono"; common sans names map to "go"
	Weight string // "normal", "bold", or a numeric CSS weight
	Italic bool
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

type faceKey struct {
	fontKey
	size float64
}

// familyAliases maps common family names onto the bundled Go fonts.
var familyAliases = map[string]string{
	"":           "go",
	"go":         "go",
	"sans":       "go",
	"sans-serif": "go",
	"arial":      "go",
	"helvetica":  "go",
	"system-ui":  "go",
	"mono":       "mono",
	"monospace":  "mono",
	"go mono":    "mono",
	"courier":    "mono",
}

func resolveFamily(family string) (string, error) {
	name, ok := familyAliases[strings.ToLower(strings.TrimSpace(family))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFont, family)
	}
	return name, nil
}

// isBold reports whether a CSS-style weight renders bold.
func isBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder", "semibold", "extrabold", "black":
		return true
	case "", "normal", "regular", "light", "lighter":
		return false
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}

func fontData(k fontKey) []byte {
	if k.family == "mono" {
		if k.bold {
			return gomonobold.TTF
		}
		return gomono.TTF
	}
	switch {
	case k.bold && k.italic:
		return gobolditalic.TTF
	case k.bold:
		return gobold.TTF
	case k.italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

// face returns a cached face for spec, parsing the font on first use.
func (s *Sampler) face(spec FontSpec) (font.Face, error) {
	family, err := resolveFamily(spec.Family)
	if err != nil {
		return nil, err
	}
	fk := fontKey{family: family, bold: isBold(spec.Weight), italic: spec.Italic}
	key := faceKey{fontKey: fk, size: spec.Size}

	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.faces[key]; ok {
		return f, nil
	}

	parsed, ok := s.fonts[fk]
	if !ok {
		parsed, err = opentype.Parse(fontData(fk))
		if err != nil {
			return nil, fmt.Errorf("parsing %s font: %w", family, err)
		}
		s.fonts[fk] = parsed
	}

	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    spec.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s face: %w", family, err)
	}
	s.faces[key] = f
	return f, nil
}
