// internal/browser/font/face.go
package font

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/adrg/sysfont"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned when no font matches a family name.
var ErrNoFont = errors.New("font: no matching font")

// Face exposes the glyph metrics layout needs: horizontal advances in em
// units, units-per-em and line height. It is safe for concurrent use.
type Face struct {
	name string
	data []byte
	f    *sfnt.Font
	upem fixed.Int26_6

	mu       sync.Mutex
	buf      sfnt.Buffer
	advances map[rune]float64
	faces    map[float64]xfont.Face
}

// Parse reads a TrueType or OpenType font.
func Parse(name string, data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", name, err)
	}
	return &Face{
		name:     name,
		data:     data,
		f:        f,
		upem:     fixed.Int26_6(f.UnitsPerEm()),
		advances: make(map[rune]float64),
		faces:    make(map[float64]xfont.Face),
	}, nil
}

// Default returns the embedded Go Regular face.
func Default() *Face {
	face, err := Parse("Go Regular", goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("embedded font is invalid: %v", err))
	}
	return face
}

// Load reads a font file from disk.
func Load(path string) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return Parse(path, data)
}

// Find looks a family up among the system fonts.
func Find(family string) (*Face, error) {
	family = strings.Trim(strings.TrimSpace(family), `"'`)
	if family == "" {
		return nil, ErrNoFont
	}
	match := sysfont.NewFinder(nil).Match(family)
	if match == nil || match.Filename == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoFont, family)
	}
	return Load(match.Filename)
}

// Name is the face's display name.
func (fc *Face) Name() string { return fc.name }

// Data is the raw font file, for renderers that embed fonts.
func (fc *Face) Data() []byte { return fc.data }

// UnitsPerEm is the font's design grid size.
func (fc *Face) UnitsPerEm() int { return int(fc.upem) }

// Advance is the horizontal advance of r as a fraction of the em. Runes the
// font lacks use the advance of the missing-glyph box.
func (fc *Face) Advance(r rune) float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if adv, ok := fc.advances[r]; ok {
		return adv
	}
	idx, err := fc.f.GlyphIndex(&fc.buf, r)
	if err != nil {
		idx = 0
	}
	// Asking for the advance at ppem == units-per-em yields font units.
	units, err := fc.f.GlyphAdvance(&fc.buf, idx, fc.upem, xfont.HintingNone)
	if err != nil {
		units = 0
	}
	adv := float64(units) / float64(fc.upem)
	fc.advances[r] = adv
	return adv
}

// Measure returns the width of text in pixels at the given size.
func (fc *Face) Measure(text string, size float64) float64 {
	var em float64
	for _, r := range text {
		em += fc.Advance(r)
	}
	return em * size
}

// LineHeight is ascent plus descent plus line gap at the given size.
func (fc *Face) LineHeight(size float64) float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, err := fc.f.Metrics(&fc.buf, fc.upem, xfont.HintingNone)
	if err != nil || m.Height <= 0 {
		return size * 1.2
	}
	return float64(m.Height) / float64(fc.upem) * size
}

// Ascent is the distance from the top of a line box to the baseline.
func (fc *Face) Ascent(size float64) float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m, err := fc.f.Metrics(&fc.buf, fc.upem, xfont.HintingNone)
	if err != nil {
		return size * 0.8
	}
	return float64(m.Ascent) / float64(fc.upem) * size
}

// FontFace returns a rasterizing face at a pixel size, cached per size.
func (fc *Face) FontFace(size float64) (xfont.Face, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if face, ok := fc.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(fc.f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: xfont.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("failed to create face at %.1fpx: %w", size, err)
	}
	fc.faces[size] = face
	return face, nil
}
