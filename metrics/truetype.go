package metrics

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// TrueTypeFont measures glyphs of a parsed TrueType or OpenType font.
// It is safe for concurrent use.
type TrueTypeFont struct {
	name      string
	font      *sfnt.Font
	unitsPerM float64
	capHeight float64
	fallback  float64

	mu       sync.Mutex
	buf      sfnt.Buffer
	advances map[rune]float64
}

// TrueType parses ttf and returns its metrics.
func TrueType(ttf []byte) (*TrueTypeFont, error) {
	f, err := sfnt.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("metrics: parsing font: %w", err)
	}
	t := &TrueTypeFont{
		font:      f,
		unitsPerM: float64(f.UnitsPerEm()),
		advances:  make(map[rune]float64),
	}
	if t.unitsPerM <= 0 {
		t.unitsPerM = 1000
	}
	t.name, err = f.Name(&t.buf, sfnt.NameIDFull)
	if err != nil || t.name == "" {
		t.name = "TrueType"
	}

	t.fallback = t.measure(0)
	if t.fallback <= 0 {
		t.fallback = 500
	}
	t.capHeight = t.capFromGlyph('H')
	if t.capHeight <= 0 {
		t.capHeight = 700
	}
	return t, nil
}

func (t *TrueTypeFont) Name() string { return t.name }

func (t *TrueTypeFont) CapHeight() float64 { return t.capHeight }

func (t *TrueTypeFont) Advance(r rune) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w, ok := t.advances[r]; ok {
		return w
	}
	w := t.fallback
	if idx, err := t.font.GlyphIndex(&t.buf, r); err == nil && idx != 0 {
		w = t.measure(idx)
	}
	t.advances[r] = w
	return w
}

// measure returns the advance of glyph idx in thousandths of an em.
// The caller holds t.mu or owns t exclusively.
func (t *TrueTypeFont) measure(idx sfnt.GlyphIndex) float64 {
	ppem := fixed.Int26_6(t.font.UnitsPerEm()) << 6
	adv, err := t.font.GlyphAdvance(&t.buf, idx, ppem, font.HintingNone)
	if err != nil {
		return 0
	}
	return float64(adv) / 64 * 1000 / t.unitsPerM
}

func (t *TrueTypeFont) capFromGlyph(r rune) float64 {
	idx, err := t.font.GlyphIndex(&t.buf, r)
	if err != nil || idx == 0 {
		return 0
	}
	ppem := fixed.Int26_6(t.font.UnitsPerEm()) << 6
	bounds, _, err := t.font.GlyphBounds(&t.buf, idx, ppem, font.HintingNone)
	if err != nil {
		return 0
	}
	// Y grows downwards in sfnt bounds.
	return float64(-bounds.Min.Y) / 64 * 1000 / t.unitsPerM
}
