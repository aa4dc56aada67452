package metrics

import (
	"fmt"
	"strings"

	gofpdf "github.com/lvillar/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// Cap heights from the Adobe core font metrics. The engine's core font
// definitions only carry widths.
var coreCapHeights = map[string]float64{
	"helvetica": 718,
	"arial":     718,
	"times":     662,
	"courier":   571,
}

// CoreFont measures one of the fourteen standard PDF fonts using the widths
// bundled with gofpdf. Text is measured in the cp1252 encoding the engine
// uses for core fonts.
type CoreFont struct {
	name      string
	family    string
	style     string
	widths    [256]float64
	capHeight float64
}

// Core loads the metrics of a core font family ("Helvetica", "Times",
// "Courier") in the given style ("", "B", "I", "BI").
func Core(family, style string) (*CoreFont, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont(family, style, 1000)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("metrics: loading core font %s %q: %w", family, style, err)
	}
	f := &CoreFont{
		name:   coreName(family, style),
		family: family,
		style:  style,
	}
	for b := 0; b < 256; b++ {
		f.widths[b] = pdf.GetStringWidth(string([]byte{byte(b)}))
	}
	f.capHeight = float64(pdf.GetFontDesc(family, style).CapHeight)
	if f.capHeight <= 0 {
		f.capHeight = coreCapHeights[strings.ToLower(family)]
	}
	if f.capHeight <= 0 {
		f.capHeight = 700
	}
	return f, nil
}

// MustCore is like Core but panics on error. It is intended for package
// level defaults built from the always available core fonts.
func MustCore(family, style string) *CoreFont {
	f, err := Core(family, style)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *CoreFont) Name() string { return f.name }

// Family returns the engine font family used with SetFont.
func (f *CoreFont) Family() string { return f.family }

// Style returns the engine font style used with SetFont.
func (f *CoreFont) Style() string { return f.style }

func (f *CoreFont) Advance(r rune) float64 {
	return f.widths[encodeRune(r)]
}

func (f *CoreFont) CapHeight() float64 { return f.capHeight }

// Encode converts UTF-8 text to the cp1252 bytes the engine expects when
// drawing with a core font. Runes outside cp1252 become '.'.
func (f *CoreFont) Encode(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, encodeRune(r))
	}
	return string(b)
}

func encodeRune(r rune) byte {
	if r < 0x80 {
		return byte(r)
	}
	if b, ok := charmap.Windows1252.EncodeRune(r); ok {
		return b
	}
	return '.'
}

func coreName(family, style string) string {
	name := family
	switch strings.ToUpper(style) {
	case "B":
		name += "-Bold"
	case "I":
		name += "-Oblique"
	case "BI", "IB":
		name += "-BoldOblique"
	}
	return name
}
