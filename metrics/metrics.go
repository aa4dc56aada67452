// Package metrics measures and wraps text for the receipt layout engine.
//
// All functions are pure: they take a Font, a size in points and an
// available width, and never touch a PDF document. Pagination decisions
// downstream rely on these numbers matching what the renderer draws, so the
// same Font value must be used for measuring and for drawing.
package metrics

import "strings"

// LineSpacingFactor is the extra spacing, as a fraction of the cap height,
// added below every wrapped line except the first.
const LineSpacingFactor = 0.865

// Font provides per-glyph metrics in thousandths of an em.
type Font interface {
	// Name identifies the font, e.g. "Helvetica-Bold".
	Name() string
	// Advance returns the horizontal advance of r. Glyphs the font lacks
	// report a fallback width instead of failing.
	Advance(r rune) float64
	// CapHeight returns the height of capital letters.
	CapHeight() float64
}

// StringWidth returns the width of text set in font at size points.
func StringWidth(text string, font Font, size float64) float64 {
	var w float64
	for _, r := range text {
		w += font.Advance(r)
	}
	return w * size / 1000
}

// FontHeight returns the cap height of font at size points.
func FontHeight(font Font, size float64) float64 {
	return font.CapHeight() * size / 1000
}

// WrapToLines breaks text into lines no wider than maxWidth.
//
// Explicit newlines always start a new line. Within a line words are added
// greedily at space boundaries. A word that is wider than maxWidth on its
// own is split with SplitWordToFit.
func WrapToLines(text string, font Font, size, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, font, size, maxWidth)...)
	}
	return lines
}

func wrapParagraph(text string, font Font, size, maxWidth float64) []string {
	words := strings.Split(text, " ")
	var (
		lines   []string
		current string
		started bool
	)
	flush := func() {
		if started {
			lines = append(lines, current)
		}
		current, started = "", false
	}
	for _, word := range words {
		if !started {
			if StringWidth(word, font, size) > maxWidth {
				parts := SplitWordToFit(word, font, size, maxWidth)
				lines = append(lines, parts[:len(parts)-1]...)
				current, started = parts[len(parts)-1], true
				continue
			}
			current, started = word, true
			continue
		}
		candidate := current + " " + word
		if StringWidth(candidate, font, size) <= maxWidth {
			current = candidate
			continue
		}
		flush()
		if StringWidth(word, font, size) > maxWidth {
			parts := SplitWordToFit(word, font, size, maxWidth)
			lines = append(lines, parts[:len(parts)-1]...)
			current, started = parts[len(parts)-1], true
			continue
		}
		current, started = word, true
	}
	flush()
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// SplitWordToFit splits a single word into pieces no wider than maxWidth by
// accumulating characters. A character wider than maxWidth forms a piece of
// its own. The result always holds at least one element.
func SplitWordToFit(word string, font Font, size, maxWidth float64) []string {
	var (
		parts []string
		b     strings.Builder
		width float64
	)
	for _, r := range word {
		w := font.Advance(r) * size / 1000
		if b.Len() > 0 && width+w > maxWidth {
			parts = append(parts, b.String())
			b.Reset()
			width = 0
		}
		b.WriteRune(r)
		width += w
	}
	if b.Len() > 0 || len(parts) == 0 {
		parts = append(parts, b.String())
	}
	return parts
}

// LineCount returns the number of lines text wraps to.
func LineCount(text string, font Font, size, maxWidth float64) int {
	if text == "" {
		return 1
	}
	return len(WrapToLines(text, font, size, maxWidth))
}

// HeightForWrappedText returns the vertical space a wrapped block of text
// needs: one cap height per line plus LineSpacingFactor cap heights between
// consecutive lines. Empty text needs the height of one line.
func HeightForWrappedText(text string, font Font, size, maxWidth float64) float64 {
	n := float64(LineCount(text, font, size, maxWidth))
	capHeight := FontHeight(font, size)
	return n*capHeight + (n-1)*LineSpacingFactor*capHeight
}

// HeightForTextBox returns the height of a bordered box around text, which
// pads the wrapped text by leading-size above and below.
func HeightForTextBox(text string, font Font, size, maxWidth, leading float64) float64 {
	return HeightForWrappedText(text, font, size, maxWidth) + 2*(leading-size)
}

// LineStep returns the baseline-to-baseline distance used inside text
// boxes, consistent with HeightForWrappedText.
func LineStep(font Font, size float64) float64 {
	return FontHeight(font, size) * (1 + LineSpacingFactor)
}
