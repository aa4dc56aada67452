package metrics_test

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/lvillar/receipts/metrics"
	"golang.org/x/image/font/gofont/goregular"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestStringWidthHelvetica(t *testing.T) {
	helv := metrics.MustCore("Helvetica", "")
	if got := metrics.StringWidth("hello", helv, 10); !approx(got, 21.12) {
		t.Errorf("StringWidth(hello) = %v, want 21.12", got)
	}
	if got := metrics.StringWidth("", helv, 10); got != 0 {
		t.Errorf("StringWidth(empty) = %v, want 0", got)
	}
}

func TestStringWidthNonASCII(t *testing.T) {
	helv := metrics.MustCore("Helvetica", "")
	// æ is 889 and ø is 611 in Helvetica.
	if got := metrics.StringWidth("æø", helv, 1); !approx(got, 1.5) {
		t.Errorf("StringWidth(æø) = %v, want 1.5", got)
	}
}

func TestCoreCapHeight(t *testing.T) {
	tests := []struct {
		family string
		want   float64
	}{
		{"Helvetica", 718},
		{"Times", 662},
		{"Courier", 571},
	}
	for _, tt := range tests {
		f := metrics.MustCore(tt.family, "")
		if f.CapHeight() != tt.want {
			t.Errorf("%s cap height = %v, want %v", tt.family, f.CapHeight(), tt.want)
		}
	}
	bold := metrics.MustCore("Helvetica", "B")
	if bold.Name() != "Helvetica-Bold" {
		t.Errorf("Name = %q", bold.Name())
	}
}

func TestWrapToLines(t *testing.T) {
	courier := metrics.MustCore("Courier", "")
	// Every Courier glyph is 6pt wide at 10pt.
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "abc def", 100, []string{"abc def"}},
		{"wraps at space", "aaaaa bbbbb", 30, []string{"aaaaa", "bbbbb"}},
		{"greedy", "aa bb cc dd", 30, []string{"aa bb", "cc dd"}},
		{"newlines", "a\nb", 100, []string{"a", "b"}},
		{"blank line kept", "a\n\nb", 100, []string{"a", "", "b"}},
		{"long word", "abcdefghij", 18, []string{"abc", "def", "ghi", "j"}},
		{"long word after text", "xy abcdefg", 18, []string{"xy", "abc", "def", "g"}},
		{"empty", "", 18, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metrics.WrapToLines(tt.text, courier, 10, tt.width)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("WrapToLines(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestWrapToLinesFitsWidth(t *testing.T) {
	fonts := []metrics.Font{
		metrics.MustCore("Helvetica", ""),
		metrics.MustCore("Times", "B"),
	}
	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"Supercalifragilisticexpialidocious is a rather long word indeed",
		"Kort tekst med æøå og ÆØÅ",
		"Averyveryveryveryveryveryveryverylongwordwithoutanyspaces",
	}
	for _, f := range fonts {
		for _, text := range texts {
			for _, width := range []float64{20, 55, 120, 400} {
				for _, line := range metrics.WrapToLines(text, f, 10, width) {
					w := metrics.StringWidth(line, f, 10)
					if w > width && utf8.RuneCountInString(line) > 1 {
						t.Errorf("%s: line %q is %.2f wide, max %.2f", f.Name(), line, w, width)
					}
				}
			}
		}
	}
}

func TestWrapToLinesReconstructs(t *testing.T) {
	helv := metrics.MustCore("Helvetica", "")
	text := "one two three four five six seven eight nine ten eleven twelve"
	for _, width := range []float64{30, 60, 90, 500} {
		lines := metrics.WrapToLines(text, helv, 10, width)
		if got := strings.Join(lines, " "); got != text {
			t.Errorf("width %v: rejoined %q, want %q", width, got, text)
		}
	}
}

func TestSplitWordToFitWideCharacter(t *testing.T) {
	courier := metrics.MustCore("Courier", "")
	got := metrics.SplitWordToFit("abc", courier, 10, 1)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("SplitWordToFit mismatch (-want +got):\n%s", diff)
	}
	if got := metrics.SplitWordToFit("", courier, 10, 1); len(got) != 1 || got[0] != "" {
		t.Errorf("SplitWordToFit(empty) = %q", got)
	}
}

func TestHeights(t *testing.T) {
	courier := metrics.MustCore("Courier", "")
	capHeight := 5.71

	if got := metrics.FontHeight(courier, 10); !approx(got, capHeight) {
		t.Errorf("FontHeight = %v, want %v", got, capHeight)
	}
	if got := metrics.HeightForWrappedText("", courier, 10, 30); !approx(got, capHeight) {
		t.Errorf("empty text height = %v, want %v", got, capHeight)
	}
	two := 2*capHeight + 0.865*capHeight
	if got := metrics.HeightForWrappedText("aaaaa bbbbb", courier, 10, 30); !approx(got, two) {
		t.Errorf("two line height = %v, want %v", got, two)
	}
	if got := metrics.HeightForTextBox("aaaaa bbbbb", courier, 10, 30, 12); !approx(got, two+4) {
		t.Errorf("text box height = %v, want %v", got, two+4)
	}
	if got := metrics.LineStep(courier, 10); !approx(got, capHeight*1.865) {
		t.Errorf("LineStep = %v", got)
	}
}

func TestTrueType(t *testing.T) {
	f, err := metrics.TrueType(goregular.TTF)
	if err != nil {
		t.Fatalf("TrueType: %v", err)
	}
	if f.Name() == "" {
		t.Error("expected a font name")
	}
	if c := f.CapHeight(); c < 600 || c > 800 {
		t.Errorf("cap height = %v, want between 600 and 800", c)
	}
	w := metrics.StringWidth("hello", f, 10)
	if w <= 0 || w > 50 {
		t.Errorf("StringWidth(hello) = %v", w)
	}
	if got := metrics.StringWidth("hello", f, 20); !approx(got, 2*w) {
		t.Errorf("width does not scale with size: %v vs %v", got, w)
	}
	for _, line := range metrics.WrapToLines("Go fonts measure glyphs through sfnt", f, 10, 60) {
		if lw := metrics.StringWidth(line, f, 10); lw > 60 {
			t.Errorf("line %q is %.2f wide", line, lw)
		}
	}
	if _, err := metrics.TrueType([]byte("not a font")); err == nil {
		t.Error("expected error for invalid font data")
	}
}
