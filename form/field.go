// Package form adds read-only AcroForm text fields to a receipt so that the
// submitted values can be extracted by software as well as read on the page.
//
// Fields are collected while the receipt is drawn and written as widget
// annotations once all pages exist. The AcroForm dictionary is returned as
// catalog entry text instead of being written directly, so that it can share
// a single catalog write with other entries.
package form

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Field flags.
const (
	flagReadOnly  = 1
	flagMultiLine = 1 << 12
)

// DefaultAppearance is the appearance string shared by the form and its
// widgets.
const DefaultAppearance = "/Helv 10 Tf 0 0 0 rg"

// Annotator is the part of the PDF engine the builder writes through.
// *gofpdf.Fpdf satisfies it.
type Annotator interface {
	AddPageAnnotation(page int, annot string)
	GetScaleFactor() float64
}

// Field is one read-only text field.
type Field struct {
	Name      string  // unique field name
	Page      int     // page number (1-based)
	X, Y      float64 // lower left corner in user units, measured from the page bottom
	W, H      float64 // width and height in user units
	Value     string  // displayed value
	FontSize  float64 // font size; 0 means 10
	MultiLine bool
}

// Builder collects fields for one document. It is not safe for concurrent
// use.
type Builder struct {
	pdf    Annotator
	fields []Field
	names  map[string]int
}

// NewBuilder returns a builder writing to pdf.
func NewBuilder(pdf Annotator) *Builder {
	return &Builder{pdf: pdf, names: make(map[string]int)}
}

// Add records a field. A name already in use gets a numeric suffix; the
// name actually used is returned.
func (b *Builder) Add(f Field) string {
	f.Name = b.unique(f.Name)
	if f.FontSize == 0 {
		f.FontSize = 10
	}
	b.fields = append(b.fields, f)
	return f.Name
}

func (b *Builder) unique(name string) string {
	if name == "" {
		name = "field"
	}
	n := b.names[name]
	b.names[name] = n + 1
	if n == 0 {
		return name
	}
	return name + "_" + strconv.Itoa(n+1)
}

// Fields returns the recorded fields.
func (b *Builder) Fields() []Field { return b.fields }

// Len returns the number of recorded fields.
func (b *Builder) Len() int { return len(b.fields) }

// Build writes a widget annotation for every field and returns the
// /AcroForm catalog entry, or "" when there are no fields. It must be
// called after the last page has been added.
func (b *Builder) Build() string {
	if len(b.fields) == 0 {
		return ""
	}
	k := b.pdf.GetScaleFactor()
	refs := make([]string, 0, len(b.fields))
	for _, f := range b.fields {
		widget := widgetDict(f, k)
		b.pdf.AddPageAnnotation(f.Page, widget)
		refs = append(refs, widget)
	}
	return fmt.Sprintf("/AcroForm <</Fields [%s] /DR <</Font <</Helv <</Type /Font /Subtype /Type1 /BaseFont /Helvetica>>>>>> /DA (%s) /NeedAppearances true>>",
		strings.Join(refs, " "), DefaultAppearance)
}

// widgetDict returns the merged field and widget dictionary of f.
func widgetDict(f Field, k float64) string {
	x, y := f.X*k, f.Y*k
	w, h := f.W*k, f.H*k

	ff := flagReadOnly
	if f.MultiLine {
		ff |= flagMultiLine
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<</Type /Annot /Subtype /Widget /F 4 /T %s /Rect [%.2f %.2f %.2f %.2f] /FT /Tx",
		textString(f.Name), x, y, x+w, y+h)
	fmt.Fprintf(&sb, " /DA (/Helv %.1f Tf 0 0 0 rg)", f.FontSize)
	if f.Value != "" {
		fmt.Fprintf(&sb, " /V %s", textString(f.Value))
	}
	fmt.Fprintf(&sb, " /Ff %d>>", ff)
	return sb.String()
}

// textString encodes s as a PDF text string: a literal string when it is
// plain ASCII, UTF-16BE with a byte order mark otherwise.
func textString(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			var sb strings.Builder
			sb.WriteString("<FEFF")
			for _, u := range utf16.Encode([]rune(s)) {
				fmt.Fprintf(&sb, "%04X", u)
			}
			sb.WriteByte('>')
			return sb.String()
		}
	}
	return "(" + escape(s) + ")"
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `(`, `\(`)
	s = strings.ReplaceAll(s, `)`, `\)`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
