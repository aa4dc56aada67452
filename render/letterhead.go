package render

import (
	"bytes"
	"fmt"
	"io"

	gofpdf "github.com/lvillar/gofpdf"
	"github.com/lvillar/gofpdf/contrib/gofpdi"
)

// letterhead is the first page of a PDF imported as a template and drawn
// behind the content of every page.
type letterhead struct {
	imp *gofpdi.Importer
	tpl int
}

func importLetterhead(pdf *gofpdf.Fpdf, data []byte) (lh *letterhead, err error) {
	// The importer panics on input it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			lh, err = nil, fmt.Errorf("render: importing letterhead: %v", r)
		}
	}()
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	tpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render: importing letterhead: %w", err)
	}
	return &letterhead{imp: imp, tpl: tpl}, nil
}

func (l *letterhead) draw(pdf *gofpdf.Fpdf, pageW, pageH float64) {
	l.imp.UseImportedTemplate(pdf, l.tpl, 0, 0, pageW, pageH)
}
