// Package render draws a submission receipt with the gofpdf engine.
//
// A receipt is laid out top to bottom on A4 pages: a header with the
// organisation, service, sender and reference number, followed by every
// visible component of every included layout. Each component is measured
// before it is drawn and moved to a new page when it does not fit; a
// component is never split across pages.
//
// All measurements are in points. The vertical cursor is measured from the
// bottom of the page, as in PDF user space, and converted when calling the
// engine.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	gofpdf "github.com/lvillar/gofpdf"
	"go.uber.org/zap"

	"github.com/lvillar/receipts/form"
	"github.com/lvillar/receipts/formdata"
	"github.com/lvillar/receipts/layout"
	"github.com/lvillar/receipts/options"
	"github.com/lvillar/receipts/submission"
	"github.com/lvillar/receipts/tagging"
	"github.com/lvillar/receipts/texts"
)

// Page geometry and type sizes.
const (
	Margin          = 50.0
	ComponentMargin = 25.0
	TextFieldMargin = 5.0
	FontSize        = 10.0
	HeaderFontSize  = 14.0
	Leading         = 1.2 * FontSize
)

// BarcodeKind selects the barcode drawn in the header.
type BarcodeKind string

const (
	BarcodeNone   BarcodeKind = ""
	BarcodeQR     BarcodeKind = "qr"
	BarcodePDF417 BarcodeKind = "pdf417"
)

// Config controls how receipts are drawn. The zero value draws Helvetica
// receipts without compression, barcode, letterhead or form fields.
type Config struct {
	Logger *zap.Logger

	// Compress enables stream compression.
	Compress bool
	// Letterhead is a PDF whose first page is drawn behind every page.
	Letterhead []byte
	// Barcode is drawn at the right edge of the header. Its content is
	// BarcodeBaseURL joined with the instance id.
	Barcode        BarcodeKind
	BarcodeBaseURL string
	// FormFields adds a read-only form field for every value box.
	FormFields bool
	// Regular and Bold are TrueType fonts. When Regular is nil the core
	// Helvetica fonts are used. A nil Bold reuses Regular.
	Regular, Bold []byte
	// CreationDate fixes the document creation date, for reproducible
	// output.
	CreationDate time.Time
	Creator      string
}

// Job is everything one receipt is drawn from.
type Job struct {
	Instance  *submission.Instance
	Party     *submission.Party
	UserParty *submission.Party
	// Language is a resolved language code (nb, nn or en).
	Language string
	// OrgName is the full name of the organisation owning the app.
	OrgName string
	Texts   *texts.ResourceSet
	Data    *formdata.Document
	// Layouts are rendered in Settings page order.
	Layouts  *layout.Layouts
	Settings *layout.Settings
	Options  options.Dictionary
	// SingleLayout marks a job built from one unnamed layout. Page order
	// and page exclusion do not apply to it.
	SingleLayout bool
}

// A Renderer draws receipts. It is safe for concurrent use; every Render
// call owns its own engine document.
type Renderer struct {
	cfg     Config
	log     *zap.Logger
	regular *face
	bold    *face
}

// New returns a Renderer for cfg.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{cfg: cfg, log: cfg.Logger}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.cfg.Creator == "" {
		r.cfg.Creator = "receipts"
	}
	switch r.cfg.Barcode {
	case BarcodeNone, BarcodeQR, BarcodePDF417:
	default:
		return nil, fmt.Errorf("render: unknown barcode kind %q", r.cfg.Barcode)
	}

	if cfg.Regular == nil {
		regular, bold, err := coreFaces()
		if err != nil {
			return nil, err
		}
		r.regular, r.bold = regular, bold
		return r, nil
	}

	boldTTF := cfg.Bold
	if boldTTF == nil {
		boldTTF = cfg.Regular
	}
	var err error
	if r.regular, err = trueTypeFace("", cfg.Regular); err != nil {
		return nil, err
	}
	if r.bold, err = trueTypeFace("B", boldTTF); err != nil {
		return nil, err
	}
	return r, nil
}

// Render draws the receipt for job and writes it to w. Nothing is written
// when rendering fails.
func (r *Renderer) Render(ctx context.Context, w io.Writer, job *Job) error {
	if job == nil || job.Instance == nil {
		return fmt.Errorf("render: job has no instance")
	}
	d := r.newDocument(job)
	if err := d.start(); err != nil {
		return err
	}

	d.newPage()
	d.renderHeader()
	if err := d.err("header"); err != nil {
		return err
	}

	keys := job.Layouts.Keys()
	if !job.SingleLayout {
		keys = job.Settings.PageOrder(job.Layouts)
	}
	first := true
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		fl, _ := job.Layouts.Get(key)
		elements := fl.Elements()
		if !job.SingleLayout && !job.Settings.IncludePage(key, elements) {
			r.log.Debug("skipping layout", zap.String("layout", key))
			continue
		}
		if !first {
			d.newPage()
		}
		first = false
		if err := d.renderLayout(ctx, key, elements); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := d.finish(&buf); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// document is the state of one receipt while it is drawn.
type document struct {
	r   *Renderer
	job *Job
	log *zap.Logger
	pdf *gofpdf.Fpdf

	pageW, pageH float64
	// y is the cursor, measured from the bottom of the page.
	y float64
	// fresh is set while nothing has been drawn on the current page.
	fresh    bool
	outlined bool

	tags       *tagging.Tree
	fields     *form.Builder
	letterhead *letterhead
	strings    texts.Strings
}

func (r *Renderer) newDocument(job *Job) *document {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pageW, pageH := pdf.GetPageSize()
	d := &document{
		r:     r,
		job:   job,
		log:   r.log.With(zap.String("instance", job.Instance.ID)),
		pdf:   pdf,
		pageW: pageW,
		pageH: pageH,
	}
	d.tags = tagging.NewTree(pdf)
	if r.cfg.FormFields {
		d.fields = form.NewBuilder(pdf)
	}
	return d
}

// start sets document metadata and loads fonts and the letterhead.
func (d *document) start() error {
	cfg := d.r.cfg
	d.pdf.SetCompression(cfg.Compress)
	d.pdf.SetMargins(Margin, Margin, Margin)
	d.pdf.SetAutoPageBreak(false, 0)
	d.pdf.SetTitle(d.job.Instance.DisplayName(d.job.Language), true)
	if d.job.OrgName != "" {
		d.pdf.SetAuthor(d.job.OrgName, true)
	}
	d.pdf.SetCreator(cfg.Creator, true)
	if !cfg.CreationDate.IsZero() {
		d.pdf.SetCreationDate(cfg.CreationDate)
	}
	if cfg.Regular != nil {
		d.pdf.AddUTF8FontFromBytes(d.r.regular.family, d.r.regular.style, cfg.Regular)
		bold := cfg.Bold
		if bold == nil {
			bold = cfg.Regular
		}
		d.pdf.AddUTF8FontFromBytes(d.r.bold.family, d.r.bold.style, bold)
	}
	if err := d.err("fonts"); err != nil {
		return err
	}
	if cfg.Letterhead != nil {
		lh, err := importLetterhead(d.pdf, cfg.Letterhead)
		if err != nil {
			return err
		}
		d.letterhead = lh
	}
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetLineWidth(0.5)
	d.setFont(d.r.regular, FontSize)
	return d.err("start")
}

// newPage closes the current page and starts the next one with the cursor
// at the top margin.
func (d *document) newPage() {
	d.tags.End()
	d.pdf.AddPage()
	if !d.outlined {
		d.pdf.Bookmark(d.str("all_pages"), 0, 0)
		d.outlined = true
	}
	d.pdf.Bookmark(fmt.Sprintf("%s %d", d.str("page"), d.pdf.PageNo()), 1, 0)
	d.tags.Artifact(func() {
		d.pdf.SetFillColor(255, 255, 255)
		d.pdf.Rect(0, 0, d.pageW, d.pageH, "F")
		if d.letterhead != nil {
			d.letterhead.draw(d.pdf, d.pageW, d.pageH)
		}
	})
	d.y = d.pageH - Margin
	d.fresh = true
}

// finish closes the structure tree, writes the catalog entries and the
// document.
func (d *document) finish(w io.Writer) error {
	d.tags.Finalize()
	entry := d.tags.Catalog(d.job.Language, pageRef)
	if d.fields != nil {
		if acro := d.fields.Build(); acro != "" {
			entry += " " + acro
		}
	}
	d.pdf.AddCatalogEntry(entry)
	if err := d.err("finish"); err != nil {
		return err
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("render: output: %w", err)
	}
	return nil
}

// pageRef returns the indirect reference of a page object. The engine
// writes each page object followed by its content stream, after the page
// tree and resource objects.
func pageRef(page int) string {
	return fmt.Sprintf("%d 0 R", 1+2*page)
}

func (d *document) err(op string) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("render: %s: %w", op, err)
	}
	return nil
}

func (d *document) str(key string) string {
	return d.strings.Get(key, d.job.Language)
}

// text returns the text resource for key, or "" for an empty key.
func (d *document) text(key string) string {
	if key == "" {
		return ""
	}
	return d.job.Texts.Lookup(key)
}

func (d *document) contentWidth() float64 {
	return d.pageW - 2*Margin
}

func (d *document) setFont(f *face, size float64) {
	d.pdf.SetFont(f.family, f.style, size)
}

// drawLine draws one line of text with its baseline at y.
func (d *document) drawLine(f *face, size, x, y float64, s string) {
	if s == "" {
		return
	}
	d.setFont(f, size)
	d.pdf.Text(x, d.pageH-y, f.encode(s))
}
