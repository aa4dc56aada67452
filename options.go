package receipts

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lvillar/receipts/render"
)

// Option is a functional option for configuring a Generator via New.
type Option func(*generatorConfig)

type generatorConfig struct {
	render render.Config
	orgs   OrgNames
	logger *zap.Logger
}

// OrgNames looks up the full name of an organisation by its short name.
// *orgs.Registry satisfies it.
type OrgNames interface {
	FullName(short, lang string) string
}

// WithOrgNames sets the lookup used for the organisation name in the
// header. Without it the short name is shown.
func WithOrgNames(names OrgNames) Option {
	return func(c *generatorConfig) {
		c.orgs = names
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *generatorConfig) {
		c.logger = logger
	}
}

// WithCompression enables or disables stream compression. It is enabled
// by default.
func WithCompression(compress bool) Option {
	return func(c *generatorConfig) {
		c.render.Compress = compress
	}
}

// WithLetterhead draws the first page of the PDF document pdf behind every
// page.
func WithLetterhead(pdf []byte) Option {
	return func(c *generatorConfig) {
		c.render.Letterhead = pdf
	}
}

// WithBarcode adds a barcode of the instance address to the header. The
// address is baseURL followed by the instance id.
func WithBarcode(kind render.BarcodeKind, baseURL string) Option {
	return func(c *generatorConfig) {
		c.render.Barcode = kind
		c.render.BarcodeBaseURL = baseURL
	}
}

// WithFormFields puts every value in a read-only form field.
func WithFormFields(enabled bool) Option {
	return func(c *generatorConfig) {
		c.render.FormFields = enabled
	}
}

// WithFonts draws text with the given TrueType fonts instead of Helvetica.
// A nil bold font reuses regular.
func WithFonts(regular, bold []byte) Option {
	return func(c *generatorConfig) {
		c.render.Regular = regular
		c.render.Bold = bold
	}
}

// WithGoFonts draws text with the Go fonts, which cover more scripts than
// the standard PDF fonts.
func WithGoFonts() Option {
	return WithFonts(goregular.TTF, gobold.TTF)
}

// WithCreationDate fixes the creation date written to every document.
func WithCreationDate(t time.Time) Option {
	return func(c *generatorConfig) {
		c.render.CreationDate = t
	}
}

// WithCreator sets the creator written to the document information.
func WithCreator(creator string) Option {
	return func(c *generatorConfig) {
		c.render.Creator = creator
	}
}
