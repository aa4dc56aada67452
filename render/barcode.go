package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/pdf417"
	"github.com/boombuler/barcode/qr"
	gofpdf "github.com/lvillar/gofpdf"
)

// Barcode widths in points. Heights follow the symbol's aspect ratio.
const (
	qrWidth     = 60.0
	pdf417Width = 140.0
)

const barcodeImageName = "receipt-barcode"

// barcodeImage is a barcode registered with the engine as an image.
type barcodeImage struct {
	name string
	w, h float64
}

// registerBarcode encodes content with the configured symbology and
// registers it as a grayscale PNG image.
func (d *document) registerBarcode(content string) (*barcodeImage, error) {
	var (
		code barcode.Barcode
		err  error
		w    float64
	)
	switch d.r.cfg.Barcode {
	case BarcodeQR:
		code, err = qr.Encode(content, qr.M, qr.Auto)
		w = qrWidth
	case BarcodePDF417:
		code, err = pdf417.Encode(content, 2)
		w = pdf417Width
	default:
		return nil, fmt.Errorf("render: unknown barcode kind %q", d.r.cfg.Barcode)
	}
	if err != nil {
		return nil, fmt.Errorf("render: encoding barcode: %w", err)
	}

	b := code.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("render: empty barcode")
	}
	h := w * float64(b.Dy()) / float64(b.Dx())
	if d.r.cfg.Barcode == BarcodePDF417 {
		h = math.Max(h, w/4)
	}

	scaled, err := barcode.Scale(code, b.Dx()*4, b.Dy()*4)
	if err != nil {
		return nil, fmt.Errorf("render: scaling barcode: %w", err)
	}
	// The engine reads 8 bit PNGs only.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("render: encoding barcode image: %w", err)
	}

	d.pdf.RegisterImageOptionsReader(barcodeImageName, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := d.err("barcode"); err != nil {
		return nil, err
	}
	return &barcodeImage{name: barcodeImageName, w: w, h: h}, nil
}

// drawBarcode draws img with its top left corner at x, top, where top is
// measured from the top of the page.
func (d *document) drawBarcode(img *barcodeImage, x, top float64) {
	d.pdf.ImageOptions(img.name, x, top, img.w, img.h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}
