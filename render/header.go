package render

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/lvillar/receipts/submission"
	"github.com/lvillar/receipts/tagging"
	"github.com/lvillar/receipts/texts"
)

// renderHeader draws the receipt header on the first page: the
// organisation and service name, who submitted and the reference number,
// with an optional barcode at the right edge.
func (d *document) renderHeader() {
	width := d.contentWidth()
	top := d.y

	var code *barcodeImage
	if d.r.cfg.Barcode != BarcodeNone {
		img, err := d.registerBarcode(d.barcodeContent())
		if err != nil {
			d.log.Warn("barcode skipped", zap.Error(err))
		} else {
			code = img
			width -= img.w + TextFieldMargin
		}
	}

	blocks := []block{d.textBlock(d.headerTitle(), d.r.bold, HeaderFontSize, width, tagging.H1)}
	if by := d.submittedBy(); by != "" {
		blocks = append(blocks, d.textBlock(by, d.r.regular, FontSize, width, tagging.P))
	}
	reference := d.str("reference_number") + " " + d.job.Instance.ReferenceNumber()
	blocks = append(blocks, d.textBlock(reference, d.r.regular, FontSize, width, tagging.P))
	d.tags.AddPart()
	for _, b := range blocks {
		b.draw()
	}
	if code != nil {
		x := d.pageW - Margin - code.w
		d.tags.Tag(tagging.Figure, func() {
			d.drawBarcode(code, x, d.pageH-top)
		})
		d.y = math.Min(d.y, top-code.h-TextFieldMargin)
	}
	d.y -= ComponentMargin
	d.fresh = false
}

// headerTitle is "<organisation> - <service>".
func (d *document) headerTitle() string {
	service := d.job.Instance.DisplayName(d.job.Language)
	if d.job.Texts.Has("ServiceName") {
		service = d.job.Texts.Lookup("ServiceName")
	}
	org := d.job.OrgName
	if org == "" {
		org = d.job.Instance.Org
	}
	if org == "" {
		return texts.RemoveIllegalChars(service)
	}
	return texts.RemoveIllegalChars(org + " - " + service)
}

// submittedBy names the user who submitted, and the party they submitted
// for when that is someone else.
func (d *document) submittedBy() string {
	user, party := d.job.UserParty, d.job.Party
	if user == nil {
		user = party
	}
	if user == nil {
		return ""
	}
	s := d.str("delivered_by") + " " + partyName(user)
	if party != nil && !user.Same(party) {
		s += " " + d.str("on_behalf_of") + " " + partyName(party)
	}
	return s
}

func partyName(p *submission.Party) string {
	switch {
	case p.Name != "":
		return p.Name
	case p.OrgNumber != "":
		return p.OrgNumber
	}
	return p.SSN
}

func (d *document) barcodeContent() string {
	base := strings.TrimSuffix(d.r.cfg.BarcodeBaseURL, "/")
	if base == "" {
		return d.job.Instance.ID
	}
	return base + "/" + d.job.Instance.ID
}
