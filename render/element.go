package render

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lvillar/receipts/layout"
	"github.com/lvillar/receipts/options"
	"github.com/lvillar/receipts/tagging"
	"github.com/lvillar/receipts/texts"
)

// renderLayout draws the visible top-level components of one layout,
// expanding repeating groups in place.
func (d *document) renderLayout(ctx context.Context, key string, elements []layout.Element) error {
	settings := d.job.Settings
	x := layout.NewExpander(elements, d.job.Data)
	x.Dangling = func(groupID, childID string) {
		d.log.Warn("group refers to missing component",
			zap.String("layout", key),
			zap.String("group", groupID),
			zap.String("child", childID))
	}
	x.Include = settings.IncludeComponent

	for _, e := range layout.FilterTopLevel(elements) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.Renderable() || !settings.IncludeComponent(e.ID) {
			continue
		}
		if !e.IsGroup() {
			if err := d.renderElement(e, e.ID); err != nil {
				return err
			}
			continue
		}
		err := x.Walk(e, func(in layout.Instance) error {
			if !in.Renderable() || !settings.IncludeComponent(in.ID) || !settings.IncludeComponent(in.InstanceID) {
				return nil
			}
			return d.renderElement(in.Element, in.InstanceID)
		})
		if err != nil {
			return err
		}
	}
	d.log.Debug("rendered layout", zap.String("layout", key), zap.Int("pages", d.pdf.PageNo()))
	return nil
}

// renderElement measures a component, starts a new page when it does not
// fit below the cursor and draws it. A component taller than a page is
// drawn from the top of a fresh page.
func (d *document) renderElement(e layout.Element, instanceID string) error {
	blocks := d.plan(e, instanceID)
	if len(blocks) == 0 {
		return nil
	}
	if d.y-totalHeight(blocks) < Margin && !d.fresh {
		d.newPage()
	}
	d.tags.AddPart()
	for _, b := range blocks {
		b.draw()
	}
	if !e.Is(layout.TypeParagraph) && !e.Is(layout.TypeHeader) {
		d.y -= ComponentMargin
	}
	d.fresh = false
	return d.err(fmt.Sprintf("component %s", instanceID))
}

// plan returns the blocks of a component: its title, its description and
// the content for its type. Headers and paragraphs have no content.
func (d *document) plan(e layout.Element, instanceID string) []block {
	width := d.contentWidth()

	var blocks []block
	if title := d.text(e.Title()); title != "" {
		blocks = append(blocks, d.textBlock(title, d.r.bold, FontSize, width, tagging.H2))
	}
	if desc := d.text(e.Description()); desc != "" {
		blocks = append(blocks, d.textBlock(desc, d.r.regular, FontSize, width, tagging.P))
	}
	if e.Is(layout.TypeHeader) || e.Is(layout.TypeParagraph) {
		return blocks
	}

	switch {
	case e.Is(layout.TypeFileUpload), e.Is(layout.TypeFileUploadTag):
		if files := d.job.Instance.Attachments(e.ID); len(files) > 0 {
			blocks = append(blocks, d.listBlock(files))
		}
	case e.Is(layout.TypeAttachmentList):
		if files := d.job.Instance.Attachments(e.DataTypeIDs...); len(files) > 0 {
			blocks = append(blocks, d.listBlock(files))
		}
	case e.Is(layout.TypeAddress):
		blocks = append(blocks, d.addressBlocks(e, instanceID)...)
	default:
		if e.Binding(layout.BindingSimple) != "" {
			blocks = append(blocks, d.boxBlock(instanceID, d.value(e)))
		}
	}
	return blocks
}

// value returns the display text of a simple binding: dates are formatted
// for the receipt language and option codes are replaced by their labels.
func (d *document) value(e layout.Element) string {
	raw := d.job.Data.Value(e.Binding(layout.BindingSimple))
	switch {
	case e.Is(layout.TypeDatepicker):
		return texts.FormatDate(raw, d.job.Language)
	case e.HasOptions() || isOptionType(e):
		return options.Display(raw, e, d.job.Options, d.job.Texts.Lookup)
	}
	return raw
}

func isOptionType(e layout.Element) bool {
	switch strings.ToLower(e.Type) {
	case "checkboxes", "dropdown", "radiobuttons", "likert":
		return true
	}
	return false
}

// addressField is one sub-field of an address component.
type addressField struct {
	binding string
	label   string
	helper  string
}

var (
	addressFields = []addressField{
		{binding: layout.BindingAddress, label: "address"},
		{binding: layout.BindingZipCode, label: "zip_code"},
		{binding: layout.BindingPostPlace, label: "post_place"},
	}
	addressDetailFields = []addressField{
		{binding: layout.BindingCareOf, label: "care_of"},
		{binding: layout.BindingHouseNumber, label: "house_number", helper: "house_number_helper"},
	}
)

// addressBlocks lays out the address sub-fields as labelled boxes separated
// by the component margin. Care-of and house number are only part of the
// full form.
func (d *document) addressBlocks(e layout.Element, instanceID string) []block {
	fields := addressFields
	if !e.Simplified {
		fields = append(fields[:len(fields):len(fields)], addressDetailFields...)
	}
	width := d.contentWidth()
	var blocks []block
	for i, f := range fields {
		if i > 0 {
			blocks = append(blocks, d.spaceBlock(ComponentMargin))
		}
		blocks = append(blocks, d.textBlock(d.str(f.label), d.r.bold, FontSize, width, tagging.H2))
		if f.helper != "" {
			blocks = append(blocks, d.textBlock(d.str(f.helper), d.r.regular, FontSize, width, tagging.P))
		}
		value := d.job.Data.Value(e.Binding(f.binding))
		blocks = append(blocks, d.boxBlock(instanceID+"."+f.binding, value))
	}
	return blocks
}
