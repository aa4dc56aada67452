package render

import (
	"github.com/lvillar/receipts/form"
	"github.com/lvillar/receipts/metrics"
	"github.com/lvillar/receipts/tagging"
)

// A block is a measured piece of a component. Blocks are measured before
// any of them is drawn so that the component can be moved to a new page as
// a whole; draw must move the cursor down by exactly height.
type block struct {
	height float64
	draw   func()
}

func totalHeight(blocks []block) float64 {
	var h float64
	for _, b := range blocks {
		h += b.height
	}
	return h
}

// textBlock is text wrapped to width and drawn from the cursor at the left
// margin, one line per leading step, followed by the text field margin.
func (d *document) textBlock(s string, f *face, size, width float64, role tagging.Role) block {
	lines := metrics.WrapToLines(s, f.metrics, size, width)
	leading := 1.2 * size
	return block{
		height: float64(len(lines))*leading + TextFieldMargin,
		draw: func() {
			d.tags.Tag(role, func() {
				base := d.y - metrics.FontHeight(f.metrics, size)
				for _, line := range lines {
					d.drawLine(f, size, Margin, base, line)
					base -= leading
				}
			})
			d.y -= float64(len(lines))*leading + TextFieldMargin
		},
	}
}

// boxBlock is a bordered box spanning the content width with value wrapped
// inside it. With form fields enabled the value is carried by a read-only
// field over the box instead of being drawn.
func (d *document) boxBlock(name, value string) block {
	f := d.r.regular
	width := d.contentWidth()
	inner := width - 2*TextFieldMargin
	h := metrics.HeightForTextBox(value, f.metrics, FontSize, inner, Leading)
	lines := metrics.WrapToLines(value, f.metrics, FontSize, inner)
	return block{
		height: h + TextFieldMargin,
		draw: func() {
			top := d.y
			d.tags.Tag(tagging.P, func() {
				d.pdf.Rect(Margin, d.pageH-top, width, h, "D")
				if d.fields != nil {
					return
				}
				base := top - (Leading - FontSize) - metrics.FontHeight(f.metrics, FontSize)
				step := metrics.LineStep(f.metrics, FontSize)
				for _, line := range lines {
					d.drawLine(f, FontSize, Margin+TextFieldMargin, base, line)
					base -= step
				}
			})
			if d.fields != nil {
				d.fields.Add(form.Field{
					Name:      name,
					Page:      d.pdf.PageNo(),
					X:         Margin,
					Y:         top - h,
					W:         width,
					H:         h,
					Value:     value,
					FontSize:  FontSize,
					MultiLine: len(lines) > 1,
				})
			}
			d.y -= h + TextFieldMargin
		},
	}
}

// listBlock is a bulleted list of items, one line each.
func (d *document) listBlock(items []string) block {
	f := d.r.regular
	return block{
		height: float64(len(items)) * Leading,
		draw: func() {
			d.tags.Tag(tagging.L, func() {
				base := d.y - metrics.FontHeight(f.metrics, FontSize)
				for _, item := range items {
					d.drawLine(f, FontSize, Margin, base, "• "+item)
					base -= Leading
				}
			})
			d.y -= float64(len(items)) * Leading
		},
	}
}

// spaceBlock moves the cursor down by h.
func (d *document) spaceBlock(h float64) block {
	return block{height: h, draw: func() { d.y -= h }}
}
