package render

import (
	"fmt"
	"sync"

	"github.com/lvillar/receipts/metrics"
)

// trueTypeFamily is the engine family name TrueType fonts are registered
// under.
const trueTypeFamily = "receipt"

// face pairs an engine font with the metrics used to lay it out.
type face struct {
	family, style string
	metrics       metrics.Font
	// encode converts UTF-8 text to what the engine expects for the font.
	encode func(string) string
}

var (
	coreOnce    sync.Once
	coreRegular *face
	coreBold    *face
	coreErr     error
)

// coreFaces returns the Helvetica faces. Their metrics are loaded once and
// shared.
func coreFaces() (regular, bold *face, err error) {
	coreOnce.Do(func() {
		var reg, b *metrics.CoreFont
		if reg, coreErr = metrics.Core("Helvetica", ""); coreErr != nil {
			return
		}
		if b, coreErr = metrics.Core("Helvetica", "B"); coreErr != nil {
			return
		}
		coreRegular = &face{family: "Helvetica", style: "", metrics: reg, encode: reg.Encode}
		coreBold = &face{family: "Helvetica", style: "B", metrics: b, encode: b.Encode}
	})
	if coreErr != nil {
		return nil, nil, fmt.Errorf("render: %w", coreErr)
	}
	return coreRegular, coreBold, nil
}

func trueTypeFace(style string, ttf []byte) (*face, error) {
	m, err := metrics.TrueType(ttf)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &face{
		family:  trueTypeFamily,
		style:   style,
		metrics: m,
		encode:  func(s string) string { return s },
	}, nil
}
