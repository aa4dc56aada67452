package texts

import (
	"bytes"
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy

	// Raw HTML is passed through so that the sanitizer, not the markdown
	// renderer, decides what survives.
	markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
)

func stripper() *bluemonday.Policy {
	stripOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// Clean reduces a text resource to plain text. Markdown and inline HTML are
// rendered and stripped, entities are decoded, control characters the PDF
// fonts cannot show are removed and blank lines are collapsed.
func Clean(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	plain := s
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err == nil {
		plain = buf.String()
	}
	plain = stripper().Sanitize(plain)
	plain = html.UnescapeString(plain)
	plain = RemoveIllegalChars(plain)

	var lines []string
	blank := false
	for _, line := range strings.Split(plain, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// RemoveIllegalChars drops control and format characters except newlines,
// and turns tabs and non-breaking spaces into plain spaces.
func RemoveIllegalChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t', r == '\u00a0':
			return ' '
		case r == '\r', unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}
