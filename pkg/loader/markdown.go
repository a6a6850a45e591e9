package loader

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// ParseMarkdown renders markdown to HTML and parses the result as a page,
// so markdown links surface as anchors the same way HTML links do. A
// document that fails to render is treated as plain text.
func ParseMarkdown(src []byte) (*Page, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return &Page{Text: string(src)}, nil
	}
	return ParsePage(buf.String())
}
