package loader

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Page is the parsed representation of an HTML document: its title, its
// visible text with whitespace collapsed, and every anchor in document
// order.
type Page struct {
	Title   string
	Text    string
	Anchors []RawAnchor
}

// noTextLabel stands in for anchors whose element contains no visible text.
const noTextLabel = "[No Text]"

// ParsePage parses raw HTML into a Page.
//
// Anchors are collected from the full tree first, so navigation menus and
// footers still contribute links. Text is then extracted with the
// boilerplate regions (script, style, nav, footer, header) skipped so they
// do not pollute the character budget. noscript bodies are skipped too
// because the parser surfaces their contents as literal text.
func ParsePage(rawHTML string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{
		Title:   extractTitle(doc),
		Anchors: collectAnchors(doc),
		Text:    extractText(doc),
	}, nil
}

// collectAnchors walks the full tree and returns every <a href> in document
// order. Anchors without visible text get a placeholder label.
func collectAnchors(doc *html.Node) []RawAnchor {
	var anchors []RawAnchor
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			if href, ok := attrValue(n, "href"); ok {
				label := nodeText(n)
				if label == "" {
					label = noTextLabel
				}
				anchors = append(anchors, RawAnchor{Label: label, Href: href})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return anchors
}

// extractText returns the document's visible text with runs of whitespace
// collapsed to single spaces.
func extractText(doc *html.Node) string {
	var parts []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && isStrippedElement(strings.ToLower(n.Data)) {
			return
		}
		if n.Type == html.TextNode {
			for _, field := range strings.Fields(n.Data) {
				parts = append(parts, field)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return strings.Join(parts, " ")
}

// nodeText returns the concatenated visible text under a node, trimmed and
// whitespace-collapsed.
func nodeText(n *html.Node) string {
	var parts []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			for _, field := range strings.Fields(n.Data) {
				parts = append(parts, field)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(parts, " ")
}

// attrValue returns the value of the named attribute on the node.
func attrValue(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

// isStrippedElement returns true for elements whose contents are excluded
// from text extraction.
func isStrippedElement(tagName string) bool {
	stripped := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"nav":      true,
		"footer":   true,
		"header":   true,
	}
	return stripped[tagName]
}

// extractTitle extracts the page title from the document
func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if title != "" {
				return
			}
		}
	}
	traverse(doc)
	return title
}
