package loader

import (
	"net/url"
	"strings"

	"github.com/entrhq/scout/pkg/types"
)

// DefaultFileExtensions are the target path suffixes that mark an anchor as
// a downloadable file reference rather than a navigable link.
var DefaultFileExtensions = []string{".pdf", ".txt", ".csv", ".md", ".json", ".docx"}

// RawAnchor is an anchor as it appears in the source document, before its
// target has been resolved against the page URL.
type RawAnchor struct {
	Label string
	Href  string
}

// ClassifyAnchors resolves raw anchors against the base URL and partitions
// them into navigable links and file references. An anchor lands in files
// when its resolved URL ends in one of the given extensions, compared
// case-insensitively; everything else is a link. Both slices preserve
// document order and no deduplication is performed. Anchors with an empty
// target, a pure fragment, or a script pseudo-URL are dropped.
func ClassifyAnchors(baseURL string, anchors []RawAnchor, extensions []string) (links, files []types.Anchor) {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	for _, a := range anchors {
		href := a.Href
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}

		resolved := href
		if base != nil {
			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			resolved = base.ResolveReference(ref).String()
		}

		anchor := types.Anchor{Label: a.Label, URL: resolved}
		if isFileURL(resolved, extensions) {
			files = append(files, anchor)
		} else {
			links = append(links, anchor)
		}
	}

	return links, files
}

// isFileURL reports whether the resolved URL ends in one of the target
// extensions, ignoring case.
func isFileURL(resolved string, extensions []string) bool {
	lower := strings.ToLower(resolved)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
