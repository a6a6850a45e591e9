package types

import "strings"

// DocumentSourcePrefix marks SourceIDs that refer to an operator-supplied
// document rather than a fetched URL.
const DocumentSourcePrefix = "document:"

// Anchor is a labeled link discovered on a loaded page, href already
// resolved to an absolute URL.
type Anchor struct {
	// Label is the trimmed anchor text, falling back to the URL when empty.
	Label string `json:"label"`

	// URL is the absolute target of the anchor.
	URL string `json:"url"`
}

// Resource is a fully loaded source: the budget-truncated text plus the
// classified anchors of the page it came from. Loads build a Resource
// completely or not at all; a partially fetched page never becomes one.
type Resource struct {
	// SourceID is the URL the resource was fetched from, or a
	// "document:<name>" sentinel for operator-supplied documents.
	SourceID string `json:"source_id"`

	// Title is the page title when one was found, otherwise empty.
	Title string `json:"title,omitempty"`

	// Text is the extracted visible text, already truncated to budget.
	Text string `json:"text"`

	// Links are the non-document anchors in document order, unlimited;
	// the prompt layer applies its own cap.
	Links []Anchor `json:"links,omitempty"`

	// Files are anchors whose targets look like downloadable documents
	// (.pdf, .txt, .csv, .md, .json, .docx), in document order.
	Files []Anchor `json:"files,omitempty"`

	// Truncated indicates the extracted text exceeded the budget.
	Truncated bool `json:"truncated,omitempty"`
}

// DocumentSourceID builds the sentinel SourceID for a loaded document.
func DocumentSourceID(name string) string {
	return DocumentSourcePrefix + name
}

// IsDocument returns true if the resource came from an operator-supplied
// document rather than a fetched URL.
func (r *Resource) IsDocument() bool {
	return strings.HasPrefix(r.SourceID, DocumentSourcePrefix)
}
