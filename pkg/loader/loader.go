// Package loader turns remote URLs and local documents into normalized
// resources: budget-capped plain text plus classified anchor lists. Every
// load is atomic; callers either receive a fully populated resource or an
// error, never a partial one.
package loader

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/entrhq/scout/pkg/types"
)

// resource kinds used for extraction dispatch
const (
	kindHTML     = "html"
	kindPDF      = "pdf"
	kindMarkdown = "markdown"
	kindText     = "text"
)

// Loader produces resources from URLs and uploaded documents.
type Loader struct {
	fetcher    *Fetcher
	textBudget int
	extensions []string
}

// Option is a function that configures a Loader.
type Option func(*Loader)

// WithFetcher replaces the default fetcher.
func WithFetcher(fetcher *Fetcher) Option {
	return func(l *Loader) {
		if fetcher != nil {
			l.fetcher = fetcher
		}
	}
}

// WithTextBudget sets the character cap applied to extracted text.
func WithTextBudget(budget int) Option {
	return func(l *Loader) {
		if budget > 0 {
			l.textBudget = budget
		}
	}
}

// WithFileExtensions sets the path suffixes that classify an anchor as a
// file reference.
func WithFileExtensions(extensions []string) Option {
	return func(l *Loader) {
		if len(extensions) > 0 {
			l.extensions = extensions
		}
	}
}

// New creates a Loader with the default budget, extension set, and fetcher.
func New(opts ...Option) *Loader {
	l := &Loader{
		fetcher:    NewFetcher(),
		textBudget: DefaultTextBudget,
		extensions: DefaultFileExtensions,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TextBudget returns the character cap applied to extracted text.
func (l *Loader) TextBudget() int {
	return l.textBudget
}

// LoadURL fetches a URL and extracts it into a resource. The extraction
// path is chosen by the URL's path extension first and the response
// Content-Type second, defaulting to HTML.
func (l *Loader) LoadURL(ctx context.Context, rawURL string) (*types.Resource, error) {
	body, contentType, err := l.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	switch resourceKind(rawURL, contentType) {
	case kindPDF:
		pages, err := ExtractPDFPages(rawURL, body)
		if err != nil {
			return nil, err
		}
		return l.build(rawURL, "", joinPages(pages), nil, nil), nil

	case kindMarkdown:
		page, err := ParseMarkdown(body)
		if err != nil {
			return nil, &ExtractError{Name: rawURL, Err: err}
		}
		links, files := ClassifyAnchors(rawURL, page.Anchors, l.extensions)
		return l.build(rawURL, page.Title, page.Text, links, files), nil

	case kindText:
		return l.build(rawURL, "", string(body), nil, nil), nil

	default:
		page, err := ParsePage(string(body))
		if err != nil {
			return nil, &ExtractError{Name: rawURL, Err: err}
		}
		links, files := ClassifyAnchors(rawURL, page.Anchors, l.extensions)
		return l.build(rawURL, page.Title, page.Text, links, files), nil
	}
}

// LoadDocument extracts an uploaded document into a resource. Document
// resources carry no links or files; there is no page to navigate from.
func (l *Loader) LoadDocument(name string, data []byte) (*types.Resource, error) {
	sourceID := types.DocumentSourceID(name)

	var text string
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		pages, err := ExtractPDFPages(name, data)
		if err != nil {
			return nil, err
		}
		text = joinPages(pages)

	case ".md":
		page, err := ParseMarkdown(data)
		if err != nil {
			return nil, &ExtractError{Name: name, Err: err}
		}
		text = page.Text

	case ".txt", ".csv", ".json":
		text = string(data)

	default:
		return nil, &ExtractError{Name: name, Err: fmt.Errorf("unsupported document type %q", path.Ext(name))}
	}

	return l.build(sourceID, name, text, nil, nil), nil
}

// build assembles a resource, applying the text budget.
func (l *Loader) build(sourceID, title, text string, links, files []types.Anchor) *types.Resource {
	return &types.Resource{
		SourceID:  sourceID,
		Title:     title,
		Text:      Truncate(text, l.textBudget),
		Links:     links,
		Files:     files,
		Truncated: len(text) > l.textBudget,
	}
}

// joinPages concatenates page texts, each followed by a newline. An empty
// page still contributes its separator so page boundaries stay visible.
func joinPages(pages []string) string {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// resourceKind picks the extraction path for a fetched URL.
func resourceKind(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		switch path.Ext(strings.ToLower(u.Path)) {
		case ".pdf":
			return kindPDF
		case ".md":
			return kindMarkdown
		case ".txt", ".csv", ".json":
			return kindText
		}
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return kindPDF
	case strings.Contains(ct, "markdown"):
		return kindMarkdown
	case strings.Contains(ct, "text/plain"),
		strings.Contains(ct, "text/csv"),
		strings.Contains(ct, "application/json"):
		return kindText
	}
	return kindHTML
}
