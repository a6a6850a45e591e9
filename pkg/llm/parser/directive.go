// Package parser provides utilities for parsing structured content from LLM streams.
package parser

import (
	"errors"
	"regexp"
	"strings"

	"github.com/entrhq/scout/pkg/llm"
)

// Marker variants that open a navigation directive. The contract allows a
// single optional space between the brace and the action key.
const (
	directiveMarker       = `{"action": "navigate"`
	directiveMarkerSpaced = `{ "action": "navigate"`
)

type markerState int

const (
	markerFailed markerState = iota
	markerPossible
	markerComplete
)

// DirectiveParser parses streaming content and separates navigation
// directive JSON from regular message content. It maintains state across
// chunks so a marker split over several deltas is still recognized.
//
// Everything from a completed marker to the end of the stream is treated
// as directive content; drivers withhold it from display while the agent
// decides what to do with the accumulated completion.
type DirectiveParser struct {
	buffer      strings.Builder
	candidate   strings.Builder // potential marker content from '{' onward
	inCandidate bool            // saw '{' and the text so far still prefixes a marker
	inDirective bool
}

// NewDirectiveParser creates a new directive parser.
func NewDirectiveParser() *DirectiveParser {
	return &DirectiveParser{}
}

// Parse processes a content chunk and returns separate chunks for directive
// and message content. Either return may be nil when the chunk carried no
// content of that type.
func (p *DirectiveParser) Parse(content string) (directiveChunk, messageChunk *llm.StreamChunk) {
	if content == "" {
		return nil, nil
	}

	for _, ch := range content {
		if p.inDirective {
			p.buffer.WriteRune(ch)
			continue
		}

		if p.inCandidate {
			p.candidate.WriteRune(ch)
			switch checkMarker(p.candidate.String()) {
			case markerComplete:
				// The buffered text was a real marker: switch modes and
				// carry it into the directive output.
				p.inCandidate = false
				p.inDirective = true
				p.buffer.WriteString(p.candidate.String())
				p.candidate.Reset()
			case markerPossible:
				// Keep buffering
			default:
				directiveChunk, messageChunk = p.failCandidate(ch, directiveChunk, messageChunk)
			}
			continue
		}

		if ch == '{' {
			// Flush accumulated message content before buffering a
			// potential marker.
			if p.buffer.Len() > 0 {
				chunk := p.createChunk(p.buffer.String())
				p.buffer.Reset()
				directiveChunk, messageChunk = p.appendChunk(directiveChunk, messageChunk, chunk)
			}
			p.inCandidate = true
			p.candidate.Reset()
			p.candidate.WriteRune(ch)
			continue
		}

		p.buffer.WriteRune(ch)
	}

	// Emit any accumulated content at end of chunk
	if p.buffer.Len() > 0 {
		chunk := p.createChunk(p.buffer.String())
		p.buffer.Reset()
		directiveChunk, messageChunk = p.appendChunk(directiveChunk, messageChunk, chunk)
	}

	return directiveChunk, messageChunk
}

// failCandidate resolves a candidate that stopped matching the marker. The
// buffered text becomes message content; when the deviating rune was itself
// a brace it opens a fresh candidate.
func (p *DirectiveParser) failCandidate(ch rune, directiveChunk, messageChunk *llm.StreamChunk) (*llm.StreamChunk, *llm.StreamChunk) {
	text := p.candidate.String()
	p.candidate.Reset()
	p.inCandidate = false

	if ch == '{' {
		p.inCandidate = true
		p.candidate.WriteRune(ch)
		text = text[:len(text)-1]
	}

	if text != "" {
		chunk := p.createChunk(text)
		directiveChunk, messageChunk = p.appendChunk(directiveChunk, messageChunk, chunk)
	}
	return directiveChunk, messageChunk
}

// createChunk creates a chunk typed by the current parse mode.
func (p *DirectiveParser) createChunk(text string) *llm.StreamChunk {
	if text == "" {
		return nil
	}

	if p.inDirective {
		return &llm.StreamChunk{
			Content: text,
			Type:    llm.ContentTypeDirective,
		}
	}

	return &llm.StreamChunk{
		Content: text,
		Type:    llm.ContentTypeMessage,
	}
}

// appendChunk appends a new chunk to existing chunks based on type.
func (p *DirectiveParser) appendChunk(directiveChunk, messageChunk, newChunk *llm.StreamChunk) (*llm.StreamChunk, *llm.StreamChunk) {
	if newChunk == nil {
		return directiveChunk, messageChunk
	}

	if newChunk.Type == llm.ContentTypeDirective {
		if directiveChunk == nil {
			return newChunk, messageChunk
		}
		directiveChunk.Content += newChunk.Content
		return directiveChunk, messageChunk
	}

	if messageChunk == nil {
		return directiveChunk, newChunk
	}
	messageChunk.Content += newChunk.Content
	return directiveChunk, messageChunk
}

// checkMarker reports whether s is a complete marker, a viable prefix of
// one, or neither.
func checkMarker(s string) markerState {
	if s == directiveMarker || s == directiveMarkerSpaced {
		return markerComplete
	}
	if strings.HasPrefix(directiveMarker, s) || strings.HasPrefix(directiveMarkerSpaced, s) {
		return markerPossible
	}
	return markerFailed
}

// IsInDirective returns true if the parser has seen a directive marker.
func (p *DirectiveParser) IsInDirective() bool {
	return p.inDirective
}

// Flush returns any buffered content that hasn't been emitted yet.
// This should be called at the end of a stream to ensure all content is
// processed. An incomplete candidate flushes as message content.
func (p *DirectiveParser) Flush() (directiveChunk, messageChunk *llm.StreamChunk) {
	if p.inCandidate && p.candidate.Len() > 0 {
		text := p.candidate.String()
		p.candidate.Reset()
		p.inCandidate = false
		chunk := p.createChunk(text)
		directiveChunk, messageChunk = p.appendChunk(directiveChunk, messageChunk, chunk)
	}

	if p.buffer.Len() > 0 {
		text := p.buffer.String()
		p.buffer.Reset()
		chunk := p.createChunk(text)
		directiveChunk, messageChunk = p.appendChunk(directiveChunk, messageChunk, chunk)
	}

	return directiveChunk, messageChunk
}

// Reset resets the parser state for a new stream.
func (p *DirectiveParser) Reset() {
	p.buffer.Reset()
	p.candidate.Reset()
	p.inCandidate = false
	p.inDirective = false
}

// ErrMalformedDirective is returned when a completion contains a navigation
// marker but no recoverable url field.
var ErrMalformedDirective = errors.New("navigation directive present but url could not be recovered")

// urlPattern recovers the url field value from a directive. It is
// deliberately narrow: everything between the quotes following "url":.
var urlPattern = regexp.MustCompile(`"url":\s*"([^"]+)"`)

// ParseDirective scans a full completion for an embedded navigation
// directive and extracts its target.
//
// Detection is a literal substring check for the directive marker. When the
// marker is absent the completion is ordinary conversational text and
// (_, false, nil) is returned. When the marker is present but the url field
// cannot be recovered, ParseDirective reports ErrMalformedDirective rather
// than silently ignoring the attempt.
func ParseDirective(completion string) (url string, found bool, err error) {
	if !strings.Contains(completion, directiveMarker) && !strings.Contains(completion, directiveMarkerSpaced) {
		return "", false, nil
	}

	match := urlPattern.FindStringSubmatch(completion)
	if match == nil {
		return "", true, ErrMalformedDirective
	}

	return match[1], true, nil
}
