package parser

import (
	"errors"
	"testing"

	"github.com/entrhq/scout/pkg/llm"
)

// collect feeds chunks through the parser and flushes, concatenating
// directive and message output.
func collect(p *DirectiveParser, chunks ...string) (directive, message string) {
	appendChunks := func(d, m *llm.StreamChunk) {
		if d != nil {
			directive += d.Content
		}
		if m != nil {
			message += m.Content
		}
	}
	for _, c := range chunks {
		appendChunks(p.Parse(c))
	}
	appendChunks(p.Flush())
	return directive, message
}

func TestDirectiveParser_PlainMessage(t *testing.T) {
	p := NewDirectiveParser()

	directiveChunk, messageChunk := p.Parse("The page covers three topics.")
	if directiveChunk != nil {
		t.Errorf("expected no directive chunk, got %q", directiveChunk.Content)
	}
	if messageChunk == nil {
		t.Fatal("expected a message chunk")
	}
	if messageChunk.Content != "The page covers three topics." {
		t.Errorf("unexpected message content: %q", messageChunk.Content)
	}
	if messageChunk.Type != llm.ContentTypeMessage {
		t.Errorf("expected message type, got %q", messageChunk.Type)
	}
	if p.IsInDirective() {
		t.Error("parser should not be in directive mode")
	}
}

func TestDirectiveParser_EmptyChunk(t *testing.T) {
	p := NewDirectiveParser()

	directiveChunk, messageChunk := p.Parse("")
	if directiveChunk != nil || messageChunk != nil {
		t.Error("empty chunk should produce no output")
	}
}

func TestDirectiveParser_DirectiveInSingleChunk(t *testing.T) {
	p := NewDirectiveParser()

	directive, message := collect(p, `I'll open that page. {"action": "navigate", "url": "https://example.com/docs"}`)

	if message != "I'll open that page. " {
		t.Errorf("unexpected message content: %q", message)
	}
	if directive != `{"action": "navigate", "url": "https://example.com/docs"}` {
		t.Errorf("unexpected directive content: %q", directive)
	}
	if !p.IsInDirective() {
		t.Error("parser should be in directive mode after a marker")
	}
}

func TestDirectiveParser_MarkerSplitAcrossChunks(t *testing.T) {
	p := NewDirectiveParser()

	directive, message := collect(p,
		`Let me check. {"ac`,
		`tion": "nav`,
		`igate", "url": "https://example.com"}`,
	)

	if message != "Let me check. " {
		t.Errorf("unexpected message content: %q", message)
	}
	if directive != `{"action": "navigate", "url": "https://example.com"}` {
		t.Errorf("unexpected directive content: %q", directive)
	}
}

func TestDirectiveParser_SpacedMarkerVariant(t *testing.T) {
	p := NewDirectiveParser()

	directive, message := collect(p, `{ "action": "navigate", "url": "https://example.com"}`)

	if message != "" {
		t.Errorf("expected no message content, got %q", message)
	}
	if directive != `{ "action": "navigate", "url": "https://example.com"}` {
		t.Errorf("unexpected directive content: %q", directive)
	}
}

func TestDirectiveParser_NonDirectiveJSON(t *testing.T) {
	p := NewDirectiveParser()

	directive, message := collect(p, `Here is a sample: {"foo": 1} and more text.`)

	if directive != "" {
		t.Errorf("expected no directive content, got %q", directive)
	}
	if message != `Here is a sample: {"foo": 1} and more text.` {
		t.Errorf("unexpected message content: %q", message)
	}
}

func TestDirectiveParser_BraceRestartsCandidate(t *testing.T) {
	p := NewDirectiveParser()

	directive, message := collect(p, `{{"action": "navigate", "url": "https://example.com"}`)

	if message != "{" {
		t.Errorf("unexpected message content: %q", message)
	}
	if directive != `{"action": "navigate", "url": "https://example.com"}` {
		t.Errorf("unexpected directive content: %q", directive)
	}
}

func TestDirectiveParser_ContentAfterMarkerStaysDirective(t *testing.T) {
	p := NewDirectiveParser()

	_, _ = p.Parse(`{"action": "navigate", "url": "https://example.com"}`)
	directiveChunk, messageChunk := p.Parse(` trailing tokens`)

	if messageChunk != nil {
		t.Errorf("post-marker content should be directive, got message %q", messageChunk.Content)
	}
	if directiveChunk == nil || directiveChunk.Content != " trailing tokens" {
		t.Errorf("unexpected directive chunk: %+v", directiveChunk)
	}
}

func TestDirectiveParser_FlushIncompleteCandidate(t *testing.T) {
	p := NewDirectiveParser()

	directiveChunk, messageChunk := p.Parse(`{"action": "nav`)
	if directiveChunk != nil || messageChunk != nil {
		t.Error("partial marker should be buffered, not emitted")
	}

	directiveChunk, messageChunk = p.Flush()
	if directiveChunk != nil {
		t.Errorf("incomplete candidate should flush as message, got directive %q", directiveChunk.Content)
	}
	if messageChunk == nil || messageChunk.Content != `{"action": "nav` {
		t.Errorf("unexpected flushed message: %+v", messageChunk)
	}
}

func TestDirectiveParser_Reset(t *testing.T) {
	p := NewDirectiveParser()

	_, _ = p.Parse(`{"action": "navigate", "url": "https://example.com"}`)
	if !p.IsInDirective() {
		t.Fatal("parser should be in directive mode")
	}

	p.Reset()
	if p.IsInDirective() {
		t.Error("reset should clear directive mode")
	}

	_, messageChunk := p.Parse("Fresh stream.")
	if messageChunk == nil || messageChunk.Content != "Fresh stream." {
		t.Errorf("unexpected message after reset: %+v", messageChunk)
	}
}

func TestParseDirective(t *testing.T) {
	t.Run("NoMarker", func(t *testing.T) {
		url, found, err := ParseDirective("Just a conversational reply.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("plain text should not report a directive")
		}
		if url != "" {
			t.Errorf("expected empty url, got %q", url)
		}
	})

	t.Run("MarkerWithURL", func(t *testing.T) {
		completion := `Opening now. {"action": "navigate", "url": "https://example.com/pricing"}`
		url, found, err := ParseDirective(completion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found {
			t.Fatal("expected directive to be found")
		}
		if url != "https://example.com/pricing" {
			t.Errorf("unexpected url: %q", url)
		}
	})

	t.Run("SpacedMarker", func(t *testing.T) {
		completion := `{ "action": "navigate", "url": "https://example.com"}`
		url, found, err := ParseDirective(completion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found || url != "https://example.com" {
			t.Errorf("expected spaced marker to parse, got url=%q found=%v", url, found)
		}
	})

	t.Run("WhitespaceAroundURLColon", func(t *testing.T) {
		completion := `{"action": "navigate", "url":   "https://example.com/a"}`
		url, found, err := ParseDirective(completion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found || url != "https://example.com/a" {
			t.Errorf("unexpected result: url=%q found=%v", url, found)
		}
	})

	t.Run("MarkerWithoutURL", func(t *testing.T) {
		completion := `{"action": "navigate"}`
		_, found, err := ParseDirective(completion)
		if !found {
			t.Fatal("marker should be detected even without a url")
		}
		if !errors.Is(err, ErrMalformedDirective) {
			t.Errorf("expected ErrMalformedDirective, got %v", err)
		}
	})
}
