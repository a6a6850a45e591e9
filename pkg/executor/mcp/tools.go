package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/scout/pkg/agent"
	"github.com/entrhq/scout/pkg/types"
)

// sourcePreviewLimit caps the text excerpt current_source returns unless the
// caller asks for the full text.
const sourcePreviewLimit = 2000

// LoadURLTool loads a web page or document URL into the session.
type LoadURLTool struct {
	driver *driver
}

func (t *LoadURLTool) Name() string { return "load_url" }
func (t *LoadURLTool) Description() string {
	return `Load a web page or document URL into the research session.

The page's visible text is extracted, truncated to the context budget, and
becomes the source all following ask calls reason about. Loading replaces
the previous source and clears the conversation history.

Returns a summary of the loaded source: title, text size, link counts, and
whether the text was truncated to fit the budget.`
}
func (t *LoadURLTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute http(s) URL of the page or document to load",
			},
		},
		"required": []string{"url"},
	}
}
func (t *LoadURLTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	url := getStringArg(args, "url")
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}

	outcome, err := t.driver.drive(ctx, types.NewLoadURLInput(url))
	if err != nil {
		return nil, err
	}
	if outcome.errMsg != "" {
		return nil, fmt.Errorf("failed to load %s: %s", url, outcome.errMsg)
	}

	return map[string]interface{}{"source": summarizeResource(outcome.resource)}, nil
}

// LoadDocumentTool reads a local file into the session.
type LoadDocumentTool struct {
	driver *driver
}

func (t *LoadDocumentTool) Name() string { return "load_document" }
func (t *LoadDocumentTool) Description() string {
	return `Load a local document file into the research session.

Reads the file from the server's filesystem and extracts its text the same
way load_url does: PDF pages are concatenated, HTML is stripped to visible
text, anything else is treated as plain text. Loading replaces the previous
source and clears the conversation history.

Returns a summary of the loaded source.`
}
func (t *LoadDocumentTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the document on the machine running the server",
			},
		},
		"required": []string{"path"},
	}
}
func (t *LoadDocumentTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path := getStringArg(args, "path")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path) //nolint:gosec // loading operator-named files is the tool's purpose
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	outcome, err := t.driver.drive(ctx, types.NewLoadDocumentInput(filepath.Base(path), data))
	if err != nil {
		return nil, err
	}
	if outcome.errMsg != "" {
		return nil, fmt.Errorf("failed to load %s: %s", path, outcome.errMsg)
	}

	return map[string]interface{}{"source": summarizeResource(outcome.resource)}, nil
}

// AskTool drives one conversation turn against the loaded source.
type AskTool struct {
	driver *driver
}

func (t *AskTool) Name() string { return "ask" }
func (t *AskTool) Description() string {
	return `Ask the research model a question about the loaded source.

Drives one full conversation turn: the question, the source text, and the
conversation so far go to the model, and the assistant's reply comes back.
The model may instead decide to follow one of the source's links; in that
case the call returns a navigation notice plus the new source's summary,
and the conversation history is preserved across the navigation.

Requires a source to be loaded first (load_url or load_document).`
}
func (t *AskTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The question or instruction for the model",
			},
		},
		"required": []string{"question"},
	}
}
func (t *AskTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	question := strings.TrimSpace(getStringArg(args, "question"))
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	outcome, err := t.driver.drive(ctx, types.NewUserInput(question))
	if err != nil {
		return nil, err
	}
	if outcome.errMsg != "" {
		return nil, fmt.Errorf("turn failed: %s", outcome.errMsg)
	}

	// A directive turn has no assistant reply; the notice stands in for it,
	// mirroring what the session records.
	if outcome.navigatedTo != "" {
		result := map[string]interface{}{
			"reply":        fmt.Sprintf(agent.NavigationNoticeFormat, outcome.navigatedTo),
			"navigated_to": outcome.navigatedTo,
		}
		if outcome.resource != nil {
			result["source"] = summarizeResource(outcome.resource)
		}
		return result, nil
	}

	return map[string]interface{}{"reply": outcome.reply}, nil
}

// ListLinksTool lists the links of the current source.
type ListLinksTool struct {
	agent agent.Agent
}

func (t *ListLinksTool) Name() string { return "list_links" }
func (t *ListLinksTool) Description() string {
	return `List the links found on the currently loaded source.

Returns page links and file links (PDFs and other downloadable documents)
separately, each with its anchor label and absolute URL, in document order.
Reads the session directly without a model call.`
}
func (t *ListLinksTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ListLinksTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	resource := t.agent.GetSession().Resource()
	if resource == nil {
		return nil, fmt.Errorf("no source loaded: use load_url or load_document first")
	}

	return map[string]interface{}{
		"links": anchorList(resource.Links),
		"files": anchorList(resource.Files),
	}, nil
}

// CurrentSourceTool describes the loaded source.
type CurrentSourceTool struct {
	agent agent.Agent
}

func (t *CurrentSourceTool) Name() string { return "current_source" }
func (t *CurrentSourceTool) Description() string {
	return `Describe the currently loaded source.

Returns the source's identity (URL or document name), title, size, link
counts, and a text excerpt. Pass full_text=true to get the complete
budgeted text instead of the excerpt. Reads the session directly without a
model call.`
}
func (t *CurrentSourceTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"full_text": map[string]interface{}{
				"type":        "boolean",
				"description": "Return the complete budgeted text instead of a short excerpt",
			},
		},
	}
}
func (t *CurrentSourceTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	resource := t.agent.GetSession().Resource()
	if resource == nil {
		return nil, fmt.Errorf("no source loaded: use load_url or load_document first")
	}

	kind := "page"
	if resource.IsDocument() {
		kind = "document"
	}

	result := map[string]interface{}{
		"source_id":  resource.SourceID,
		"title":      resource.Title,
		"kind":       kind,
		"text_bytes": len(resource.Text),
		"links":      len(resource.Links),
		"files":      len(resource.Files),
		"truncated":  resource.Truncated,
	}

	if getBoolArg(args, "full_text", false) {
		result["text"] = resource.Text
	} else {
		result["excerpt"] = excerpt(resource.Text, sourcePreviewLimit)
	}

	return result, nil
}

// ResetTool clears the session.
type ResetTool struct {
	driver *driver
}

func (t *ResetTool) Name() string { return "reset" }
func (t *ResetTool) Description() string {
	return `Clear the research session.

Drops the loaded source and the conversation history. The next ask needs a
fresh load_url or load_document first.`
}
func (t *ResetTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ResetTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	outcome, err := t.driver.drive(ctx, types.NewResetInput())
	if err != nil {
		return nil, err
	}
	if outcome.errMsg != "" {
		return nil, fmt.Errorf("reset failed: %s", outcome.errMsg)
	}

	return map[string]interface{}{"reset": true}, nil
}

// summarizeResource renders a loaded-source summary for tool results.
func summarizeResource(info *types.ResourceInfo) map[string]interface{} {
	if info == nil {
		return nil
	}
	return map[string]interface{}{
		"source_id":  info.SourceID,
		"title":      info.Title,
		"text_bytes": info.TextBytes,
		"links":      info.LinkCount,
		"files":      info.FileCount,
		"truncated":  info.Truncated,
	}
}

// anchorList renders anchors with 1-based indexes matching the link table
// the model sees.
func anchorList(anchors []types.Anchor) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(anchors))
	for i, anchor := range anchors {
		list = append(list, map[string]interface{}{
			"index": i + 1,
			"label": anchor.Label,
			"url":   anchor.URL,
		})
	}
	return list
}

// excerpt returns the first limit runes of text.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func getStringArg(args map[string]interface{}, key string) string {
	val, ok := args[key]
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

func getBoolArg(args map[string]interface{}, key string, fallback bool) bool {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return fallback
}
