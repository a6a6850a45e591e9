package tui

import (
	"fmt"
	"strings"

	pkgtypes "github.com/entrhq/scout/pkg/types"
)

// handleAgentEvent processes events from the agent event stream.
// This is the main event handler that updates the UI based on agent activity.
//
//nolint:gocyclo
func (m *model) handleAgentEvent(event *pkgtypes.AgentEvent) {
	switch event.Type {
	case pkgtypes.EventTypeMessageStart:
		m.handleMessageStart()

	case pkgtypes.EventTypeMessageContent:
		if m.handleMessageContent(event.Content) {
			return // Exit early to preserve streaming viewport update
		}

	case pkgtypes.EventTypeMessageEnd:
		m.handleMessageEnd()

	case pkgtypes.EventTypeDirectiveStart:
		m.handleDirectiveStart()

	case pkgtypes.EventTypeDirectiveContent:
		// Directive JSON is withheld from the transcript
		return

	case pkgtypes.EventTypeDirectiveEnd:
		return

	case pkgtypes.EventTypeLoadStart:
		m.handleLoadStart(event)

	case pkgtypes.EventTypeResourceLoaded:
		m.handleResourceLoaded(event)

	case pkgtypes.EventTypeNavigationStart:
		m.handleNavigationStart(event)

	case pkgtypes.EventTypeNavigationEnd:
		m.handleNavigationEnd(event)

	case pkgtypes.EventTypeNavigationFailed:
		m.handleNavigationFailed(event)

	case pkgtypes.EventTypeAPICallStart:
		m.handleAPICallStart(event)

	case pkgtypes.EventTypeAPICallEnd:
		// Nothing to display; token usage arrives separately

	case pkgtypes.EventTypeUpdateBusy:
		m.handleUpdateBusy(event)

	case pkgtypes.EventTypeTurnEnd:
		m.handleTurnEnd()

	case pkgtypes.EventTypeError:
		debugLog.Printf("Processing EventTypeError: %v", event.Error)
		m.handleError(event)

	case pkgtypes.EventTypeTokenUsage:
		m.handleTokenUsage(event)

	case pkgtypes.EventTypeStateChange:
		debugLog.Printf("Session state changed to %s", event.State)
	}

	// Update viewport with current content
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

// Message event handlers

func (m *model) handleMessageStart() {
	m.messageBuffer.Reset()
}

func (m *model) handleMessageContent(content string) bool {
	if strings.TrimSpace(content) != "" && !m.hasMessageContentStarted {
		m.hasMessageContentStarted = true
	}

	// Buffer the message content
	m.messageBuffer.WriteString(content)

	// Stream message content as it arrives; markdown styling is applied once
	// the reply is complete
	streamed := wordWrap(m.messageBuffer.String(), m.replyWrapWidth())
	m.viewport.SetContent(m.content.String() + streamed)
	m.viewport.GotoBottom()

	return true
}

func (m *model) handleMessageEnd() {
	// Finalize the streamed reply into the transcript
	if m.messageBuffer.Len() > 0 && m.hasMessageContentStarted {
		reply := strings.TrimSpace(m.messageBuffer.String())
		m.lastReply = reply
		m.content.WriteString(m.renderReply(reply))
		m.content.WriteString("\n\n")
		m.hasMessageContentStarted = false
	}
	m.messageBuffer.Reset()
}

// renderReply formats a completed assistant reply for the transcript
func (m *model) renderReply(text string) string {
	if m.renderMarkdown {
		return renderMarkdownText(text, m.replyWrapWidth())
	}
	return wordWrap(text, m.replyWrapWidth())
}

// Directive and navigation handlers

func (m *model) handleDirectiveStart() {
	// The model is emitting a navigation directive; the JSON itself is never
	// shown, only the navigation events that follow
	m.currentLoadingMessage = "Reading navigation directive..."
}

func (m *model) handleLoadStart(event *pkgtypes.AgentEvent) {
	m.agentBusy = true
	if sourceID, ok := event.Metadata["source_id"].(string); ok && sourceID != "" {
		m.currentLoadingMessage = fmt.Sprintf("Fetching %s...", sourceID)
	} else {
		m.currentLoadingMessage = "Fetching source..."
	}
	m.recalculateLayout()
}

func (m *model) handleResourceLoaded(event *pkgtypes.AgentEvent) {
	resource := event.Resource
	if resource == nil {
		return
	}

	m.source = sourceState{
		loaded:        true,
		sourceID:      resource.SourceID,
		title:         resource.Title,
		textBytes:     resource.TextBytes,
		linkCount:     resource.LinkCount,
		fileCount:     resource.FileCount,
		truncated:     resource.Truncated,
		viaNavigation: resource.ViaNavigation,
	}

	title := resource.Title
	if title == "" {
		title = resource.SourceID
	}

	var card strings.Builder
	card.WriteString(fmt.Sprintf("📄 %s\n", title))
	if resource.Title != "" && resource.Title != resource.SourceID {
		card.WriteString(fmt.Sprintf("   %s\n", resource.SourceID))
	}
	detail := fmt.Sprintf("   %s of text • %d page links • %d file links",
		formatByteCount(resource.TextBytes), resource.LinkCount, resource.FileCount)
	if resource.Truncated {
		detail += " • truncated to fit budget"
	}
	card.WriteString(detail)

	m.content.WriteString(noticeStyle.Render(card.String()))
	m.content.WriteString("\n\n")
}

func (m *model) handleNavigationStart(event *pkgtypes.AgentEvent) {
	url := ""
	if event.Navigation != nil {
		url = event.Navigation.URL
	}
	m.agentBusy = true
	m.currentLoadingMessage = fmt.Sprintf("Navigating to %s...", url)
	m.recalculateLayout()

	formatted := formatEntry("🧭 ", fmt.Sprintf("Navigating to %s", url), directiveStyle, m.width, true)
	m.content.WriteString(formatted)
	m.content.WriteString("\n")
}

func (m *model) handleNavigationEnd(event *pkgtypes.AgentEvent) {
	if event.Navigation == nil {
		return
	}
	line := fmt.Sprintf("✅ Navigation successful: %s", event.Navigation.URL)
	if event.Navigation.Duration != "" {
		line += fmt.Sprintf(" (%s)", event.Navigation.Duration)
	}
	formatted := formatEntry("", line, noticeStyle, m.width, false)
	m.content.WriteString(formatted)
	m.content.WriteString("\n\n")
}

func (m *model) handleNavigationFailed(event *pkgtypes.AgentEvent) {
	if event.Navigation == nil {
		return
	}
	line := fmt.Sprintf("✗ Navigation to %s failed: %s (previous page still loaded)",
		event.Navigation.URL, event.Navigation.ErrorMessage)
	formatted := formatEntry("", line, errorStyle, m.width, false)
	m.content.WriteString(formatted)
	m.content.WriteString("\n\n")
}

// Error and state handlers

func (m *model) handleError(event *pkgtypes.AgentEvent) {
	m.content.WriteString(errorStyle.Render(fmt.Sprintf("  ❌ Error: %v", event.Error)))
	m.content.WriteString("\n\n")
}

func (m *model) handleTurnEnd() {
	// Turn end - clear busy state
	m.agentBusy = false
	m.recalculateLayout()
}

func (m *model) handleUpdateBusy(event *pkgtypes.AgentEvent) {
	wasBusy := m.agentBusy
	m.agentBusy = event.IsBusy
	if m.agentBusy {
		// Pick a random loading message when becoming busy
		m.currentLoadingMessage = getRandomLoadingMessage()
	}
	// Recalculate layout if busy state changed
	if wasBusy != m.agentBusy {
		m.recalculateLayout()
	}
}

// API and token handlers

func (m *model) handleAPICallStart(event *pkgtypes.AgentEvent) {
	if event.APICallInfo == nil {
		return
	}
	m.currentContextTokens = event.APICallInfo.ContextTokens
	m.maxContextTokens = event.APICallInfo.MaxContextTokens
	if event.APICallInfo.Attempt > 1 {
		m.currentLoadingMessage = fmt.Sprintf("Retrying completion (attempt %d)...", event.APICallInfo.Attempt)
	}
}

func (m *model) handleTokenUsage(event *pkgtypes.AgentEvent) {
	if event.TokenUsage != nil {
		m.totalPromptTokens += event.TokenUsage.PromptTokens
		m.totalCompletionTokens += event.TokenUsage.CompletionTokens
		m.totalTokens += event.TokenUsage.TotalTokens
	}
}
