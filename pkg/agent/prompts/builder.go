// Package prompts provides system prompt construction for the research
// agent. The system turn is rebuilt from the live resource on every
// completion call and never enters stored history, so configuration changes
// take effect on the next turn without a reload.
package prompts

import (
	"fmt"
	"strings"

	"github.com/entrhq/scout/pkg/types"
)

// DefaultMaxLinks caps how many links are surfaced to the model in a
// single prompt.
const DefaultMaxLinks = 50

// PromptBuilder constructs the system prompt for a conversation turn.
type PromptBuilder struct {
	customInstructions string
	resource           *types.Resource
	maxLinks           int
}

// NewPromptBuilder creates a new prompt builder with default settings.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		maxLinks: DefaultMaxLinks,
	}
}

// WithCustomInstructions adds custom user-provided instructions.
func (pb *PromptBuilder) WithCustomInstructions(instructions string) *PromptBuilder {
	pb.customInstructions = instructions
	return pb
}

// WithResource sets the loaded resource whose text and links the prompt
// carries.
func (pb *PromptBuilder) WithResource(resource *types.Resource) *PromptBuilder {
	pb.resource = resource
	return pb
}

// WithMaxLinks overrides the link cap.
func (pb *PromptBuilder) WithMaxLinks(max int) *PromptBuilder {
	if max > 0 {
		pb.maxLinks = max
	}
	return pb
}

// Build constructs the complete system prompt by assembling all sections.
// Repeated calls with the same inputs produce identical output.
func (pb *PromptBuilder) Build() string {
	var builder strings.Builder

	if pb.customInstructions != "" {
		builder.WriteString("<custom_instructions>\n")
		builder.WriteString(pb.customInstructions)
		builder.WriteString("\n</custom_instructions>\n\n")
	}

	builder.WriteString(ResearchAssistantPrompt)
	builder.WriteString("\n\n")

	builder.WriteString(NavigationContractPrompt)
	builder.WriteString("\n\n")

	if pb.resource != nil {
		builder.WriteString(SourceTextHeader)
		builder.WriteString("\n")
		builder.WriteString(pb.resource.Text)
		builder.WriteString("\n")

		if len(pb.resource.Links) > 0 {
			builder.WriteString("\n")
			builder.WriteString(LinksHeader)
			builder.WriteString("\n")
			builder.WriteString(FormatLinkTable(pb.resource.Links, pb.maxLinks))
		}
	}

	return builder.String()
}

// FormatLinkTable renders up to max links as "- label: url" lines in
// document order. Links beyond the cap are invisible to the model.
func FormatLinkTable(links []types.Anchor, max int) string {
	if max <= 0 || len(links) == 0 {
		return ""
	}
	if len(links) > max {
		links = links[:max]
	}

	var builder strings.Builder
	for _, link := range links {
		fmt.Fprintf(&builder, "- %s: %s\n", link.Label, link.URL)
	}
	return builder.String()
}

// BuildMessages creates a complete message list: the system turn followed by
// the conversation history. Stored system messages are skipped so the fresh
// system turn is never duplicated.
func BuildMessages(systemPrompt string, history []*types.Message) []*types.Message {
	messages := make([]*types.Message, 0, len(history)+1)

	messages = append(messages, types.NewSystemMessage(systemPrompt))

	for _, msg := range history {
		if msg.Role != types.RoleSystem {
			messages = append(messages, msg)
		}
	}

	return messages
}
