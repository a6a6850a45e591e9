package headless

import (
	"encoding/json"
	"fmt"
	"strings"
)

// summarizeInstructions is the built-in prompt for summarize tasks.
const summarizeInstructions = `Analyze the loaded source text and provide a concise summary.
Format the output as:
1. A one-sentence 'Main Idea'.
2. A list of 3-5 key bullet points.`

// Extract tasks wrap the operator's schema description between a fixed
// header and a strict-JSON footer so the reply can be parsed and archived.
const (
	extractHeader = `You are a data extraction engine.
Read the loaded source text and extract the requested data.`

	extractFooter = `Return the output STRICTLY as a single JSON object.
Do not output any markdown code blocks, just the raw JSON string.`
)

// defaultExtractInstructions is used when an extract task does not describe
// its own schema.
const defaultExtractInstructions = `Extract the top 5 news stories.

Use this format:
{
    "stories": [
        {
            "headline": "Title of story",
            "category": "Politics/World/Tech/etc",
            "summary": "One sentence summary",
            "urgency": "High/Medium/Low"
        }
    ]
}`

// buildPrompts returns the user prompt sequence for the configured task
func buildPrompts(task TaskConfig) ([]string, error) {
	switch task.Kind {
	case TaskScript:
		if len(task.Prompts) == 0 {
			return nil, fmt.Errorf("script tasks require at least one prompt")
		}
		return task.Prompts, nil

	case TaskSummarize:
		prompt := summarizeInstructions
		if task.Instructions != "" {
			prompt += "\n\n" + task.Instructions
		}
		return []string{prompt}, nil

	case TaskExtract:
		instructions := task.Instructions
		if instructions == "" {
			instructions = defaultExtractInstructions
		}
		return []string{extractHeader + "\n\n" + instructions + "\n\n" + extractFooter}, nil

	default:
		return nil, fmt.Errorf("unknown task kind: %s", task.Kind)
	}
}

// stripJSONFences removes markdown code fences that models sometimes wrap
// around JSON replies despite being told not to.
func stripJSONFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// decodeExtractPayload parses an extract-task reply into normalized JSON.
// The reply must decode to a JSON value after fence stripping; the payload
// is re-encoded with stable indentation for the artifact.
func decodeExtractPayload(reply string) (json.RawMessage, error) {
	cleaned := stripJSONFences(reply)

	var payload interface{}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode extract payload: %w", err)
	}

	return data, nil
}
