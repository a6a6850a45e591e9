package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
	config    ArtifactConfig
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string, config ArtifactConfig) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
		config:    config,
	}
}

// WriteAll writes all configured artifact formats
func (w *ArtifactWriter) WriteAll(summary *RunSummary) error {
	// Ensure output directory exists
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write JSON run report
	if w.config.JSON {
		if err := w.WriteRunJSON(summary); err != nil {
			return fmt.Errorf("failed to write run JSON: %w", err)
		}
	}

	// Write markdown transcript
	if w.config.Markdown {
		if err := w.WriteTranscriptMarkdown(summary); err != nil {
			return fmt.Errorf("failed to write transcript markdown: %w", err)
		}
	}

	// Write the extract payload when the run produced one
	if len(summary.Extract) > 0 {
		if err := w.WriteExtractJSON(summary.Extract); err != nil {
			return fmt.Errorf("failed to write extract JSON: %w", err)
		}
	}

	return nil
}

// WriteRunJSON writes the full run summary as JSON
func (w *ArtifactWriter) WriteRunJSON(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "run.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write run JSON: %w", writeErr)
	}

	return nil
}

// WriteTranscriptMarkdown writes a human-readable transcript of the run
func (w *ArtifactWriter) WriteTranscriptMarkdown(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "transcript.md")

	var md strings.Builder

	// Header
	md.WriteString("# Scout Research Run\n\n")
	md.WriteString(fmt.Sprintf("**Source:** %s\n\n", summary.Source))
	if summary.SourceTitle != "" {
		md.WriteString(fmt.Sprintf("**Title:** %s\n\n", summary.SourceTitle))
	}
	md.WriteString(fmt.Sprintf("**Task:** %s\n\n", summary.Task))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration))

	// Result
	md.WriteString("## Result\n\n")
	if summary.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", summary.Error))
	} else {
		md.WriteString("✅ **Success**\n\n")
	}

	// Transcript
	if len(summary.Turns) > 0 {
		md.WriteString("## Transcript\n\n")
		for i, turn := range summary.Turns {
			md.WriteString(fmt.Sprintf("### Prompt %d\n\n", i+1))
			md.WriteString(fmt.Sprintf("> %s\n\n", strings.ReplaceAll(turn.Prompt, "\n", "\n> ")))
			if turn.Error != "" {
				md.WriteString(fmt.Sprintf("❌ %s\n\n", turn.Error))
			}
			if turn.Reply != "" {
				md.WriteString(turn.Reply)
				md.WriteString("\n\n")
			}
		}
	}

	// Navigations
	if len(summary.Navigations) > 0 {
		md.WriteString("## Navigations\n\n")
		for _, nav := range summary.Navigations {
			if nav.Error != "" {
				md.WriteString(fmt.Sprintf("- ❌ `%s` (%s)\n", nav.URL, nav.Error))
			} else {
				md.WriteString(fmt.Sprintf("- `%s` (%s)\n", nav.URL, nav.Duration))
			}
		}
		md.WriteString("\n")
	}

	// Metrics
	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Turns:** %d\n", summary.Metrics.Turns))
	md.WriteString(fmt.Sprintf("- **Navigations:** %d\n", summary.Metrics.Navigations))
	md.WriteString(fmt.Sprintf("- **Prompt Tokens:** %d\n", summary.Metrics.PromptTokens))
	md.WriteString(fmt.Sprintf("- **Completion Tokens:** %d\n", summary.Metrics.CompletionTokens))
	md.WriteString(fmt.Sprintf("- **Tokens Used:** %d\n", summary.Metrics.TokensUsed))

	// Write file
	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write transcript markdown: %w", writeErr)
	}

	return nil
}

// WriteExtractJSON writes the parsed extract payload as a dated artifact
func (w *ArtifactWriter) WriteExtractJSON(payload json.RawMessage) error {
	path := filepath.Join(w.outputDir, extractArtifactName(time.Now()))

	if writeErr := os.WriteFile(path, payload, 0600); writeErr != nil {
		return fmt.Errorf("failed to write extract JSON: %w", writeErr)
	}

	return nil
}

// extractArtifactName returns the dated filename for an extract payload
func extractArtifactName(now time.Time) string {
	return fmt.Sprintf("extract_%s.json", now.Format("20060102"))
}

// RunSummary contains a complete summary of a headless run
type RunSummary struct {
	Source      string             `json:"source"`
	SourceTitle string             `json:"source_title,omitempty"`
	Task        string             `json:"task"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Duration    time.Duration      `json:"duration"`
	Turns       []TurnRecord       `json:"turns"`
	Navigations []NavigationRecord `json:"navigations,omitempty"`
	Extract     json.RawMessage    `json:"extract,omitempty"`
	Metrics     RunMetrics         `json:"metrics"`
}

// TurnRecord captures one prompt and what the agent did with it
type TurnRecord struct {
	Prompt      string `json:"prompt"`
	Reply       string `json:"reply,omitempty"`
	NavigatedTo string `json:"navigated_to,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NavigationRecord captures one directive navigation
type NavigationRecord struct {
	URL      string `json:"url"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunMetrics contains run metrics
type RunMetrics struct {
	Turns            int `json:"turns"`
	Navigations      int `json:"navigations"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TokensUsed       int `json:"tokens_used"`
}
