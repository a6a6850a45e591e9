package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	// Default values for UI settings
	defaultRenderMarkdown   = true
	defaultShowContextMeter = true
	defaultWrapWidth        = 0
)

// UISection manages user interface configuration settings.
type UISection struct {
	RenderMarkdown   bool `json:"render_markdown"`
	ShowContextMeter bool `json:"show_context_meter"`
	WrapWidth        int  `json:"wrap_width"`
	mu               sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	return &UISection{
		RenderMarkdown:   defaultRenderMarkdown,
		ShowContextMeter: defaultShowContextMeter,
		WrapWidth:        defaultWrapWidth,
	}
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Configure terminal interface behavior including answer rendering and the context usage meter."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"render_markdown":    s.RenderMarkdown,
		"show_context_meter": s.ShowContextMeter,
		"wrap_width":         s.WrapWidth,
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "render_markdown":
			if enabled, ok := value.(bool); ok {
				s.RenderMarkdown = enabled
			} else {
				return fmt.Errorf("invalid value type for render_markdown: expected bool, got %T", value)
			}

		case "show_context_meter":
			if enabled, ok := value.(bool); ok {
				s.ShowContextMeter = enabled
			} else {
				return fmt.Errorf("invalid value type for show_context_meter: expected bool, got %T", value)
			}

		case "wrap_width":
			if width, ok := asInt(value); ok {
				s.WrapWidth = width
			} else {
				return fmt.Errorf("invalid value type for wrap_width: expected number, got %T", value)
			}

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Zero means fit to the terminal width
	if s.WrapWidth != 0 && (s.WrapWidth < 20 || s.WrapWidth > 500) {
		return fmt.Errorf("wrap_width must be 0 or between 20 and 500, got %d", s.WrapWidth)
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.RenderMarkdown = defaultRenderMarkdown
	s.ShowContextMeter = defaultShowContextMeter
	s.WrapWidth = defaultWrapWidth
}

// GetRenderMarkdown returns whether assistant answers are rendered as markdown.
func (s *UISection) GetRenderMarkdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RenderMarkdown
}

// SetRenderMarkdown sets whether assistant answers are rendered as markdown.
func (s *UISection) SetRenderMarkdown(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RenderMarkdown = enabled
}

// GetShowContextMeter returns whether the context usage meter is shown.
func (s *UISection) GetShowContextMeter() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ShowContextMeter
}

// SetShowContextMeter sets whether the context usage meter is shown.
func (s *UISection) SetShowContextMeter(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ShowContextMeter = enabled
}

// GetWrapWidth returns the configured wrap width. Zero means fit to the
// terminal.
func (s *UISection) GetWrapWidth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WrapWidth
}

// SetWrapWidth sets the wrap width.
func (s *UISection) SetWrapWidth(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WrapWidth = width
}
