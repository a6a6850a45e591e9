package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/executor/tui/types"
)

// fieldKind determines how a settings field is displayed and edited
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldInt
	fieldToggle
)

// settingsField is one entry in the settings overlay
type settingsField struct {
	section string
	label   string
	kind    fieldKind
	llm     bool // changing this field requires a provider reload
	current func() string
	apply   func(value string) error
	toggle  func()
}

// SettingsOverlay lets the operator edit LLM and UI configuration while the
// session is running. LLM changes hot-reload the provider on close.
type SettingsOverlay struct {
	*BaseOverlay
	fields      []settingsField
	selected    int
	editing     bool
	input       textinput.Model
	llmChanged  bool
	onLLMChange func() error
}

// NewSettingsOverlay creates a settings overlay. The onLLMChange callback runs
// after save when any LLM field was modified, so the executor can swap the
// agent's provider without restarting.
func NewSettingsOverlay(width, height int, onLLMChange func() error) *SettingsOverlay {
	overlayWidth := 80
	overlayHeight := 26
	if overlayWidth > width-4 && width > 44 {
		overlayWidth = width - 4
	}

	input := textinput.New()
	input.CharLimit = 256
	input.Width = 48

	overlay := &SettingsOverlay{
		fields:      buildSettingsFields(),
		input:       input,
		onLLMChange: onLLMChange,
	}

	baseConfig := BaseOverlayConfig{
		Width:          overlayWidth,
		Height:         overlayHeight,
		ViewportWidth:  overlayWidth - 4,
		ViewportHeight: overlayHeight - 6,
		RenderHeader:   overlay.renderHeader,
		RenderFooter:   overlay.renderFooter,
	}

	overlay.BaseOverlay = NewBaseOverlay(baseConfig)
	overlay.refreshContent()
	return overlay
}

// buildSettingsFields wires the editable fields to the config sections
func buildSettingsFields() []settingsField {
	llm := config.GetLLM()
	ui := config.GetUI()
	browsing := config.GetBrowsing()
	if llm == nil || ui == nil {
		return nil
	}

	fields := []settingsField{
		{
			section: "LLM",
			label:   "Provider",
			kind:    fieldText,
			llm:     true,
			current: func() string { return llm.GetProvider() },
			apply: func(value string) error {
				value = strings.ToLower(strings.TrimSpace(value))
				if value != "ollama" && value != "openai" {
					return fmt.Errorf("provider must be ollama or openai")
				}
				llm.SetProvider(value)
				return nil
			},
		},
		{
			section: "LLM",
			label:   "Model",
			kind:    fieldText,
			llm:     true,
			current: func() string { return llm.GetModel() },
			apply: func(value string) error {
				value = strings.TrimSpace(value)
				if value == "" {
					return fmt.Errorf("model cannot be empty")
				}
				llm.SetModel(value)
				return nil
			},
		},
		{
			section: "LLM",
			label:   "Base URL",
			kind:    fieldText,
			llm:     true,
			current: func() string { return llm.GetBaseURL() },
			apply: func(value string) error {
				llm.SetBaseURL(strings.TrimSpace(value))
				return nil
			},
		},
		{
			section: "LLM",
			label:   "API Key",
			kind:    fieldSecret,
			llm:     true,
			current: func() string { return llm.GetAPIKey() },
			apply: func(value string) error {
				value = strings.TrimSpace(value)
				if value == "" {
					return nil
				}
				llm.SetAPIKey(value)
				return nil
			},
		},
		{
			section: "UI",
			label:   "Render markdown",
			kind:    fieldToggle,
			current: func() string { return formatToggle(ui.GetRenderMarkdown()) },
			toggle:  func() { ui.SetRenderMarkdown(!ui.GetRenderMarkdown()) },
		},
		{
			section: "UI",
			label:   "Show context meter",
			kind:    fieldToggle,
			current: func() string { return formatToggle(ui.GetShowContextMeter()) },
			toggle:  func() { ui.SetShowContextMeter(!ui.GetShowContextMeter()) },
		},
		{
			section: "UI",
			label:   "Wrap width",
			kind:    fieldInt,
			current: func() string { return strconv.Itoa(ui.GetWrapWidth()) },
			apply: func(value string) error {
				width, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil {
					return fmt.Errorf("wrap width must be a number")
				}
				if width != 0 && (width < 20 || width > 500) {
					return fmt.Errorf("wrap width must be 0 (fit terminal) or between 20 and 500")
				}
				ui.SetWrapWidth(width)
				return nil
			},
		},
	}

	// Browsing limits only take effect on the next load and are edited in
	// the config file, so they are shown read-only here.
	if browsing != nil {
		fields = append(fields,
			settingsField{
				section: "Browsing (read-only)",
				label:   "Text budget",
				kind:    fieldInt,
				current: func() string { return fmt.Sprintf("%d bytes", browsing.GetTextBudget()) },
			},
			settingsField{
				section: "Browsing (read-only)",
				label:   "Max links",
				kind:    fieldInt,
				current: func() string { return strconv.Itoa(browsing.GetMaxLinks()) },
			},
		)
	}

	return fields
}

func formatToggle(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// Update handles messages for the settings overlay
func (s *SettingsOverlay) Update(msg tea.Msg, state types.StateProvider, actions types.ActionHandler) (types.Overlay, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		handled, closed, cmd := s.BaseOverlay.Update(msg, actions)
		if closed {
			return nil, cmd
		}
		if handled {
			return s, cmd
		}
		return s, nil
	}

	if s.editing {
		return s.updateEditing(keyMsg, actions)
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		s.moveSelection(-1)
		return s, nil
	case tea.KeyDown:
		s.moveSelection(1)
		return s, nil
	case tea.KeyEnter:
		s.activateField(actions)
		return s, nil
	case tea.KeyEsc, tea.KeyCtrlC:
		return nil, s.saveAndClose(actions)
	}

	return s, nil
}

// updateEditing handles keys while a field edit is in progress
func (s *SettingsOverlay) updateEditing(keyMsg tea.KeyMsg, actions types.ActionHandler) (types.Overlay, tea.Cmd) {
	switch keyMsg.Type {
	case tea.KeyEsc:
		s.editing = false
		s.input.Blur()
		s.refreshContent()
		return s, nil
	case tea.KeyEnter:
		field := &s.fields[s.selected]
		if err := field.apply(s.input.Value()); err != nil {
			actions.ShowToast("Invalid value", err.Error(), "❌", true)
			return s, nil
		}
		if field.llm {
			s.llmChanged = true
		}
		s.editing = false
		s.input.Blur()
		s.refreshContent()
		return s, nil
	default:
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(keyMsg)
		s.refreshContent()
		return s, cmd
	}
}

// moveSelection moves the field cursor with wraparound
func (s *SettingsOverlay) moveSelection(delta int) {
	if len(s.fields) == 0 {
		return
	}
	s.selected += delta
	if s.selected < 0 {
		s.selected = len(s.fields) - 1
	}
	if s.selected >= len(s.fields) {
		s.selected = 0
	}
	s.refreshContent()
}

// activateField begins editing the selected field, or flips it for toggles
func (s *SettingsOverlay) activateField(actions types.ActionHandler) {
	if len(s.fields) == 0 {
		return
	}
	field := &s.fields[s.selected]

	switch {
	case field.kind == fieldToggle && field.toggle != nil:
		field.toggle()
		s.refreshContent()
	case field.apply == nil:
		actions.ShowToast("Read-only", fmt.Sprintf("%s can only be changed in the config file", field.label), "ℹ️", false)
	default:
		s.editing = true
		if field.kind == fieldSecret {
			s.input.SetValue("")
			s.input.Placeholder = "new key (blank keeps current)"
		} else {
			s.input.SetValue(field.current())
			s.input.Placeholder = ""
		}
		s.input.CursorEnd()
		s.input.Focus()
		s.refreshContent()
	}
}

// saveAndClose persists all sections and triggers the provider reload
func (s *SettingsOverlay) saveAndClose(actions types.ActionHandler) tea.Cmd {
	manager := config.Global()
	if manager != nil {
		if err := manager.SaveAll(); err != nil {
			actions.ShowToast("Save failed", err.Error(), "❌", true)
			return nil
		}
	}

	if s.llmChanged && s.onLLMChange != nil {
		if err := s.onLLMChange(); err != nil {
			actions.ShowToast("Provider reload failed", err.Error(), "❌", true)
			return nil
		}
		actions.ShowToast("Settings saved", "Provider reloaded with new configuration", "✅", false)
		return nil
	}

	actions.ShowToast("Settings saved", "", "✅", false)
	return nil
}

// refreshContent rebuilds the viewport content
func (s *SettingsOverlay) refreshContent() {
	if len(s.fields) == 0 {
		s.SetContent("Configuration is not initialized.")
		return
	}

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(types.SkyBlue)
	labelStyle := lipgloss.NewStyle().Foreground(types.BrightWhite)
	selectedStyle := lipgloss.NewStyle().Foreground(types.SkyBlue).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(types.MutedGray)

	var b strings.Builder
	lastSection := ""
	for index, field := range s.fields {
		if field.section != lastSection {
			if lastSection != "" {
				b.WriteString("\n")
			}
			b.WriteString(sectionStyle.Render(field.section))
			b.WriteString("\n")
			lastSection = field.section
		}

		cursor := "  "
		style := labelStyle
		if index == s.selected {
			cursor = "> "
			style = selectedStyle
		}

		label := fmt.Sprintf("%-20s", field.label+":")
		if s.editing && index == s.selected {
			b.WriteString(fmt.Sprintf("%s%s %s", cursor, style.Render(label), s.input.View()))
		} else {
			value := field.current()
			if field.kind == fieldSecret {
				value = maskSecret(value)
			}
			b.WriteString(fmt.Sprintf("%s%s %s", cursor, style.Render(label), valueStyle.Render(value)))
		}
		b.WriteString("\n")
	}

	s.SetContent(b.String())
}

// maskSecret hides all but the last four characters of a secret
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

// renderHeader renders the settings overlay title
func (s *SettingsOverlay) renderHeader() string {
	return types.OverlayTitleStyle.Render("Settings")
}

// renderFooter renders key hints for the current mode
func (s *SettingsOverlay) renderFooter() string {
	if s.editing {
		return types.OverlayHelpStyle.Render("Enter: apply • ESC: cancel edit")
	}
	return types.OverlayHelpStyle.Render("↑/↓: select • Enter: edit/toggle • ESC: save and close")
}

// View renders the overlay
func (s *SettingsOverlay) View() string {
	return s.BaseOverlay.View(s.Width())
}
