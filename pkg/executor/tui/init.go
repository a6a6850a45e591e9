package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/config"
	"github.com/entrhq/scout/pkg/executor/tui/overlay"
)

// initialModel creates the TUI model with all components in their start state.
// Window dimensions arrive with the first WindowSizeMsg, so layout-dependent
// values stay at safe defaults until then.
func initialModel() model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the page, or /load <url> to begin..."
	ta.Prompt = "> "
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(skyBlue)
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.MaxHeight = 8
	ta.ShowLineNumbers = false
	// Enter is handled by Update so it can dispatch messages and commands
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(skyBlue)

	paletteItems := make([]overlay.CommandItem, 0)
	for _, cmd := range getAllCommands() {
		paletteItems = append(paletteItems, overlay.CommandItem{
			Name:        cmd.Name,
			Description: cmd.Description,
			Args:        cmd.ArgHint,
		})
	}

	renderMarkdown := true
	if ui := config.GetUI(); ui != nil {
		renderMarkdown = ui.GetRenderMarkdown()
	}

	return model{
		viewport:       vp,
		textarea:       ta,
		spinner:        sp,
		content:        &strings.Builder{},
		messageBuffer:  &strings.Builder{},
		overlay:        newOverlayState(),
		commandPalette: overlay.NewCommandPalette(paletteItems),
		toast:          &toastNotification{},
		renderMarkdown: renderMarkdown,
	}
}

// Init implements tea.Model
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}
