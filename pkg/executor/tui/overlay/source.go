package overlay

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/executor/tui/types"
)

// SourceOverlay displays the full extracted text of the loaded source
type SourceOverlay struct {
	*BaseOverlay
	title    string
	sourceID string
}

// NewSourceOverlay creates a new source text overlay
func NewSourceOverlay(title, sourceID, text string, truncated bool, width, height int) *SourceOverlay {
	// Overlay takes 80% of the screen
	overlayWidth := int(float64(width) * 0.8)
	overlayHeight := int(float64(height) * 0.8)

	if overlayWidth < 60 {
		overlayWidth = 60
	}
	if overlayHeight < 20 {
		overlayHeight = 20
	}

	if title == "" {
		title = sourceID
	}

	content := text
	if truncated {
		content += "\n\n" + types.OverlaySubtitleStyle.Render("… text truncated to fit the context budget")
	}

	overlay := &SourceOverlay{
		title:    title,
		sourceID: sourceID,
	}

	baseConfig := BaseOverlayConfig{
		Width:          overlayWidth,
		Height:         overlayHeight,
		ViewportWidth:  overlayWidth - 4,
		ViewportHeight: overlayHeight - 6,
		Content:        content,
		RenderHeader:   overlay.renderHeader,
		RenderFooter:   overlay.renderFooter,
	}

	overlay.BaseOverlay = NewBaseOverlay(baseConfig)
	return overlay
}

// Update handles messages
func (o *SourceOverlay) Update(msg tea.Msg, state types.StateProvider, actions types.ActionHandler) (types.Overlay, tea.Cmd) {
	// 'q' closes in addition to the base close keys
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "q" {
		return nil, o.close(actions)
	}

	handled, closed, cmd := o.BaseOverlay.Update(msg, actions)
	if closed {
		return nil, cmd
	}
	if handled {
		return o, cmd
	}

	return o, nil
}

// renderHeader renders the source overlay header
func (o *SourceOverlay) renderHeader() string {
	header := types.OverlayTitleStyle.Render(fmt.Sprintf("Source: %s", o.title))
	if o.sourceID != o.title {
		header += "\n" + lipgloss.NewStyle().Foreground(types.MutedGray).Render(o.sourceID)
	}
	return header
}

// renderFooter renders the source overlay footer
func (o *SourceOverlay) renderFooter() string {
	return types.OverlayHelpStyle.Render("↑/↓: scroll • q/esc: close")
}

// View renders the overlay
func (o *SourceOverlay) View() string {
	return o.BaseOverlay.View(o.Width())
}
