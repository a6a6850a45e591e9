package overlay

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/scout/pkg/executor/tui/types"
	pkgtypes "github.com/entrhq/scout/pkg/types"
)

// linkEntry is one selectable row in the links overlay
type linkEntry struct {
	label  string
	url    string
	isFile bool
}

// LinksOverlay displays the links found on the loaded page and lets the
// operator pick one to load. Page links and file links share one numbered
// list; the numbering matches the link digest the model sees.
type LinksOverlay struct {
	*BaseOverlay
	entries  []linkEntry
	selected int
}

// NewLinksOverlay creates a links overlay from the session resource's links
func NewLinksOverlay(links, files []pkgtypes.Anchor, width, height int) *LinksOverlay {
	entries := make([]linkEntry, 0, len(links)+len(files))
	for _, link := range links {
		entries = append(entries, linkEntry{label: link.Label, url: link.URL})
	}
	for _, file := range files {
		entries = append(entries, linkEntry{label: file.Label, url: file.URL, isFile: true})
	}

	overlayWidth := int(float64(width) * 0.8)
	overlayHeight := int(float64(height) * 0.8)
	if overlayWidth < 60 {
		overlayWidth = 60
	}
	if overlayHeight < 20 {
		overlayHeight = 20
	}

	overlay := &LinksOverlay{
		entries: entries,
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

// Update handles messages for the links overlay
func (l *LinksOverlay) Update(msg tea.Msg, state types.StateProvider, actions types.ActionHandler) (types.Overlay, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyUp:
			l.moveSelection(-1)
			return l, nil
		case tea.KeyDown:
			l.moveSelection(1)
			return l, nil
		case tea.KeyEnter:
			if entry, ok := l.selectedEntry(); ok {
				actions.LoadURL(entry.url)
				return nil, nil
			}
			return l, nil
		case tea.KeyRunes:
			if string(keyMsg.Runes) == "c" {
				return l, l.copySelectedURL()
			}
		}
	}

	handled, closed, cmd := l.BaseOverlay.Update(msg, actions)
	if closed {
		return nil, cmd
	}
	if handled {
		return l, cmd
	}

	return l, nil
}

// moveSelection moves the cursor and keeps it inside the viewport
func (l *LinksOverlay) moveSelection(delta int) {
	if len(l.entries) == 0 {
		return
	}

	l.selected += delta
	if l.selected < 0 {
		l.selected = len(l.entries) - 1
	}
	if l.selected >= len(l.entries) {
		l.selected = 0
	}
	l.refreshContent()

	// Each entry renders as two lines (label, url)
	vp := l.Viewport()
	line := l.selected * 2
	switch {
	case line < vp.YOffset:
		vp.SetYOffset(line)
	case line+2 > vp.YOffset+vp.Height:
		vp.SetYOffset(line + 2 - vp.Height)
	}
}

// selectedEntry returns the entry under the cursor
func (l *LinksOverlay) selectedEntry() (linkEntry, bool) {
	if l.selected < 0 || l.selected >= len(l.entries) {
		return linkEntry{}, false
	}
	return l.entries[l.selected], true
}

// SelectedURL returns the URL under the cursor, or "" when the list is empty
func (l *LinksOverlay) SelectedURL() string {
	entry, ok := l.selectedEntry()
	if !ok {
		return ""
	}
	return entry.url
}

// copySelectedURL copies the URL under the cursor to the clipboard. The
// clipboard write runs as a command and reports back through a toast.
func (l *LinksOverlay) copySelectedURL() tea.Cmd {
	entry, ok := l.selectedEntry()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(entry.url); err != nil {
			return types.ToastMsg{
				Message: "Copy failed",
				Details: err.Error(),
				Icon:    "❌",
				IsError: true,
			}
		}
		return types.ToastMsg{
			Message: "Link copied",
			Details: entry.url,
			Icon:    "📋",
		}
	}
}

// refreshContent rebuilds the viewport content around the current selection
func (l *LinksOverlay) refreshContent() {
	if len(l.entries) == 0 {
		l.SetContent("No links found on this page.")
		return
	}

	labelStyle := lipgloss.NewStyle().Foreground(types.BrightWhite)
	selectedStyle := lipgloss.NewStyle().Foreground(types.SkyBlue).Bold(true)
	urlStyle := lipgloss.NewStyle().Foreground(types.MutedGray)
	fileStyle := lipgloss.NewStyle().Foreground(types.Seafoam)

	maxWidth := l.Viewport().Width - 8
	if maxWidth < 20 {
		maxWidth = 20
	}

	var b strings.Builder
	for index, entry := range l.entries {
		cursor := "  "
		style := labelStyle
		if index == l.selected {
			cursor = "> "
			style = selectedStyle
		}

		label := truncateRunes(entry.label, maxWidth)
		line := fmt.Sprintf("%s%3d. %s", cursor, index+1, style.Render(label))
		if entry.isFile {
			line += " " + fileStyle.Render("(file)")
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString("       " + urlStyle.Render(truncateRunes(entry.url, maxWidth)))
		if index < len(l.entries)-1 {
			b.WriteString("\n")
		}
	}
	l.SetContent(b.String())
}

// truncateRunes shortens a string to at most width runes with an ellipsis
func truncateRunes(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// renderHeader renders the links overlay header
func (l *LinksOverlay) renderHeader() string {
	return types.OverlayTitleStyle.Render(fmt.Sprintf("Page Links (%d)", len(l.entries)))
}

// renderFooter renders the links overlay footer
func (l *LinksOverlay) renderFooter() string {
	return types.OverlayHelpStyle.Render("↑/↓: select • Enter: load link • c: copy URL • ESC: close")
}

// View renders the overlay
func (l *LinksOverlay) View() string {
	return l.BaseOverlay.View(l.Width())
}
